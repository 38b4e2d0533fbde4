// Package service implements the product lifecycle workflow that keeps a record
// in the record store and its image in the blob store in step.
package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/abgdnv/productcatalog/internal/product/blob"
	perrors "github.com/abgdnv/productcatalog/internal/product/errors"
	"github.com/abgdnv/productcatalog/internal/product/image"
	"github.com/abgdnv/productcatalog/internal/product/store"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TimestampLayout is the UTC millisecond ISO-8601 layout of createdAt and updatedAt.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// Create validates the input, uploads the image and then writes the record.
	// Returns ErrValidation for bad input, ErrImageUpload or ErrRecordWrite on storage failure.
	Create(ctx context.Context, input ProductInput) (*store.Product, error)

	// FindAll returns all products, newest first.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]store.Product, error)

	// DeleteByID removes the product image (best effort) and then its record.
	// Returns ErrMissingID for an empty id and ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id string) error
}

// ProductInput is the client supplied data for a new product.
// Price is a pointer so that an absent or non-numeric price fails validation while 0 passes.
type ProductInput struct {
	Name        string   `json:"name"        validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       *float64 `json:"price"       validate:"required"`
	ImageData   string   `json:"imageData"   validate:"required"`
}

// Service implements ProductService on top of a record store and a blob store.
type Service struct {
	records  store.ProductStore
	blobs    blob.BlobStore
	validate *validator.Validate
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time
	newID    func() string
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces the time source used for createdAt and updatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the product id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService creates a new instance of ProductService with the provided stores.
func NewService(records store.ProductStore, blobs blob.BlobStore, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		records:  records,
		blobs:    blobs,
		validate: newValidator(),
		logger:   logger.With("component", "service"),
		tracer:   otel.Tracer("github.com/abgdnv/productcatalog/internal/product/service"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newValidator reports validation failures under the JSON field names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Create runs the create workflow: validate, decode, upload image, write record.
// A record write failure leaves the uploaded image in place; the orphaned key is logged.
func (s *Service) Create(ctx context.Context, input ProductInput) (*store.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Create")
	defer span.End()

	if err := s.validate.Struct(input); err != nil {
		return nil, s.fail(span, fmt.Errorf("%w: %w", perrors.ErrValidation, err))
	}
	decoded, err := image.Decode(input.ImageData)
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("%w: %w", perrors.ErrValidation, err))
	}

	id := s.newID()
	timestamp := s.now().UTC().Format(TimestampLayout)
	span.SetAttributes(attribute.String("product.id", id))

	key := image.ObjectKey(id, decoded.Ext)
	locator, err := s.uploadImage(ctx, key, decoded)
	if err != nil {
		return nil, s.fail(span, err)
	}

	product := store.Product{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		Price:       *input.Price,
		ImageURL:    locator,
		CreatedAt:   timestamp,
		UpdatedAt:   timestamp,
	}
	if err := s.putRecord(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "Record write failed after image upload, image is orphaned",
			"ID", id, "key", key, "error", err)
		return nil, s.fail(span, err)
	}

	s.logger.InfoContext(ctx, "Product created", "ID", id, "imageUrl", locator)
	return &product, nil
}

// uploadImage stores the decoded image and returns its locator.
func (s *Service) uploadImage(ctx context.Context, key string, decoded image.Decoded) (string, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.uploadImage", trace.WithAttributes(attribute.String("blob.key", key)))
	defer span.End()

	s.logger.DebugContext(ctx, "Uploading product image", "key", key, "contentType", decoded.ContentType(), "size", len(decoded.Data))
	locator, err := s.blobs.Put(ctx, key, decoded.Data, decoded.ContentType())
	if err != nil {
		return "", s.fail(span, fmt.Errorf("%w: %w", perrors.ErrImageUpload, err))
	}
	return locator, nil
}

// putRecord writes the product record.
func (s *Service) putRecord(ctx context.Context, product store.Product) error {
	ctx, span := s.tracer.Start(ctx, "ProductService.putRecord")
	defer span.End()

	if err := s.records.Put(ctx, product); err != nil {
		return s.fail(span, fmt.Errorf("%w: %w", perrors.ErrRecordWrite, err))
	}
	return nil
}

// FindAll lists every record and orders them by createdAt, newest first.
// Records with an unparseable createdAt keep their relative order after all others.
func (s *Service) FindAll(ctx context.Context) ([]store.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.FindAll")
	defer span.End()

	products, err := s.records.ListAll(ctx)
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("%w: %w", perrors.ErrRecordList, err))
	}
	if products == nil {
		return []store.Product{}, nil
	}
	s.sortNewestFirst(ctx, products)
	span.SetAttributes(attribute.Int("product.count", len(products)))
	return products, nil
}

func (s *Service) sortNewestFirst(ctx context.Context, products []store.Product) {
	type entry struct {
		product store.Product
		created time.Time
		valid   bool
	}
	entries := make([]entry, len(products))
	for i, p := range products {
		t, err := time.Parse(time.RFC3339Nano, p.CreatedAt)
		if err != nil {
			s.logger.WarnContext(ctx, "Product has unparseable createdAt", "ID", p.ID, "createdAt", p.CreatedAt)
		}
		entries[i] = entry{product: p, created: t, valid: err == nil}
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		switch {
		case a.valid && !b.valid:
			return -1
		case !a.valid && b.valid:
			return 1
		case !a.valid && !b.valid:
			return 0
		}
		return cmp.Compare(b.created.UnixNano(), a.created.UnixNano())
	})
	for i, e := range entries {
		products[i] = e.product
	}
}

// DeleteByID runs the delete workflow: look up the record, delete its image
// (failures are logged and ignored), then delete the record.
func (s *Service) DeleteByID(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "ProductService.DeleteByID", trace.WithAttributes(attribute.String("product.id", id)))
	defer span.End()

	if id == "" {
		return s.fail(span, perrors.ErrMissingID)
	}

	product, err := s.lookupRecord(ctx, id)
	if err != nil {
		return s.fail(span, err)
	}

	if product.ImageURL != "" {
		s.deleteImage(ctx, product)
	}

	if err := s.deleteRecord(ctx, id); err != nil {
		return s.fail(span, err)
	}
	s.logger.InfoContext(ctx, "Product deleted", "ID", id)
	return nil
}

// lookupRecord fetches the record so its image locator is known before anything is deleted.
func (s *Service) lookupRecord(ctx context.Context, id string) (*store.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.lookupRecord")
	defer span.End()

	product, err := s.records.Get(ctx, id)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			return nil, err
		}
		return nil, s.fail(span, fmt.Errorf("%w: %w", perrors.ErrRecordLookup, err))
	}
	return product, nil
}

// deleteImage removes the image of product. It never fails the workflow.
func (s *Service) deleteImage(ctx context.Context, product *store.Product) {
	ctx, span := s.tracer.Start(ctx, "ProductService.deleteImage")
	defer span.End()

	key, err := image.KeyFromLocator(product.ImageURL)
	if err != nil {
		span.RecordError(err)
		s.logger.WarnContext(ctx, "Skipping image deletion", "ID", product.ID, "imageUrl", product.ImageURL, "error", err)
		return
	}
	if err := s.blobs.Delete(ctx, key); err != nil {
		span.RecordError(err)
		s.logger.WarnContext(ctx, "Image deletion failed, continuing with record deletion", "ID", product.ID, "key", key, "error", err)
	}
}

// deleteRecord removes the product record.
func (s *Service) deleteRecord(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "ProductService.deleteRecord")
	defer span.End()

	if err := s.records.Delete(ctx, id); err != nil {
		return s.fail(span, fmt.Errorf("%w: %w", perrors.ErrRecordDelete, err))
	}
	return nil
}

// fail marks span as failed and returns err unchanged.
func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
