// Package handler provides HTTP handlers for product-related operations.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	producterrors "github.com/abgdnv/productcatalog/internal/product/errors"
	"github.com/abgdnv/productcatalog/internal/product/service"
	"github.com/abgdnv/productcatalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const (
	msgBodyRequired   = "Request body is required"
	msgInvalidBody    = "Invalid request body"
	msgFieldsRequired = "All fields are required: name, description, price, and image"
	msgIDRequired     = "Product ID is required"
	msgBodyTooLarge   = "Request body is too large"
)

// Handler serves the product REST API.
type Handler struct {
	service service.ProductService
	logger  *slog.Logger
}

// NewHandler creates a new instance of Handler with the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the product service.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)
		r.Delete("/", h.DeleteByID)
		r.Delete("/{id}", h.DeleteByID)
	})

	r.Get("/healthz", h.HealthCheck)
}

// createRequest mirrors service.ProductInput but keeps price raw so that
// a non-numeric price is reported as missing instead of a decode failure.
type createRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price"`
	ImageData   string          `json:"imageData"`
}

func (c createRequest) toInput() service.ProductInput {
	return service.ProductInput{
		Name:        c.Name,
		Description: c.Description,
		Price:       parsePrice(c.Price),
		ImageData:   c.ImageData,
	}
}

// parsePrice returns nil unless raw is a JSON number.
func parsePrice(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := io.ReadAll(r.Body)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.logger.WarnContext(ctx, "Request body exceeds limit", "limit", tooLarge.Limit)
		web.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "Error reading request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		h.logger.WarnContext(ctx, "Create request without body")
		web.RespondError(w, h.logger, http.StatusBadRequest, msgBodyRequired)
		return
	}
	var req createRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.logger.WarnContext(ctx, "Error decoding request body", "error", err)
		web.RespondError(w, h.logger, http.StatusBadRequest, msgInvalidBody)
		return
	}
	h.logger.DebugContext(ctx, "Received request to create product", "name", req.Name, "imageDataLength", len(req.ImageData))

	created, err := h.service.Create(ctx, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, producterrors.ErrValidation):
			h.respondValidation(w, r, err)
		case errors.Is(err, producterrors.ErrImageUpload):
			h.logger.ErrorContext(ctx, "Error uploading product image", "error", err)
			web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to upload product image")
		default:
			h.logger.ErrorContext(ctx, "Error creating product", "error", err)
			web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to create product")
		}
		return
	}
	h.logger.InfoContext(ctx, "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, h.logger, http.StatusCreated, created)
}

// respondValidation answers 400 with the per-field rule failures when available.
func (h *Handler) respondValidation(w http.ResponseWriter, r *http.Request, err error) {
	payload := map[string]any{"error": msgFieldsRequired}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		errorResponse := make(map[string]string)
		for _, fieldErr := range validationErrors {
			errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
		}
		payload["validation_errors"] = errorResponse
	}
	h.logger.WarnContext(r.Context(), "Validation errors occurred", "error", err)
	web.RespondJSON(w, h.logger, http.StatusBadRequest, payload)
}

// FindAll retrieves a list of all products, newest first.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.service.FindAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Error retrieving product list", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	h.logger.DebugContext(ctx, "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// DeleteByID deletes a product and its image.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		id = strings.TrimSpace(chi.URLParam(r, "id"))
	}
	h.logger.DebugContext(ctx, "Received request to delete product", "ID", id)

	err := h.service.DeleteByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, producterrors.ErrMissingID):
			h.logger.WarnContext(ctx, "Delete request without product ID")
			web.RespondError(w, h.logger, http.StatusBadRequest, msgIDRequired)
		case errors.Is(err, producterrors.ErrProductNotFound):
			h.logger.WarnContext(ctx, "Product not found", "ID", id)
			web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
		case errors.Is(err, producterrors.ErrRecordLookup):
			h.logger.ErrorContext(ctx, "Error retrieving product", "ID", id, "error", err)
			web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to retrieve product")
		default:
			h.logger.ErrorContext(ctx, "Error deleting product", "ID", id, "error", err)
			web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to delete product")
		}
		return
	}
	h.logger.InfoContext(ctx, "Product deleted successfully", "ID", id)
	web.RespondMessage(w, h.logger, http.StatusOK, "Product deleted successfully")
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
