package blob

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/abgdnv/productcatalog/pkg/config"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	s3iface.S3API

	err       error
	putInput  *s3.PutObjectInput
	putBody   []byte
	delInput  *s3.DeleteObjectInput
	putCalled int
}

func (m *mockS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	m.putCalled++
	m.putInput = in
	body, _ := io.ReadAll(in.Body)
	m.putBody = body
	if m.err != nil {
		return nil, m.err
	}
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	m.delInput = in
	if m.err != nil {
		return nil, m.err
	}
	return &s3.DeleteObjectOutput{}, nil
}

func Test_S3Store_Put(t *testing.T) {
	// given
	mock := &mockS3{}
	s := NewS3Store(mock, "product-images")
	// when
	locator, err := s.Put(context.Background(), "products/abc.png", []byte("png"), "image/png")
	// then
	require.NoError(t, err)
	assert.Equal(t, "https://product-images.s3.amazonaws.com/products/abc.png", locator)
	assert.Equal(t, "product-images", *mock.putInput.Bucket)
	assert.Equal(t, "products/abc.png", *mock.putInput.Key)
	assert.Equal(t, "image/png", *mock.putInput.ContentType)
	assert.Equal(t, []byte("png"), mock.putBody)
}

func Test_S3Store_Delete(t *testing.T) {
	// given
	mock := &mockS3{}
	s := NewS3Store(mock, "product-images")
	// when
	err := s.Delete(context.Background(), "products/abc.png")
	// then
	require.NoError(t, err)
	assert.Equal(t, "product-images", *mock.delInput.Bucket)
	assert.Equal(t, "products/abc.png", *mock.delInput.Key)
}

func Test_S3Store_Errors(t *testing.T) {
	mock := &mockS3{err: errors.New("access denied")}
	s := NewS3Store(mock, "b")

	_, err := s.Put(context.Background(), "k", []byte("x"), "image/jpg")
	assert.ErrorContains(t, err, "access denied")
	assert.ErrorContains(t, s.Delete(context.Background(), "k"), "access denied")
}

func Test_InMemoryStore(t *testing.T) {
	// given
	s := NewInMemoryStore("bucket")
	ctx := context.Background()
	data := []byte("gif")
	// when
	locator, err := s.Put(ctx, "products/1.gif", data, "image/gif")
	data[0] = 'X'
	// then
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.memory.local/products/1.gif", locator)
	assert.True(t, s.Has("products/1.gif"))
	obj, ok := s.Object("products/1.gif")
	require.True(t, ok)
	assert.Equal(t, []byte("gif"), obj.Data)
	assert.Equal(t, "image/gif", obj.ContentType)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Delete(ctx, "products/1.gif"))
	require.NoError(t, s.Delete(ctx, "products/1.gif"))
	assert.False(t, s.Has("products/1.gif"))
	assert.Equal(t, 0, s.Len())
}

// failingStore counts calls and always fails.
type failingStore struct {
	calls int
}

func (f *failingStore) Put(context.Context, string, []byte, string) (string, error) {
	f.calls++
	return "", errors.New("unavailable")
}

func (f *failingStore) Delete(context.Context, string) error {
	f.calls++
	return errors.New("unavailable")
}

func Test_BreakerStore_OpensAfterConsecutiveFailures(t *testing.T) {
	// given
	next := &failingStore{}
	b := NewBreakerStore(next, config.CircuitBreakerConfig{
		Enabled:             true,
		ConsecutiveFailures: 3,
		ErrorRatePercent:    100,
		OpenTimeout:         time.Minute,
	})
	ctx := context.Background()

	// when
	for range 3 {
		_, err := b.Put(ctx, "k", nil, "image/jpg")
		require.ErrorContains(t, err, "unavailable")
	}
	_, err := b.Put(ctx, "k", nil, "image/jpg")
	delErr := b.Delete(ctx, "k")

	// then
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.ErrorIs(t, delErr, gobreaker.ErrOpenState)
	assert.Equal(t, 3, next.calls, "open breaker must not reach the wrapped store")
	assert.Equal(t, gobreaker.StateOpen, b.State())
}

func Test_BreakerStore_PassesThrough(t *testing.T) {
	// given
	next := NewInMemoryStore("bucket")
	b := NewBreakerStore(next, config.CircuitBreakerConfig{
		Enabled:             true,
		ConsecutiveFailures: 1,
		ErrorRatePercent:    50,
		OpenTimeout:         time.Minute,
	})
	// when
	locator, err := b.Put(context.Background(), "products/1.jpg", []byte("x"), "image/jpg")
	// then
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.memory.local/products/1.jpg", locator)
	assert.True(t, next.Has("products/1.jpg"))
	require.NoError(t, b.Delete(context.Background(), "products/1.jpg"))
	assert.False(t, next.Has("products/1.jpg"))
	assert.Equal(t, gobreaker.StateClosed, b.State())
}
