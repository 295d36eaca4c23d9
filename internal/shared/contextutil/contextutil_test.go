package contextutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestMetadataRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "rid-1")
	ctx = WithUserID(ctx, "user-1")
	ctx = WithStoreID(ctx, "store-1")

	md := ExtractMetadata(ctx)
	assert.Equal(t, "rid-1", md.RequestID)
	assert.Equal(t, "user-1", md.UserID)
	assert.Equal(t, "store-1", md.StoreID)

	empty := ExtractMetadata(context.Background())
	assert.Empty(t, empty.RequestID)
	assert.Empty(t, empty.UserID)
}

func TestGetLoggerFallbacks(t *testing.T) {
	def := zap.NewExample()
	scoped := zap.NewExample().Named("scoped")

	assert.Same(t, def, GetLogger(context.Background(), def))
	assert.Same(t, scoped, GetLogger(WithLogger(context.Background(), scoped), def))
	assert.NotNil(t, GetLogger(context.Background(), nil))
}
