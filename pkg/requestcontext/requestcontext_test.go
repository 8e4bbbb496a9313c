package requestcontext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValues(t *testing.T) {
	t.Run("empty outside a request", func(t *testing.T) {
		ctx := context.Background()
		assert.Empty(t, RequestID(ctx))
		assert.Empty(t, ClientIP(ctx))
		assert.Empty(t, Operation(ctx))
	})

	t.Run("round trips each value independently", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-1")
		ctx = WithClientIP(ctx, "10.0.0.7")
		ctx = WithOperation(ctx, "resident.get")

		assert.Equal(t, "req-1", RequestID(ctx))
		assert.Equal(t, "10.0.0.7", ClientIP(ctx))
		assert.Equal(t, "resident.get", Operation(ctx))
	})
}
