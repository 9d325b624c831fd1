package log

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithCorrelationID(t *testing.T) {
	ctx, id := WithCorrelationID(context.Background())

	assert.NotEmpty(t, id)
	assert.Equal(t, id, GetCorrelationID(ctx))
	assert.Empty(t, GetCorrelationID(context.Background()))
}

func TestKeepInDevelopment(t *testing.T) {
	assert.True(t, keepInDevelopment("correlation_id"))
	assert.True(t, keepInDevelopment("view_id"))
	assert.False(t, keepInDevelopment("sales_count"))
	assert.True(t, keepInDevelopment("sale_id"))
	assert.False(t, keepInDevelopment("remote_addr"))
}
