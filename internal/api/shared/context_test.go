package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceID(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))

	a := SetTraceID(context.Background())
	b := SetTraceID(context.Background())
	assert.NotEmpty(t, GetTraceID(a))
	assert.NotEqual(t, GetTraceID(a), GetTraceID(b))
}

func TestSubject(t *testing.T) {
	_, ok := GetSubject(context.Background())
	assert.False(t, ok)

	subject, ok := GetSubject(WithSubject(context.Background(), "ops"))
	assert.True(t, ok)
	assert.Equal(t, "ops", subject)
}
