package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointers(t *testing.T) {
	f := Float64Pointer(0.7)
	i := IntPointer(100)

	assert.Equal(t, 0.7, *f)
	assert.Equal(t, 100, *i)
	assert.NotSame(t, Float64Pointer(0.7), f)
}
