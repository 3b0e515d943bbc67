package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLast(t *testing.T) {
	v, ok := Last([]int{})
	assert.False(t, ok)
	assert.Zero(t, v)

	v, ok = Last([]int{3, 4})
	assert.True(t, ok)
	assert.Equal(t, 4, v)
}
