package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWipeByteArray(t *testing.T) {
	buf := []byte("admin123")
	WipeByteArray(buf)
	assert.Equal(t, make([]byte, 8), buf)

	assert.NotPanics(t, func() { WipeByteArray(nil) })
}
