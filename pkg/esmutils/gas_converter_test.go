package esmutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGasConversion(t *testing.T) {
	assert.Equal(t, uint32(12345678), M3ToDM3(12345.678))
	assert.Equal(t, uint32(1), M3ToDM3(0.0005))
	assert.Equal(t, uint32(0), M3ToDM3(-3))
	assert.Equal(t, 12345.678, DM3ToM3(12345678))
}
