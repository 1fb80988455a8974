package process

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTailBufferUnderCapacity(t *testing.T) {
	b := newTailBuffer(16)
	b.Write([]byte("hello"))
	assert.Equal(t, "hello", b.Tail())
}

func TestTailBufferKeepsTail(t *testing.T) {
	b := newTailBuffer(8)
	b.Write([]byte("0123456789"))
	assert.Equal(t, truncationMarker+"23456789", b.Tail())
}

func TestTailBufferAcrossWrites(t *testing.T) {
	b := newTailBuffer(4)
	b.Write([]byte("abc"))
	b.Write([]byte("def"))
	assert.Equal(t, truncationMarker+"cdef", b.Tail())
}

func TestTailBufferExactCapacityNotTruncated(t *testing.T) {
	b := newTailBuffer(4)
	b.Write([]byte("abcd"))
	assert.Equal(t, "abcd", b.Tail())
}

func TestTailBufferLargeSingleWrite(t *testing.T) {
	b := newTailBuffer(8)
	b.Write([]byte(strings.Repeat("x", 1000) + "tailpart"))
	assert.Equal(t, truncationMarker+"tailpart", b.Tail())
}

func TestTailBufferDefaultCapacity(t *testing.T) {
	b := newTailBuffer(0)
	assert.Equal(t, 64*1024, b.cap)
}
