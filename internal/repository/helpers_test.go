package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeList(t *testing.T) {
	assert.Equal(t, []byte("[]"), encodeList(nil))
	assert.Equal(t, []byte("[]"), encodeList([]string{}))
	assert.Equal(t, []byte(`["a","b"]`), encodeList([]string{"a", "b"}))
}

func TestDecodeList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, decodeList([]byte(`["a","b"]`)))
	assert.Equal(t, []string{}, decodeList(nil))
	assert.Equal(t, []string{}, decodeList([]byte("null")))
	assert.Equal(t, []string{}, decodeList([]byte("not json")))
}

func TestDayOf(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	in := time.Date(2026, 3, 14, 2, 30, 0, 0, loc) // 2026-03-13 21:30 UTC

	got := dayOf(in)
	assert.Equal(t, time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(errors.New("Error 1062 (23000): Duplicate entry")))
	assert.False(t, isDuplicateKey(errors.New("Error 1452: foreign key constraint fails")))
	assert.False(t, isDuplicateKey(nil))
}
