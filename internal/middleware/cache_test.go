package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")

	body := []byte(`{"tours":[]}`)
	bs, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, body, gotBody)
}

func TestDecodePayloadRejectsTruncated(t *testing.T) {
	hdr := http.Header{}
	bs, err := encodePayload(http.StatusOK, hdr, []byte("abc"))
	require.NoError(t, err)

	// 9 bytes cuts into the header JSON, the rest stop before it.
	for _, n := range []int{0, 3, 7, 9} {
		_, _, _, ok := decodePayload(bs[:n])
		assert.False(t, ok, "prefix of %d bytes", n)
	}
}
