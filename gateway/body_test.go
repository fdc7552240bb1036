package gateway

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMultipart(t *testing.T) {
	assert.True(t, IsMultipart("multipart/form-data; boundary=abc"))
	assert.True(t, IsMultipart("Multipart/Form-Data; boundary=abc"))
	assert.True(t, IsMultipart("multipart/form-data"))
	assert.False(t, IsMultipart("application/json"))
	assert.False(t, IsMultipart("multipart/mixed; boundary=abc"))
	assert.False(t, IsMultipart(""))
}

func TestReadBody(t *testing.T) {
	t.Run("buffers json", func(t *testing.T) {
		body, err := ReadBody("application/json", strings.NewReader(`{"a":1}`), 7, 1024)
		require.NoError(t, err)
		assert.Equal(t, ParsedBody{Raw: []byte(`{"a":1}`)}, body)
	})

	t.Run("keeps multipart stream", func(t *testing.T) {
		r := strings.NewReader("--abc--")
		body, err := ReadBody("multipart/form-data; boundary=abc", r, 7, 1)
		require.NoError(t, err)
		assert.Equal(t, StreamBody{Reader: r, Length: 7}, body)
	})

	t.Run("nil reader", func(t *testing.T) {
		body, err := ReadBody("application/json", nil, 0, 1024)
		require.NoError(t, err)
		assert.Equal(t, ParsedBody{}, body)
	})

	t.Run("exactly at limit", func(t *testing.T) {
		_, err := ReadBody("text/plain", strings.NewReader("12345"), 5, 5)
		assert.NoError(t, err)
	})

	t.Run("over limit", func(t *testing.T) {
		_, err := ReadBody("text/plain", strings.NewReader("123456"), 6, 5)
		assert.True(t, errors.Is(err, ErrBodyTooLarge))
	})
}
