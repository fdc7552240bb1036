package gateway

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"strings"
)

// Body is the request payload handed to the forwarder. It is either a ParsedBody or a StreamBody.
type Body interface {
	reader() (io.Reader, int64)
}

// ParsedBody is a buffered payload forwarded as-is. An empty Raw sends no body.
type ParsedBody struct {
	Raw []byte
}

func (b ParsedBody) reader() (io.Reader, int64) {
	if len(b.Raw) == 0 {
		return nil, 0
	}
	return bytes.NewReader(b.Raw), int64(len(b.Raw))
}

// StreamBody is the untouched request stream, used for multipart uploads so boundaries
// and binary parts reach the downstream byte for byte. Length is -1 when unknown.
type StreamBody struct {
	Reader io.Reader
	Length int64
}

func (b StreamBody) reader() (io.Reader, int64) {
	if b.Reader == nil {
		return nil, 0
	}
	return b.Reader, b.Length
}

// IsMultipart reports whether contentType is multipart/form-data
func IsMultipart(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "multipart/form-data")
	}
	return mediaType == "multipart/form-data"
}

// ReadBody decides the body representation once at the request boundary. Multipart requests
// keep their stream; everything else is buffered up to maxBytes.
func ReadBody(contentType string, r io.Reader, length, maxBytes int64) (Body, error) {
	if r == nil {
		return ParsedBody{}, nil
	}
	if IsMultipart(contentType) {
		return StreamBody{Reader: r, Length: length}, nil
	}

	raw, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if int64(len(raw)) > maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, maxBytes)
	}
	return ParsedBody{Raw: raw}, nil
}
