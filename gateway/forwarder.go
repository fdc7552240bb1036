package gateway

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ForwardRequest is one downstream call
type ForwardRequest struct {
	Service  string
	Method   string
	URL      string
	Header   http.Header
	Body     Body
	Identity *Identity
}

// Forwarder sends a request to a downstream service. Failures are reported as Outcome values.
type Forwarder interface {
	Forward(ctx context.Context, req *ForwardRequest) Outcome
}

// HTTPForwarder forwards over HTTP with a fixed timeout and accepts any response status
type HTTPForwarder struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPForwarder creates a forwarder whose calls give up after timeout
func NewHTTPForwarder(timeout time.Duration, logger *zap.Logger) *HTTPForwarder {
	if timeout <= 0 {
		timeout = 50 * time.Second
	}
	return &HTTPForwarder{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Forward issues the downstream call
func (f *HTTPForwarder) Forward(ctx context.Context, fr *ForwardRequest) Outcome {
	var (
		body   io.Reader
		length int64
	)
	if fr.Body != nil {
		body, length = fr.Body.reader()
	}

	req, err := http.NewRequestWithContext(ctx, fr.Method, fr.URL, body)
	if err != nil {
		return UnexpectedError{Err: err}
	}
	req.Header = ForwardHeaders(fr.Header, fr.Identity)
	if body != nil {
		req.ContentLength = length
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			data, _ := io.ReadAll(resp.Body)
			return TransportErrorWithResponse{Status: resp.StatusCode, Header: resp.Header, Body: data, Err: err}
		}
		return TransportErrorNoResponse{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil && bodyAborted(err) {
		// Truncated data must not go out under the downstream's status.
		f.logger.Warn("Downstream response body aborted",
			zap.String("service", fr.Service),
			zap.String("url", fr.URL),
			zap.Int("read_bytes", len(data)),
			zap.Error(err),
		)
		return TransportErrorNoResponse{Err: err}
	}
	if err != nil {
		f.logger.Warn("Downstream response body cut off",
			zap.String("service", fr.Service),
			zap.String("url", fr.URL),
			zap.Int("read_bytes", len(data)),
			zap.Error(err),
		)
		return TransportErrorWithResponse{Status: resp.StatusCode, Header: resp.Header, Body: data, Err: err}
	}

	return DownstreamResponse{Status: resp.StatusCode, Header: resp.Header, Body: data}
}

// bodyAborted reports whether a body read failed because the call timed out or the
// connection went away mid-stream
func bodyAborted(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
