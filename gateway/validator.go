package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const validatePath = "/api/auth/validate"

// Identity is the caller as reported by the Auth service
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Validator checks an Authorization header value and returns the caller's identity
type Validator interface {
	Validate(ctx context.Context, authorization string) (*Identity, error)
}

// validateResponse is the Auth service's envelope for /api/auth/validate
type validateResponse struct {
	Success bool      `json:"success"`
	Payload *Identity `json:"payload"`
}

// RemoteValidator delegates token validation to the Auth service
type RemoteValidator struct {
	httpClient    *http.Client
	authURL       string
	rejectExpired bool
	logger        *zap.Logger
	now           func() time.Time
}

// ValidatorOptions configures a RemoteValidator
type ValidatorOptions struct {
	Timeout time.Duration
	// RejectExpired short-circuits bearer JWTs whose exp claim has passed.
	RejectExpired bool
}

// NewRemoteValidator creates a validator calling {authURL}/api/auth/validate
func NewRemoteValidator(authURL string, opts ValidatorOptions, logger *zap.Logger) *RemoteValidator {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RemoteValidator{
		httpClient:    &http.Client{Timeout: timeout},
		authURL:       authURL,
		rejectExpired: opts.RejectExpired,
		logger:        logger,
		now:           time.Now,
	}
}

// Validate returns an error wrapping ErrInvalidToken for every kind of failure
func (v *RemoteValidator) Validate(ctx context.Context, authorization string) (*Identity, error) {
	if v.rejectExpired && bearerTokenExpired(authorization, v.now()) {
		return nil, fmt.Errorf("%w: token expired", ErrInvalidToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.authURL+validatePath, bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		v.logger.Warn("Token validation call failed", zap.String("url", req.URL.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: auth service returned %d", ErrInvalidToken, resp.StatusCode)
	}

	var body validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrInvalidToken, err)
	}
	if !body.Success || body.Payload == nil || body.Payload.ID == "" {
		return nil, fmt.Errorf("%w: unsuccessful validation response", ErrInvalidToken)
	}

	return body.Payload, nil
}
