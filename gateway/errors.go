package gateway

import "errors"

var (
	// ErrRouteNotFound is returned when a path does not match the gateway pattern
	ErrRouteNotFound = errors.New("route not found")
	// ErrServiceNotFound is returned when a path names a service outside the service table
	ErrServiceNotFound = errors.New("service not found")
	// ErrInvalidToken is returned for every token validation failure
	ErrInvalidToken = errors.New("invalid token")
	// ErrBodyTooLarge is returned when a buffered request body exceeds the configured cap
	ErrBodyTooLarge = errors.New("request body too large")
)
