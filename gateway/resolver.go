package gateway

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var routePattern = regexp.MustCompile(`^/api/gateway/([a-zA-Z0-9_-]+)/(.*)$`)

// ResolvedRoute is the downstream destination of one request
type ResolvedRoute struct {
	Service   string
	Suffix    string
	TargetURL string
}

// ServiceTable maps service names to base URLs. It is read-only after construction.
type ServiceTable struct {
	baseURLs map[string]string
}

// NewServiceTable copies the given name to base URL mapping. Trailing slashes are trimmed.
func NewServiceTable(baseURLs map[string]string) *ServiceTable {
	table := &ServiceTable{baseURLs: make(map[string]string, len(baseURLs))}
	for name, baseURL := range baseURLs {
		table.baseURLs[name] = strings.TrimRight(baseURL, "/")
	}
	return table
}

// BaseURL returns the base URL of a service
func (t *ServiceTable) BaseURL(service string) (string, bool) {
	baseURL, ok := t.baseURLs[service]
	return baseURL, ok
}

// Resolver turns incoming gateway paths into downstream routes
type Resolver struct {
	services *ServiceTable
}

// NewResolver creates a resolver over a service table
func NewResolver(services *ServiceTable) *Resolver {
	return &Resolver{services: services}
}

// RouteError describes a path the resolver could not turn into a route
type RouteError struct {
	Err     error
	Path    string
	Service string
}

func (e *RouteError) Error() string {
	if errors.Is(e.Err, ErrServiceNotFound) {
		return fmt.Sprintf("%v: %s", e.Err, e.Service)
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Path)
}

func (e *RouteError) Unwrap() error {
	return e.Err
}

// Message is the caller-facing description of the failure
func (e *RouteError) Message() string {
	if errors.Is(e.Err, ErrServiceNotFound) {
		return fmt.Sprintf("Microservice '%s' not found", e.Service)
	}
	return fmt.Sprintf("Route not found on gateway: %s", e.Path)
}

// Resolve matches path against /api/gateway/{service}/{rest}. Failures are *RouteError
// wrapping ErrRouteNotFound or ErrServiceNotFound.
func (r *Resolver) Resolve(path string) (*ResolvedRoute, error) {
	m := routePattern.FindStringSubmatch(path)
	if m == nil {
		return nil, &RouteError{Err: ErrRouteNotFound, Path: path}
	}
	service, rest := m[1], m[2]

	baseURL, ok := r.services.BaseURL(service)
	if !ok {
		return nil, &RouteError{Err: ErrServiceNotFound, Path: path, Service: service}
	}

	return &ResolvedRoute{
		Service:   service,
		Suffix:    rest,
		TargetURL: baseURL + "/api/" + rest,
	}, nil
}
