package gateway

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServiceTable() *ServiceTable {
	return NewServiceTable(map[string]string{
		"auth":   "http://auth:3002",
		"bridge": "http://bridge:3003",
		"user":   "http://user:3004/",
	})
}

func TestResolveTargetURL(t *testing.T) {
	resolver := NewResolver(testServiceTable())

	tests := []struct {
		path    string
		service string
		suffix  string
		target  string
	}{
		{"/api/gateway/auth/users", "auth", "users", "http://auth:3002/api/users"},
		{"/api/gateway/auth/auth/login", "auth", "auth/login", "http://auth:3002/api/auth/login"},
		{"/api/gateway/user/profile/languages/3", "user", "profile/languages/3", "http://user:3004/api/profile/languages/3"},
		{"/api/gateway/bridge/", "bridge", "", "http://bridge:3003/api/"},
		{"/api/gateway/bridge/trailing/", "bridge", "trailing/", "http://bridge:3003/api/trailing/"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			route, err := resolver.Resolve(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.service, route.Service)
			assert.Equal(t, tt.suffix, route.Suffix)
			assert.Equal(t, tt.target, route.TargetURL)
		})
	}
}

func TestResolveRouteNotFound(t *testing.T) {
	resolver := NewResolver(testServiceTable())

	for _, path := range []string{
		"/api/something/else",
		"/api/gateway",
		"/api/gateway/",
		"/api/gateway/auth",
		"/gateway/auth/users",
		"/api/gateway/bad.name/x",
		"/",
	} {
		t.Run(path, func(t *testing.T) {
			route, err := resolver.Resolve(path)
			assert.Nil(t, route)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrRouteNotFound))

			var routeErr *RouteError
			require.True(t, errors.As(err, &routeErr))
			assert.Equal(t, "Route not found on gateway: "+path, routeErr.Message())
		})
	}
}

func TestResolveServiceNotFound(t *testing.T) {
	resolver := NewResolver(testServiceTable())

	route, err := resolver.Resolve("/api/gateway/unknown/foo")
	assert.Nil(t, route)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrServiceNotFound))
	assert.Contains(t, err.Error(), "unknown")

	var routeErr *RouteError
	require.True(t, errors.As(err, &routeErr))
	assert.Equal(t, "Microservice 'unknown' not found", routeErr.Message())
}

func TestResolveIsDeterministic(t *testing.T) {
	resolver := NewResolver(testServiceTable())

	first, err := resolver.Resolve("/api/gateway/user/profile")
	require.NoError(t, err)
	second, err := resolver.Resolve("/api/gateway/user/profile")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
