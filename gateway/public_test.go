package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstringClassifier(t *testing.T) {
	classifier := NewSubstringClassifier(nil)

	tests := []struct {
		target string
		auth   bool
	}{
		{"http://auth:3002/api/auth/login", false},
		{"http://auth:3002/api/auth/register", false},
		{"http://auth:3002/api/auth/refresh", false},
		{"http://auth:3002/api/auth/refresh-token", false},
		// Containment, not path equality.
		{"http://bridge:3003/api/api/auth/login/extra", false},
		{"http://user:3004/api/x?next=api/auth/login", false},
		{"http://auth:3002/api/auth/validate", true},
		{"http://auth:3002/api/users", true},
		{"http://user:3004/api/profile", true},
		{"http://auth:3002/api/auth/log", true},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.auth, classifier.RequiresAuth(tt.target))
		})
	}
}

func TestSubstringClassifierCustomRoutes(t *testing.T) {
	public := []string{"api/materials/public"}
	classifier := NewSubstringClassifier(public)
	public[0] = "mutated"

	assert.False(t, classifier.RequiresAuth("http://user:3004/api/materials/public/1"))
	assert.True(t, classifier.RequiresAuth("http://auth:3002/api/auth/login"))
}
