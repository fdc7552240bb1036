package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/lingua/api-gateway/gateway"
)

// IdentityContextKey is the gin context key holding the validated caller
const IdentityContextKey = "identity"

// SetIdentity records the identity the Auth service returned for this request.
// A nil identity is ignored.
func SetIdentity(c *gin.Context, identity *gateway.Identity) {
	if identity == nil {
		return
	}
	c.Set(IdentityContextKey, identity)
}

// GetIdentityFromContext retrieves the validated caller, if authentication ran and succeeded
func GetIdentityFromContext(c *gin.Context) (*gateway.Identity, bool) {
	value, exists := c.Get(IdentityContextKey)
	if !exists {
		return nil, false
	}

	identity, ok := value.(*gateway.Identity)
	return identity, ok
}
