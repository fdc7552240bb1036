package gateway

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// bearerTokenExpired reports whether authorization carries a JWT whose exp claim is before now.
// The signature is not checked; anything that is not a parsable JWT with an exp claim is
// left for the Auth service to judge.
func bearerTokenExpired(authorization string, now time.Time) bool {
	token, found := strings.CutPrefix(authorization, "Bearer ")
	if !found || token == "" {
		return false
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
