package gateway

import "strings"

// DefaultPublicRoutes are the auth endpoints reachable without a token
var DefaultPublicRoutes = []string{
	"api/auth/login",
	"api/auth/register",
	"api/auth/refresh",
}

// Classifier decides whether a resolved target needs an authenticated caller
type Classifier interface {
	RequiresAuth(targetURL string) bool
}

// SubstringClassifier treats a target as public when it contains any listed substring
// anywhere in the URL, so "/api/gateway/bridge/api/auth/login/extra" is public too.
type SubstringClassifier struct {
	public []string
}

// NewSubstringClassifier copies the public substrings. An empty list falls back to DefaultPublicRoutes.
func NewSubstringClassifier(public []string) *SubstringClassifier {
	if len(public) == 0 {
		public = DefaultPublicRoutes
	}
	return &SubstringClassifier{public: append([]string(nil), public...)}
}

// RequiresAuth reports whether targetURL needs token validation
func (c *SubstringClassifier) RequiresAuth(targetURL string) bool {
	for _, route := range c.public {
		if strings.Contains(targetURL, route) {
			return false
		}
	}
	return true
}
