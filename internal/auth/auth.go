// Package auth provides Phantom REST authentication.
package auth

import "net/http"

// HeaderName is the header Phantom reads the automation token from.
const HeaderName = "ph-auth-token"

// Token holds a static Phantom automation token.
type Token struct {
	Value string
}

// Apply adds the token header to an HTTP request.
func (t *Token) Apply(req *http.Request) {
	if t == nil {
		return
	}
	req.Header.Set(HeaderName, t.Value)
}

// Valid reports whether a token is configured.
func (t *Token) Valid() bool {
	return t != nil && t.Value != ""
}
