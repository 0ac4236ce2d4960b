package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// ServiceKeyHeader carries the shared key of trusted internal callers.
const ServiceKeyHeader = "X-Service-Auth"

// HasServiceKey reports whether r presents key in ServiceKeyHeader. An empty
// key never matches.
func HasServiceKey(r *http.Request, key string) bool {
	if key == "" {
		return false
	}
	given := r.Header.Get(ServiceKeyHeader)
	return subtle.ConstantTimeCompare([]byte(given), []byte(key)) == 1
}

// ExtractNonce reads the ajax nonce from the form body first, then from the
// X-Payneteasy-Nonce header, then from a bearer Authorization header.
func ExtractNonce(r *http.Request) string {
	if v := r.PostFormValue("nonce"); v != "" {
		return v
	}

	if v := r.Header.Get("X-Payneteasy-Nonce"); v != "" {
		return v
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}
