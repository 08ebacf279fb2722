package auth

import (
	"net/http"
	"strings"
)

// ExtractToken pulls the bearer credential from the Authorization header,
// returning "" if the header is missing or not a bearer scheme.
func ExtractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return parts[1]
}
