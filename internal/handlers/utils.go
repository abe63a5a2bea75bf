// internal/handlers/utils.go
package handlers

import "strings"

// extractTokenFromCookie pulls the auth_token value out of a raw Cookie
// header. Returns "" when absent.
func extractTokenFromCookie(cookieHeader string) string {
	parts := strings.Split(cookieHeader, ";")
	for _, part := range parts {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) == 2 && kv[0] == "auth_token" {
			return kv[1]
		}
	}
	return ""
}
