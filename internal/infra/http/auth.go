package http

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// TokenAuthMiddleware проверяет Bearer-токен сервисного API.
// При пустом настроечном токене доступ закрыт целиком.
func TokenAuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				http.Error(w, "api token is not configured", http.StatusServiceUnavailable)
				return
			}
			header := r.Header.Get("Authorization")
			presented := strings.TrimPrefix(header, "Bearer ")
			if presented == header || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
