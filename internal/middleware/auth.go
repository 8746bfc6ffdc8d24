package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware guards the internal tour-import surface. Callers present
// either the shared internal API key or a service JWT signed with the
// HMAC secret from the environment.
func AuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			authHeader := r.Header.Get("Authorization")
			apiKey := r.Header.Get("X-API-Key")

			switch {
			case strings.HasPrefix(authHeader, "Bearer "):
				tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
				if err := validateServiceToken(tokenStr); err != nil {
					http.Error(w, "Unauthorized. Invalid token", http.StatusUnauthorized)
					return
				}

			case apiKey != "":
				expected := os.Getenv("INTERNAL_API_KEY")
				if expected == "" || apiKey != expected {
					http.Error(w, "Unauthorized. Invalid API Key", http.StatusUnauthorized)
					return
				}

			default:
				http.Error(w, "Unauthorized. Missing credentials", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func validateServiceToken(tokenStr string) error {
	secret := os.Getenv("SERVICE_JWT_SECRET")
	_, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	return err
}
