package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/naivary/pixst"
)

const (
	headerOwner = "X-Pixst-Owner"
	headerGroup = "X-Pixst-Group"
)

// JWTAuth returns an authorization middleware validating HS256
// bearer tokens signed with the given key. It can be plugged into
// the handler options as IsAuthorized.
func JWTAuth(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if raw == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
				}
				return []byte(key), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// principalFrom extracts the caller from the request headers.
func principalFrom(r *http.Request) pixst.Principal {
	return pixst.Principal{
		Name:  r.Header.Get(headerOwner),
		Group: r.Header.Get(headerGroup),
	}
}
