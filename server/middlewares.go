package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey string

const (
	CtxKeyReqID     ctxKey = "reqID"
	CtxKeyPrincipal ctxKey = "principal"
)

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), CtxKeyReqID, fmt.Sprintf("%s/%s", r.Host, uuid.NewString()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// assurePrincipal requires the caller headers and puts the principal
// into the request context.
func assurePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := principalFrom(r)
		if p.Name == "" || p.Group == "" {
			http.Error(w, "missing owner or group in the request headers", http.StatusBadRequest)
			return
		}
		ctx := context.WithValue(r.Context(), CtxKeyPrincipal, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
