package server

import "net/http"

type HandlerOptions struct {
	// MaxUploadSize is limiting the size of a file which can be
	// uploaded using the import endpoint. Default: 32 MB.
	MaxUploadSize int64

	// FormKeyFile is the key to access the file in the multipart
	// form. Default: "file"
	FormKeyFile string

	// IsAuthorized is the middleware used to authorize the
	// incoming request. By default no authorization checks will
	// be done.
	IsAuthorized func(http.Handler) http.Handler
}

func DefaultHandlerOptions() HandlerOptions {
	opts := HandlerOptions{}
	// ~33 MB
	opts.MaxUploadSize = 32 << 20
	opts.FormKeyFile = "file"
	opts.IsAuthorized = isAuthorized
	return opts
}

// isAuthorized is the default authorization checker which allows
// all traffic.
func isAuthorized(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
	})
}
