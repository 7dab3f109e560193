package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// UUIDParams answers 404 when any named route parameter is not a UUIDv7,
// so malformed ids never reach a uuid column.
func UUIDParams(names ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, name := range names {
				if !validator.IsValidUUID(chi.URLParam(r, name)) {
					response.NotFound(w, "Resource not found")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
