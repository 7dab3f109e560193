package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		if !isAdmin(claims) {
			response.HandleError(w, auth.ErrAdminPrivilegeRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SelfOrAdmin lets admins through and restricts everyone else to the
// employee named by the {employeeID} route parameter.
func SelfOrAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}

		if isAdmin(claims) {
			next.ServeHTTP(w, r)
			return
		}

		employeeID, _ := claims["employee_id"].(string)
		if employeeID == "" || employeeID != chi.URLParam(r, "employeeID") {
			response.HandleError(w, auth.ErrEmployeeScopeRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isAdmin(claims map[string]interface{}) bool {
	admin, ok := claims["is_admin"].(bool)
	return ok && admin
}
