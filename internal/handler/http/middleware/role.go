package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/hcmclinic/triage-shift-backend-go/internal/handler/http/response"
)

// Roles the identity service issues. The clinic only distinguishes
// nurses (caregivers) and admins here; doctors read status but never
// mutate shifts.
const (
	RoleNurse = "NURSE"
	RoleAdmin = "ADMIN"
)

func roleFromContext(r *http.Request) (string, bool) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", false
	}
	role, ok := claims["role"].(string)
	return role, ok
}

// RequireCaregiver requires nurse role (or administrative override).
func RequireCaregiver(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := roleFromContext(r)
		if !ok || (role != RoleNurse && role != RoleAdmin) {
			response.Forbidden(w, "Caregiver access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAdmin requires admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := roleFromContext(r)
		if !ok || role != RoleAdmin {
			response.Forbidden(w, "Admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
