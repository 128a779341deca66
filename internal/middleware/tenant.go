package middleware

import (
	"net/http"
	"strings"

	"github.com/hcm-console/project-factory/internal/auth"
)

// TenantMiddleware copies the X-Tenant-Id header into the request context so
// handlers can fall back to it when the request body carries no tenant.
func TenantMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tenantID := strings.TrimSpace(r.Header.Get("X-Tenant-Id")); tenantID != "" {
			r = r.WithContext(auth.ContextWithTenantID(r.Context(), tenantID))
		}
		next.ServeHTTP(w, r)
	})
}
