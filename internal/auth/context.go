package auth

import "context"

type contextKey string

const tenantIDKey contextKey = "tenantID"

// ContextWithTenantID returns a new context that carries the request's tenant scope.
func ContextWithTenantID(ctx context.Context, tenantID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

// TenantIDFromContext retrieves the tenant scope from the context, if any.
func TenantIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value := ctx.Value(tenantIDKey)
	if value == nil {
		return "", false
	}
	tenantID, ok := value.(string)
	if !ok || tenantID == "" {
		return "", false
	}
	return tenantID, true
}
