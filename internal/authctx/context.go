package authctx

import "context"

type ctxKey string

const adminKey ctxKey = "bookmydoc.admin_id"

// WithAdmin stores the authenticated admin identity in context.
func WithAdmin(ctx context.Context, adminID string) context.Context {
	return context.WithValue(ctx, adminKey, adminID)
}

// AdminFromContext extracts the admin identity if present.
func AdminFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(adminKey)
	if val == nil {
		return "", false
	}
	adminID, ok := val.(string)
	return adminID, ok && adminID != ""
}
