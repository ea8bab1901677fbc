package auth

import "context"

// Admin is the signed-in operator. Username is recorded as admin_created_by.
type Admin struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

type ctxKey struct{}

func WithAdmin(ctx context.Context, a Admin) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func FromContext(ctx context.Context) (Admin, bool) {
	a, ok := ctx.Value(ctxKey{}).(Admin)
	return a, ok
}
