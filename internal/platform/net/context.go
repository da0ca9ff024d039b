// Package net provides utilities for working with request contexts
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ctxKey is an unexported key type for context values
type ctxKey string

const keyUser ctxKey = "user"

// WithRequest annotates context with the request id so chi helpers and the
// response envelope both see it
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID != "" {
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// WithUser annotates context with the authenticated user
func WithUser(ctx context.Context, user any) context.Context {
	return context.WithValue(ctx, keyUser, user)
}

// UserValue returns whatever WithUser stored, or nil
func UserValue(ctx context.Context) any {
	return ctx.Value(keyUser)
}
