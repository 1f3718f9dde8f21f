// Package net provides request-context utilities shared by transports
package net

import (
	"context"
	"strconv"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const keyGroupID ctxKey = "group_id"

// WithRequest annotates ctx with the request id and the moderated group the
// request concerns. Zero groupID means the request is not group-scoped
func WithRequest(ctx context.Context, reqID string, groupID int64) context.Context {
	if reqID != "" {
		// chi's key so chimw.GetReqID keeps working
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	if groupID != 0 {
		ctx = context.WithValue(ctx, keyGroupID, groupID)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// GroupID returns the group id on the context, 0 if absent
func GroupID(ctx context.Context) int64 {
	if v, ok := ctx.Value(keyGroupID).(int64); ok {
		return v
	}
	return 0
}

// ParseGroupID parses a path segment into a group id
func ParseGroupID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
