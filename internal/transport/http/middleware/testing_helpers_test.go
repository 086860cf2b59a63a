package middleware

import (
	"context"

	"garmenthr/internal/requestctx"
)

func withCaller(role string) context.Context {
	return requestctx.WithCaller(context.Background(), requestctx.Caller{UserID: "user-1", Role: role})
}
