package requestctx

import (
	"context"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	if got := GetRequestID(ctx); got != "req-1" {
		t.Fatalf("expected req-1, got %q", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Fatalf("expected empty request id, got %q", got)
	}
}

func TestCaller(t *testing.T) {
	if _, ok := GetCaller(context.Background()); ok {
		t.Fatal("did not expect caller on empty context")
	}
	if _, ok := GetCaller(WithCaller(context.Background(), Caller{Role: "ADMIN"})); ok {
		t.Fatal("caller without user id must not count as authenticated")
	}

	ctx := WithCaller(context.Background(), Caller{UserID: "u1", Email: "a@b.c", Role: "ADMIN"})
	caller, ok := GetCaller(ctx)
	if !ok || caller.UserID != "u1" || caller.Role != "ADMIN" {
		t.Fatalf("unexpected caller %+v", caller)
	}
}
