package userctx

import (
	"context"
	"testing"
)

func TestGetUserIDRoundTrip(t *testing.T) {
	ctx := WithUserID(context.Background(), "user-1")
	if got := GetUserID(ctx); got != "user-1" {
		t.Fatalf("GetUserID = %q, want %q", got, "user-1")
	}
}

func TestGetUserIDEmptyWithoutIdentity(t *testing.T) {
	if got := GetUserID(context.Background()); got != "" {
		t.Fatalf("GetUserID on bare context = %q, want empty", got)
	}
}
