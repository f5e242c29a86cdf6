package rate

import (
	"context"
	"testing"
	"time"
)

func TestTokenBucketFirstCallImmediate(t *testing.T) {
	tb := NewTokenBucket(time.Second)
	defer tb.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := tb.Wait(ctx); err != nil {
		t.Fatalf("first Wait should not block: %v", err)
	}
}

func TestTokenBucketSpacesCalls(t *testing.T) {
	tb := NewTokenBucket(50 * time.Millisecond)
	defer tb.Stop()

	ctx := context.Background()
	if err := tb.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	if err := tb.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("second Wait returned after %v, want >= interval", elapsed)
	}
}

func TestTokenBucketContextCancel(t *testing.T) {
	tb := NewTokenBucket(time.Hour)
	defer tb.Stop()

	ctx := context.Background()
	if err := tb.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	canceled, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := tb.Wait(canceled); err == nil {
		t.Error("expected error for canceled context")
	}
}
