package reliability

import (
	"context"
	"testing"
	"time"
)

func TestRetryableStatus(t *testing.T) {
	cases := []struct {
		code int
		want bool
	}{
		{200, false},
		{400, false},
		{404, false},
		{429, true},
		{500, true},
		{502, true},
		{503, true},
		{504, true},
	}
	for _, tc := range cases {
		if got := RetryableStatus(tc.code); got != tc.want {
			t.Fatalf("RetryableStatus(%d) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestBackoffCapped(t *testing.T) {
	base := 100 * time.Millisecond
	max := time.Second

	if got := Backoff(0, base, max); got != base {
		t.Fatalf("Backoff(0) = %v, want %v", got, base)
	}
	if got := Backoff(1, base, max); got != 200*time.Millisecond {
		t.Fatalf("Backoff(1) = %v, want 200ms", got)
	}
	if got := Backoff(10, base, max); got != max {
		t.Fatalf("Backoff(10) = %v, want cap %v", got, max)
	}
}

func TestSleepHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Minute); err == nil {
		t.Fatalf("Sleep() on cancelled context should return error")
	}
}
