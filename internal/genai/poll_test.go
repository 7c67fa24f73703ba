package genai

import (
	"testing"
	"time"
)

func TestDecide(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	deadline := base.Add(60 * time.Second)

	tests := []struct {
		name   string
		status string
		now    time.Time
		want   pollAction
	}{
		{name: "completed", status: "completed", now: base, want: pollDone},
		{name: "completed after deadline still done", status: "completed", now: deadline.Add(time.Second), want: pollDone},
		{name: "failed", status: "failed", now: base, want: pollFailed},
		{name: "cancelled", status: "cancelled", now: base, want: pollFailed},
		{name: "expired", status: "expired", now: base, want: pollFailed},
		{name: "queued within deadline", status: "queued", now: base, want: pollWait},
		{name: "in progress within deadline", status: "in_progress", now: deadline, want: pollWait},
		{name: "in progress past deadline", status: "in_progress", now: deadline.Add(time.Millisecond), want: pollExpired},
		{name: "queued past deadline", status: "queued", now: deadline.Add(time.Minute), want: pollExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decide(tt.status, tt.now, deadline); got != tt.want {
				t.Errorf("decide(%q, %v) = %v, want %v", tt.status, tt.now, got, tt.want)
			}
		})
	}
}
