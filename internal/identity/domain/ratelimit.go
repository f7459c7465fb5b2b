package domain

import "time"

// RateLimitWindow is the persisted counter for one key. The count resets
// lazily once now exceeds WindowStart plus the caller-supplied duration.
type RateLimitWindow struct {
	Key            string
	WindowStart    time.Time
	Count          int
	BlacklistUntil *time.Time
}

// RateLimitDecision is the outcome of a single admit/deny check.
type RateLimitDecision struct {
	Allowed           bool
	CurrentCount      int
	Limit             int
	Remaining         int
	ResetsAt          time.Time
	RetryAfterSeconds int
	IsBlacklisted     bool
}
