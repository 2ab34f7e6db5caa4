package ports

import "context"

// LoginThrottle bounds failed login attempts per email within a time window.
type LoginThrottle interface {
	// Allow reports whether another attempt for email may proceed.
	Allow(ctx context.Context, email string) (bool, error)
	// RecordFailure counts a failed attempt for email.
	RecordFailure(ctx context.Context, email string) error
	// Reset clears the failure count after a successful login.
	Reset(ctx context.Context, email string) error
}
