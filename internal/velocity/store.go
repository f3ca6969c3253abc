// Package velocity counts verification attempts per document subject inside
// a sliding window. The counts feed the behavioral risk signals: whether the
// subject is new and whether they are re-verifying suspiciously often.
package velocity

import (
	"context"
	"time"
)

// Store tracks attempt timestamps per subject key.
type Store interface {
	// RecordAttempt registers one attempt for the key and returns the
	// number of attempts inside the window, including this one.
	RecordAttempt(ctx context.Context, key string, window time.Duration) (int, error)

	// Count returns the number of attempts inside the window without
	// recording one.
	Count(ctx context.Context, key string, window time.Duration) (int, error)
}
