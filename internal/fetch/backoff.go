package fetch

import (
	"context"
	"time"
)

type backoff struct {
	base time.Duration
	cur  time.Duration
}

func newBackoff(base time.Duration) *backoff { return &backoff{base: base} }

// Next returns the delay before the upcoming retry, doubling on each call.
func (b *backoff) Next() time.Duration {
	if b.cur <= 0 {
		b.cur = b.base
	} else {
		b.cur *= 2
	}
	return b.cur
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
