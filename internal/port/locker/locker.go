package locker

import "context"

// AdvisoryLocker serialises critical sections. The postgres implementation
// holds a session advisory lock, so lock and unlock must happen on the same
// connection; WithLock keeps both inside one call.
type AdvisoryLocker interface {
	WithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error
}
