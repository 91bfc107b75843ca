package batch

import "errors"

// DefaultSize is the buffer size used when New is given a size of zero or
// less.
const DefaultSize = 2000

// FlushFunc receives the buffered items when the processor flushes. The
// slice is owned by the callback; the processor never touches it again.
type FlushFunc[T any] func(items []T) error

// Processor accumulates items and hands them to a flush callback in batches
// of at most the configured size.
type Processor[T any] struct {
	flush  FlushFunc[T]
	size   int
	buf    []T
	closed bool
}

// New creates a processor that flushes through fn whenever the buffer
// reaches size items. A size of zero or less selects DefaultSize.
func New[T any](fn FlushFunc[T], size int) *Processor[T] {
	if size <= 0 {
		size = DefaultSize
	}
	return &Processor[T]{
		flush: fn,
		size:  size,
		buf:   make([]T, 0, size),
	}
}

// Push appends item to the buffer. When the buffer reaches the configured
// size the flush callback is invoked with the whole buffer and the buffer
// is cleared. A callback error is returned unchanged and the buffered
// items are kept.
func (p *Processor[T]) Push(item T) error {
	p.buf = append(p.buf, item)
	if len(p.buf) >= p.size {
		return p.Flush()
	}
	return nil
}

// Flush invokes the callback with the buffered items and starts a fresh
// buffer. An empty buffer is not flushed and the callback is not invoked.
func (p *Processor[T]) Flush() error {
	if len(p.buf) == 0 {
		return nil
	}
	if err := p.flush(p.buf); err != nil {
		return err
	}
	// The callback may keep the slice, so allocate rather than reslice.
	p.buf = make([]T, 0, p.size)
	return nil
}

// Len returns the number of items currently buffered.
func (p *Processor[T]) Len() int {
	return len(p.buf)
}

// Close flushes any remaining items. Calling Close again after a
// successful close is a no-op.
func (p *Processor[T]) Close() error {
	if p.closed {
		return nil
	}
	if err := p.Flush(); err != nil {
		return err
	}
	p.closed = true
	return nil
}

// Run executes fn with a fresh processor and flushes whatever is left in
// the buffer when fn returns or panics. If both fn and the final flush
// fail the two errors are joined.
func Run[T any](flush FlushFunc[T], size int, fn func(*Processor[T]) error) (err error) {
	p := New(flush, size)
	defer func() {
		cerr := p.Close()
		switch {
		case cerr == nil:
		case err == nil:
			err = cerr
		default:
			err = errors.Join(err, cerr)
		}
	}()
	return fn(p)
}
