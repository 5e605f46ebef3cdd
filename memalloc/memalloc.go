// Package memalloc implements the hybrid heap/mmap allocator of spec.md
// §5/§9: small buffers come from the ordinary Go heap, large ones are
// backed by an anonymous memory map via github.com/edsrzf/mmap-go, and
// every live allocation is tracked so Exact's scheduler (package
// algo/exact) can query the current footprint against a configured
// budget.
//
// Go has no in-place mremap primitive and no "trivially relocatable"
// trait to exploit one portably (spec.md §9 Open Questions calls this out
// explicitly): growing a tracked buffer here always copies. This is the
// documented expansion-policy deviation the open question asks for.
package memalloc

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/edsrzf/mmap-go"
)

// pageThreshold is the size, in bytes, at or above which an allocation is
// backed by an mmap region instead of the heap.
const pageThreshold = 4096

// Budget tracks live allocation bytes against a configured ceiling and is
// safe for concurrent use by worker-owned buffers (spec.md §5: "The
// allocator is shared; it must be thread-safe for allocation/deallocation
// from worker threads").
type Budget struct {
	limit int64
	used  int64
}

// NewBudget creates a Budget with the given limit in bytes; a limit <= 0
// means unbounded.
func NewBudget(limitBytes int64) *Budget {
	return &Budget{limit: limitBytes}
}

// Used returns the current tracked footprint in bytes.
func (b *Budget) Used() int64 { return atomic.LoadInt64(&b.used) }

// Remaining returns limit - used, or a large sentinel when unbounded.
func (b *Budget) Remaining() int64 {
	if b.limit <= 0 {
		return 1 << 62
	}

	return b.limit - b.Used()
}

// Reserve attempts to account for n additional bytes, failing (without
// mutating the tracked total) if that would exceed the limit.
func (b *Budget) Reserve(n int64) error {
	if b.limit <= 0 {
		atomic.AddInt64(&b.used, n)
		return nil
	}
	for {
		cur := atomic.LoadInt64(&b.used)
		if cur+n > b.limit {
			return fmt.Errorf("memalloc: budget exceeded: used=%d requested=%d limit=%d", cur, n, b.limit)
		}
		if atomic.CompareAndSwapInt64(&b.used, cur, cur+n) {
			return nil
		}
	}
}

// Release gives back n previously reserved bytes.
func (b *Budget) Release(n int64) {
	atomic.AddInt64(&b.used, -n)
}

// Buffer is a tracked byte buffer backed by either the heap or an mmap
// region, chosen by size at allocation time.
type Buffer struct {
	mu     sync.Mutex
	budget *Budget
	heap   []byte
	mapped mmap.MMap
	size   int64
}

// Alloc reserves n bytes against budget and returns a Buffer backed by the
// heap (n < pageThreshold) or an anonymous mmap region (n >= threshold).
func Alloc(budget *Budget, n int) (*Buffer, error) {
	if err := budget.Reserve(int64(n)); err != nil {
		return nil, err
	}
	buf := &Buffer{budget: budget, size: int64(n)}
	if n < pageThreshold {
		buf.heap = make([]byte, n)
		return buf, nil
	}

	m, err := mmap.MapRegion(nil, n, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		budget.Release(int64(n))
		return nil, fmt.Errorf("memalloc: mmap region of %d bytes: %w", n, err)
	}
	buf.mapped = m

	return buf, nil
}

// Bytes returns the buffer's backing slice.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mapped != nil {
		return b.mapped
	}

	return b.heap
}

// Grow reallocates the buffer to newSize, copying the overlapping prefix.
// Go's lack of mremap means every growth here is a copy regardless of
// backing store (see package doc); callers on a hot path should
// over-allocate rather than grow repeatedly.
func (b *Buffer) Grow(newSize int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.budget.Reserve(int64(newSize) - b.size); err != nil {
		return err
	}

	// b.mu is already held, so read the backing slice directly rather than
	// through Bytes, which would lock it a second time.
	old := b.heap
	if b.mapped != nil {
		old = b.mapped
	}
	if newSize < pageThreshold {
		next := make([]byte, newSize)
		copy(next, old)
		if b.mapped != nil {
			_ = b.mapped.Unmap()
			b.mapped = nil
		}
		b.heap = next
	} else {
		next, err := mmap.MapRegion(nil, newSize, mmap.RDWR, mmap.ANON, 0)
		if err != nil {
			b.budget.Release(int64(newSize) - b.size)
			return fmt.Errorf("memalloc: grow mmap region to %d bytes: %w", newSize, err)
		}
		copy(next, old)
		if b.mapped != nil {
			_ = b.mapped.Unmap()
		}
		b.heap = nil
		b.mapped = next
	}
	b.size = int64(newSize)

	return nil
}

// Free releases the buffer's backing storage and its budget reservation.
func (b *Buffer) Free() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.budget.Release(b.size)
	b.size = 0
	if b.mapped != nil {
		err := b.mapped.Unmap()
		b.mapped = nil
		return err
	}
	b.heap = nil

	return nil
}
