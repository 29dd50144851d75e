package crawl

import "sync"

// Budget is the shared global crawl ceiling for a single discovery run. It
// is the only state crawl workers contend on; every grant goes through one
// synchronized decrement so the cap can never be overshot regardless of
// execution order.
type Budget struct {
	mu        sync.Mutex
	capacity  int
	remaining int
}

// NewBudget creates a budget with the given capacity.
func NewBudget(capacity int) *Budget {
	if capacity < 0 {
		capacity = 0
	}
	return &Budget{capacity: capacity, remaining: capacity}
}

// Capacity returns the initial ceiling.
func (b *Budget) Capacity() int {
	return b.capacity
}

// Remaining returns the number of results still allowed.
func (b *Budget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining
}

// Take reserves up to n results and returns how many were granted.
func (b *Budget) Take(n int) int {
	if n <= 0 {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if n > b.remaining {
		n = b.remaining
	}
	b.remaining -= n
	return n
}

// Refund returns unused reservations to the pool, never exceeding capacity.
func (b *Budget) Refund(n int) {
	if n <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.remaining += n
	if b.remaining > b.capacity {
		b.remaining = b.capacity
	}
}
