package sales

import (
	"fmt"
	"strconv"
	"strings"

	"api_fiado/internal/kv"
)

const nextIDKey = "nextId"

// IDAllocator hands out the integer IDs shared by sales and payments.
// The counter holds the next ID to issue and is persisted before the ID is
// returned, so an ID may be wasted by a crash but is never issued twice.
type IDAllocator struct {
	kv kv.Substrate
	// floor reports the highest ID already in use. It keeps allocation
	// above existing records when the counter blob is missing or damaged.
	floor func() int
}

// NewIDAllocator creates an allocator persisting its counter in s.
func NewIDAllocator(s kv.Substrate) *IDAllocator {
	return &IDAllocator{kv: s}
}

// NextID returns an ID strictly greater than every ID returned before,
// starting at 1 on a fresh store.
func (a *IDAllocator) NextID() (int, error) {
	raw, ok, err := a.kv.Get(nextIDKey)
	if err != nil {
		return 0, fmt.Errorf("failed to read id counter: %w", err)
	}

	next := 1
	if ok {
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n > next {
			next = n
		}
	}
	if a.floor != nil {
		if used := a.floor(); used >= next {
			next = used + 1
		}
	}

	if err := a.kv.Set(nextIDKey, strconv.Itoa(next+1)); err != nil {
		return 0, fmt.Errorf("failed to persist id counter: %w", err)
	}
	return next, nil
}
