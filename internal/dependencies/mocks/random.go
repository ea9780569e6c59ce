package mocks

import (
	"fmt"
	"sync"

	"github.com/vzeefun/vzee/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// Queued values are returned first; after that it counts up so results
// stay unique and predictable.
type MockRandom struct {
	mu sync.Mutex

	// UUIDResults is a queue of results to return from UUID
	UUIDResults []string
	uuidIndex   int

	// TokenResults is a queue of results to return from Token (prefix is prepended)
	TokenResults []string
	tokenIndex   int

	counter int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// QueueUUID appends values for UUID to return
func (r *MockRandom) QueueUUID(ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.UUIDResults = append(r.UUIDResults, ids...)
}

// QueueToken appends values for Token to return
func (r *MockRandom) QueueToken(tokens ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.TokenResults = append(r.TokenResults, tokens...)
}

// UUID returns the next queued result, or a sequential fake UUID
func (r *MockRandom) UUID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.uuidIndex < len(r.UUIDResults) {
		result := r.UUIDResults[r.uuidIndex]
		r.uuidIndex++
		return result
	}
	r.counter++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", r.counter)
}

// Token returns the next queued result, or a sequential token
func (r *MockRandom) Token(prefix string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tokenIndex < len(r.TokenResults) {
		result := r.TokenResults[r.tokenIndex]
		r.tokenIndex++
		return prefix + result
	}
	r.counter++
	return fmt.Sprintf("%stoken-%d", prefix, r.counter)
}
