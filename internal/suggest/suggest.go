package suggest

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/chat-assistant/backend/internal/delay"
)

const DefaultLimit = 3

// Suggester filters a fixed list of canned questions.
type Suggester struct {
	Candidates []string
	// MinLength is exclusive: input must be longer than this to get results.
	MinLength int
	Limit     int
}

func New(candidates []string, minLength int) *Suggester {
	return &Suggester{Candidates: candidates, MinLength: minLength, Limit: DefaultLimit}
}

// Suggest returns candidates containing partial, case-insensitively, in
// candidate order.
func (s *Suggester) Suggest(partial string) []string {
	if len(partial) <= s.MinLength {
		return []string{}
	}
	limit := s.Limit
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}

	needle := strings.ToLower(partial)
	out := make([]string, 0, limit)
	for _, c := range s.Candidates {
		if strings.Contains(strings.ToLower(c), needle) {
			out = append(out, c)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// Debouncer stamps each lookup with a generation and only lets the latest
// one through after the debounce delay.
type Debouncer struct {
	suggester *Suggester
	wait      delay.Policy
	gen       atomic.Uint64
}

func NewDebouncer(s *Suggester, wait delay.Policy) *Debouncer {
	if wait == nil {
		wait = delay.Zero{}
	}
	return &Debouncer{suggester: s, wait: wait}
}

// Submit returns ok=false when a newer Submit or Reset happened while this
// one was waiting.
func (d *Debouncer) Submit(ctx context.Context, partial string) ([]string, bool, error) {
	stamp := d.gen.Add(1)

	if _, err := d.wait.Wait(ctx); err != nil {
		return nil, false, err
	}
	if d.gen.Load() != stamp {
		return nil, false, nil
	}

	results := d.suggester.Suggest(partial)
	if d.gen.Load() != stamp {
		return nil, false, nil
	}
	return results, true, nil
}

// Reset supersedes every pending lookup.
func (d *Debouncer) Reset() {
	d.gen.Add(1)
}

func (d *Debouncer) Generation() uint64 {
	return d.gen.Load()
}
