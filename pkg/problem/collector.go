package problem

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Collector accumulates the problems of one inference call in the order they are added.
// It is not safe for concurrent use.
type Collector struct {
	problems []Problem
	seen     map[uint64][]int
}

func NewCollector() *Collector {
	return &Collector{seen: map[uint64][]int{}}
}

// Add appends problems, skipping any that equal a problem already collected.
func (c *Collector) Add(ps ...Problem) {
	for _, p := range ps {
		fp := fingerprint(p)
		dup := false
		for _, i := range c.seen[fp] {
			if Equal(c.problems[i], p) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		c.seen[fp] = append(c.seen[fp], len(c.problems))
		c.problems = append(c.problems, p)
	}
}

func (c *Collector) HasErrors() bool {
	return HasErrors(c.problems)
}

func (c *Collector) Len() int {
	return len(c.problems)
}

// Problems returns a copy of the collected problems.
func (c *Collector) Problems() []Problem {
	return append([]Problem(nil), c.problems...)
}

// HasErrors reports whether any of ps has error severity.
func HasErrors(ps []Problem) bool {
	for _, p := range ps {
		if p.Severity == SeverityError {
			return true
		}
	}
	return false
}

func fingerprint(p Problem) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(p.Location.String())
	_, _ = h.WriteString(strconv.Itoa(int(p.Severity)))
	_, _ = h.WriteString(key(p.Detail))
	return h.Sum64()
}
