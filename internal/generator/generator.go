// Package generator makes seeded random picks.
package generator

import (
	"hash/fnv"
	"math/rand"
	"time"
)

// Generator picks indexes from a seeded source.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator that repeats its picks for the same seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// ForDay returns a Generator seeded by the calendar date of t, so every
// call on the same day yields the same picks.
func ForDay(t time.Time) *Generator {
	h := fnv.New64a()
	_, _ = h.Write([]byte(t.Format("2006-01-02")))
	return NewSeeded(int64(h.Sum64() >> 1))
}

// Pick returns a uniform index in [0, n). n must be positive.
func (g *Generator) Pick(n int) int {
	return g.rnd.Intn(n)
}

// PickWeighted returns an index with probability proportional to its weight.
// It falls back to a uniform pick when every weight is zero.
func (g *Generator) PickWeighted(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return g.Pick(len(weights))
	}
	r := g.rnd.Float64() * total
	acc := 0.0
	idx := len(weights) - 1
	for j, w := range weights {
		if w <= 0 {
			continue
		}
		acc += w
		if r <= acc {
			idx = j
			break
		}
	}
	return idx
}
