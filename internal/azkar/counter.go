package azkar

import (
	"context"
	"errors"
	"fmt"

	"github.com/verte-zerg/mariam/internal/model"
	"github.com/verte-zerg/mariam/internal/store"
)

// DefaultCategory is selected when nothing was saved.
const DefaultCategory = "morning"

// Counter tracks repetitions per zikr and the selected category.
// Counts never exceed the zikr's target.
type Counter struct {
	store      *store.Store
	categories []model.AzkarCategory
	targets    map[string]int
	counts     map[string]int
	selected   int
}

// NewCounter loads counts and the selected category from st. st may be nil
// for an in-memory counter.
func NewCounter(ctx context.Context, st *store.Store, categories []model.AzkarCategory) (*Counter, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("no azkar categories")
	}
	c := &Counter{
		store:      st,
		categories: categories,
		targets:    map[string]int{},
		counts:     map[string]int{},
		selected:   max(CategoryIndex(categories, DefaultCategory), 0),
	}
	for _, cat := range categories {
		for _, z := range cat.Azkar {
			c.targets[z.ID] = z.Count
		}
	}
	if st == nil {
		return c, nil
	}
	counts, err := st.ZikrCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load azkar counts: %w", err)
	}
	for id, n := range counts {
		if target, ok := c.targets[id]; ok {
			c.counts[id] = min(n, target)
		}
	}
	key, err := st.GetValue(ctx, store.KeyAzkarCategory)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if idx := CategoryIndex(categories, key); idx >= 0 {
		c.selected = idx
	}
	return c, nil
}

// Categories returns the catalog in order.
func (c *Counter) Categories() []model.AzkarCategory {
	return c.categories
}

// Selected returns the current category.
func (c *Counter) Selected() model.AzkarCategory {
	return c.categories[c.selected]
}

// SelectedIndex returns the current category's position.
func (c *Counter) SelectedIndex() int {
	return c.selected
}

// Count returns the repetitions recorded for id.
func (c *Counter) Count(id string) int {
	return c.counts[id]
}

// Completed reports whether id reached its target.
func (c *Counter) Completed(id string) bool {
	target, ok := c.targets[id]
	return ok && c.counts[id] >= target
}

// Increment adds one repetition, capped at the target. It reports the new
// count and whether the zikr is now complete.
func (c *Counter) Increment(ctx context.Context, id string) (int, bool, error) {
	target, ok := c.targets[id]
	if !ok {
		return 0, false, fmt.Errorf("unknown zikr %q", id)
	}
	next := min(c.counts[id]+1, target)
	if err := c.persist(ctx, id, next); err != nil {
		return c.counts[id], c.Completed(id), err
	}
	c.counts[id] = next
	return next, next >= target, nil
}

// Reset sets id back to zero.
func (c *Counter) Reset(ctx context.Context, id string) error {
	if _, ok := c.targets[id]; !ok {
		return fmt.Errorf("unknown zikr %q", id)
	}
	if err := c.persist(ctx, id, 0); err != nil {
		return err
	}
	c.counts[id] = 0
	return nil
}

// ResetCategory forgets every count in the category.
func (c *Counter) ResetCategory(ctx context.Context, key string) error {
	idx := CategoryIndex(c.categories, key)
	if idx < 0 {
		return fmt.Errorf("unknown azkar category %q", key)
	}
	ids := make([]string, 0, len(c.categories[idx].Azkar))
	for _, z := range c.categories[idx].Azkar {
		ids = append(ids, z.ID)
	}
	if c.store != nil {
		if err := c.store.DeleteZikrCounts(ctx, ids); err != nil {
			return fmt.Errorf("failed to reset %s: %w", key, err)
		}
	}
	for _, id := range ids {
		delete(c.counts, id)
	}
	return nil
}

// Select makes key the current category.
func (c *Counter) Select(ctx context.Context, key string) error {
	idx := CategoryIndex(c.categories, key)
	if idx < 0 {
		return fmt.Errorf("unknown azkar category %q", key)
	}
	return c.selectIndex(ctx, idx)
}

// NextCategory moves to the following category. It does nothing on the last.
func (c *Counter) NextCategory(ctx context.Context) (bool, error) {
	if c.selected >= len(c.categories)-1 {
		return false, nil
	}
	return true, c.selectIndex(ctx, c.selected+1)
}

// PrevCategory moves to the preceding category. It does nothing on the first.
func (c *Counter) PrevCategory(ctx context.Context) (bool, error) {
	if c.selected <= 0 {
		return false, nil
	}
	return true, c.selectIndex(ctx, c.selected-1)
}

// Progress returns completed and total azkar of a category.
func (c *Counter) Progress(key string) (int, int) {
	idx := CategoryIndex(c.categories, key)
	if idx < 0 {
		return 0, 0
	}
	done := 0
	for _, z := range c.categories[idx].Azkar {
		if c.Completed(z.ID) {
			done++
		}
	}
	return done, len(c.categories[idx].Azkar)
}

func (c *Counter) selectIndex(ctx context.Context, idx int) error {
	c.selected = idx
	if c.store == nil {
		return nil
	}
	return c.store.SetValue(ctx, store.KeyAzkarCategory, c.categories[idx].Key)
}

func (c *Counter) persist(ctx context.Context, id string, count int) error {
	if c.store == nil {
		return nil
	}
	return c.store.SetZikrCount(ctx, id, count)
}
