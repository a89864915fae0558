// Package cache implements PreviewCache, the LRU + commit-id-validated
// cache described in spec.md §4.3: a log view's j/k navigation re-asks
// for the same handful of commits, so caching `jj show` output keyed on
// change id (and validated against commit id, since amend/describe change
// the commit id but not the change id) avoids a subprocess spawn on every
// cursor move.
package cache

import (
	"container/list"

	"github.com/nakamura-shuta/tij/internal/model"
)

// DefaultCapacity matches spec.md §4.3.
const DefaultCapacity = 32

type entry struct {
	changeID string
	value    model.PreviewEntry
}

// PreviewCache is a strict-LRU cache of model.PreviewEntry keyed by change
// id. It is owned by a single goroutine (the main event loop, per spec.md
// §5) and is not safe for concurrent use.
type PreviewCache struct {
	capacity int
	ll       *list.List // front = most recently used
	index    map[string]*list.Element
}

// New creates a PreviewCache with the given capacity. A non-positive
// capacity falls back to DefaultCapacity.
func New(capacity int) *PreviewCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &PreviewCache{
		capacity: capacity,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
	}
}

// Peek returns the entry for changeID without validating its commit id,
// and marks it most-recently-used if present.
func (c *PreviewCache) Peek(changeID string) (model.PreviewEntry, bool) {
	el, ok := c.index[changeID]
	if !ok {
		return model.PreviewEntry{}, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*entry).value, true
}

// Touch marks changeID most-recently-used without returning its value.
// A no-op if the entry is absent.
func (c *PreviewCache) Touch(changeID string) {
	if el, ok := c.index[changeID]; ok {
		c.ll.MoveToFront(el)
	}
}

// Insert adds or replaces the entry for changeID, evicting the
// least-recently-used entry if the cache is over capacity.
func (c *PreviewCache) Insert(changeID string, value model.PreviewEntry) {
	if el, ok := c.index[changeID]; ok {
		el.Value.(*entry).value = value
		c.ll.MoveToFront(el)
		return
	}
	el := c.ll.PushFront(&entry{changeID: changeID, value: value})
	c.index[changeID] = el
	for c.ll.Len() > c.capacity {
		c.evictOldest()
	}
}

func (c *PreviewCache) evictOldest() {
	oldest := c.ll.Back()
	if oldest == nil {
		return
	}
	c.ll.Remove(oldest)
	delete(c.index, oldest.Value.(*entry).changeID)
}

// Remove drops the entry for changeID, if present.
func (c *PreviewCache) Remove(changeID string) {
	if el, ok := c.index[changeID]; ok {
		c.ll.Remove(el)
		delete(c.index, changeID)
	}
}

// Validate returns the entry for changeID only if its stored commit id
// equals currentCommitID. On mismatch (the commit was amended, rebased,
// described, ...) the stale entry is removed and false is returned.
func (c *PreviewCache) Validate(changeID, currentCommitID string) (model.PreviewEntry, bool) {
	v, ok := c.Peek(changeID)
	if !ok {
		return model.PreviewEntry{}, false
	}
	if v.CommitID != currentCommitID {
		c.Remove(changeID)
		return model.PreviewEntry{}, false
	}
	return v, true
}

// Clear empties the cache, used when DirtyFlags.PreviewAll is set.
func (c *PreviewCache) Clear() {
	c.ll.Init()
	c.index = make(map[string]*list.Element)
}

// Len reports the number of entries currently cached (test/diagnostic use).
func (c *PreviewCache) Len() int {
	return c.ll.Len()
}
