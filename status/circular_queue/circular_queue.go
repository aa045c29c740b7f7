// CircularQueue implements a circular queue of decode events.
//
// NewCircularQueue(n) creates a circular queue that holds up to n items.
// The queue contains a pointer to a mutex so always use this function to
// create a queue.
//
// Add(item) adds an item to the queue.  If the queue is already full, it
// removes the oldest item to make way for the new one.
//
// GetItems() gets the items in the circular queue as a slice, in the order
// in which they were added.
package circularQueue

import (
	"fmt"
	"sort"
	"sync"
)

// CircularQueue holds a limited number of items.  If an item is added and
// the buffer is already full, the oldest item is removed to make way for
// the new one.  The buffer is safe against asynchronous access.
type CircularQueue struct {
	// MaxItems is the maximum number of items in the circular queue.
	MaxItems int
	// Items is a map containing the items each with a unique index.
	Items map[uint64]fmt.Stringer
	// NextIndex is the next unique index, assigned when an item is added.
	NextIndex uint64

	// See https://go.dev/blog/maps
	*sync.RWMutex
}

// NewCircularQueue creates a new circular queue.  A queue must be able to
// hold at least one item.
func NewCircularQueue(max int) *CircularQueue {
	if max < 1 {
		max = 1
	}
	items := make(map[uint64]fmt.Stringer, max)
	var mu sync.RWMutex
	q := CircularQueue{MaxItems: max, Items: items, NextIndex: 0, RWMutex: &mu}

	return &q
}

// Add adds a new item to the queue, removing the oldest if necessary.
func (cq *CircularQueue) Add(item fmt.Stringer) {
	cq.Lock()
	defer cq.Unlock()

	if len(cq.Items) >= cq.MaxItems {
		for _, key := range cq.getKeysInAscendingOrder() {
			if len(cq.Items) < cq.MaxItems {
				break
			}
			delete(cq.Items, key)
		}
	}

	cq.Items[cq.NextIndex] = item
	cq.NextIndex++
}

// GetItems gets the items in the circular queue as a slice, in ascending
// order of key, ie in the order that they were added.
func (cq *CircularQueue) GetItems() []fmt.Stringer {
	cq.RLock()
	defer cq.RUnlock()

	keys := cq.getKeysInAscendingOrder()
	result := make([]fmt.Stringer, 0, len(keys))
	for _, k := range keys {
		if item, ok := cq.Items[k]; ok {
			result = append(result, item)
		}
	}

	return result
}

// Len returns the number of items in the queue.
func (cq *CircularQueue) Len() int {
	cq.RLock()
	defer cq.RUnlock()
	return len(cq.Items)
}

// getKeysInAscendingOrder gets the keys in ascending order.  The caller
// must hold the lock.
func (cq *CircularQueue) getKeysInAscendingOrder() []uint64 {
	keys := make([]uint64, 0, len(cq.Items))
	for k := range cq.Items {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return keys
}
