package utils

import (
	"iter"

	"github.com/oomph-ac/replica/oerror"
)

// CircularQueue is a fixed-capacity ring. Once full, appending overwrites the oldest element, which
// makes it a natural fit for rolling windows of time buckets.
type CircularQueue[T any] struct {
	items []T
	head  int
	tail  int
	size  int
}

// NewCircularQueue returns a queue of the given capacity. If propagate is non-nil the queue starts full,
// with every slot set to the value propagate returns.
func NewCircularQueue[T any](capacity int, propagate func() T) *CircularQueue[T] {
	queue := &CircularQueue[T]{items: make([]T, capacity)}
	if propagate != nil {
		for index := range queue.items {
			queue.items[index] = propagate()
		}
		queue.size = capacity
	}
	return queue
}

// Get returns the element at logical position index (0 = oldest), or an error if out of range.
func (q *CircularQueue[T]) Get(index int) (T, error) {
	var zero T
	if index < 0 || index >= q.size {
		return zero, oerror.New("circularQueue: get index %d out of range [0, %d)", index, q.size)
	}
	return q.items[(q.head+index)%len(q.items)], nil
}

// Set sets the element at logical position index (0 = oldest), or returns an error if out of range.
func (q *CircularQueue[T]) Set(index int, item T) error {
	if index < 0 || index >= q.size {
		return oerror.New("circularQueue: set index %d out of range [0, %d)", index, q.size)
	}
	q.items[(q.head+index)%len(q.items)] = item
	return nil
}

// Newest returns the most recently appended element.
func (q *CircularQueue[T]) Newest() (T, error) {
	return q.Get(q.size - 1)
}

// Iter yields the elements from oldest to newest.
func (q *CircularQueue[T]) Iter() iter.Seq[T] {
	return func(yield func(T) bool) {
		for index := range q.size {
			if !yield(q.items[(q.head+index)%len(q.items)]) {
				return
			}
		}
	}
}

// Size returns the amount of elements currently held.
func (q *CircularQueue[T]) Size() int {
	return q.size
}

// Capacity returns the maximum number of items the queue can hold.
func (q *CircularQueue[T]) Capacity() int {
	return len(q.items)
}

// Append appends an item or returns an error if the queue has zero capacity.
func (q *CircularQueue[T]) Append(item T) error {
	if len(q.items) == 0 {
		return oerror.New("circularQueue: append on zero-capacity queue")
	}

	q.items[q.tail] = item
	if q.size == len(q.items) {
		// Full: the slot just written was the oldest element.
		q.head = (q.head + 1) % len(q.items)
	} else {
		q.size++
	}
	q.tail = (q.tail + 1) % len(q.items)
	return nil
}

// Fill sets every slot to item and marks the queue as full.
func (q *CircularQueue[T]) Fill(item T) {
	for index := range q.items {
		q.items[index] = item
	}
	q.head, q.tail, q.size = 0, 0, len(q.items)
}
