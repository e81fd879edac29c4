// Package scheduler provides the shared debounce timer service of the
// vigil daemon. It implements a single-goroutine scheduler over a
// min-heap of pending timers sorted by fire time, with ties broken by
// arrival order.
//
// Schedule atomically cancels a previous handle and arms a replacement,
// which is what gives project watchers their trailing-debounce semantic:
// a burst of change events keeps replacing one pending timer, and the
// callback fires once the burst has been quiet for the full delay.
//
// Callbacks run synchronously on the scheduler goroutine, so all build
// callbacks across all projects are serialized; a slow callback delays
// every other pending timer.
package scheduler
