package scheduler

import "container/heap"

// timerHeap implements container/heap.Interface for timerEntry,
// sorted by fire time (earliest first), with arrival order
// breaking ties.
type timerHeap []timerEntry

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].fireAt.Equal(h[j].fireAt) {
		return h[i].id < h[j].id
	}
	return h[i].fireAt.Before(h[j].fireAt)
}

func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) {
	*h = append(*h, x.(timerEntry))
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// heapPush adds a timerEntry to the heap, maintaining the heap invariant.
func heapPush(h *timerHeap, e timerEntry) {
	heap.Push(h, e)
}

// heapPop removes and returns the timerEntry with the earliest fire time.
// Panics if the heap is empty.
func heapPop(h *timerHeap) timerEntry {
	return heap.Pop(h).(timerEntry)
}

// heapRemoveByID removes the timerEntry with the given id.
// Returns true if the entry was found and removed, false otherwise.
func heapRemoveByID(h *timerHeap, id uint64) bool {
	for i, e := range *h {
		if e.id == id {
			heap.Remove(h, i)
			return true
		}
	}
	return false
}
