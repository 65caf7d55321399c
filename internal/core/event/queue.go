package event

import "container/heap"

// pending orders events by timestamp, then by raise sequence so equal
// timestamps come out FIFO.
type pending struct {
	ev  Event
	seq uint64
}

type queue []pending

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool {
	if q[i].ev.time != q[j].ev.time {
		return q[i].ev.time < q[j].ev.time
	}
	return q[i].seq < q[j].seq
}

func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *queue) Push(x any) { *q = append(*q, x.(pending)) }

func (q *queue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = pending{}
	*q = old[:n-1]
	return item
}

func (q *queue) push(ev Event, seq uint64) {
	heap.Push(q, pending{ev: ev, seq: seq})
}

func (q *queue) pop() Event {
	return heap.Pop(q).(pending).ev
}

func (q queue) peek() (Event, bool) {
	if len(q) == 0 {
		return Event{}, false
	}
	return q[0].ev, true
}
