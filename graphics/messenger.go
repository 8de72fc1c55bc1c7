package graphics

import "sync/atomic"

// Message is an asynchronous request to the windowing layer.
type Message int

const (
	// MsgSwitchToFullScreen asks the window manager to show the full-screen
	// video window.
	MsgSwitchToFullScreen Message = iota + 1
	// MsgVideoParamsChanged announces a change of output resolution.
	MsgVideoParamsChanged
)

func (m Message) String() string {
	switch m {
	case MsgSwitchToFullScreen:
		return "switch-to-fullscreen"
	case MsgVideoParamsChanged:
		return "video-params-changed"
	}
	return "unknown"
}

// Messenger accepts fire-and-forget messages.
type Messenger interface {
	Post(msg Message)
}

// Queue is a bounded Messenger drained by the render loop. Post never
// blocks; messages posted while the queue is full are dropped and counted.
type Queue struct {
	ch      chan Message
	dropped atomic.Uint64
}

// NewQueue returns a queue holding up to size pending messages.
func NewQueue(size int) *Queue {
	if size < 1 {
		size = 1
	}
	return &Queue{ch: make(chan Message, size)}
}

// Post enqueues msg without blocking.
func (q *Queue) Post(msg Message) {
	select {
	case q.ch <- msg:
	default:
		q.dropped.Add(1)
	}
}

// Drain calls fn for every pending message and returns how many were
// handled.
func (q *Queue) Drain(fn func(Message)) int {
	n := 0
	for {
		select {
		case msg := <-q.ch:
			fn(msg)
			n++
		default:
			return n
		}
	}
}

// Dropped returns the number of messages lost to a full queue.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}
