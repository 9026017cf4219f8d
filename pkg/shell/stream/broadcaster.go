package stream

import (
	"errors"
	"sync"
)

var errBroadcasterStopped = errors.New("broadcaster is stopped")

// broadcaster fans messages out to subscribers without ever blocking the
// publisher: when a subscriber channel is full, its oldest entry is dropped
// so the latest message always lands. Buffer uses it purely as a wakeup
// signal, so dropped intermediate notifications are harmless.
type broadcaster[T any] struct {
	inbox chan T

	mu          sync.Mutex
	subscribers map[chan T]struct{}
	stopped     bool
}

// newBroadcaster creates a broadcaster and starts its fan-out goroutine.
func newBroadcaster[T any]() *broadcaster[T] {
	b := &broadcaster[T]{
		inbox:       make(chan T, 1),
		subscribers: make(map[chan T]struct{}),
	}
	go b.run()
	return b
}

func (b *broadcaster[T]) run() {
	for msg := range b.inbox {
		b.mu.Lock()
		subs := make([]chan T, 0, len(b.subscribers))
		for s := range b.subscribers {
			subs = append(subs, s)
		}
		b.mu.Unlock()

		for _, s := range subs {
			select {
			case s <- msg:
			default:
				// Full: drop the stale entry, then deliver the latest.
				select {
				case <-s:
				default:
				}
				s <- msg
			}
		}
	}

	b.mu.Lock()
	for s := range b.subscribers {
		close(s)
	}
	b.stopped = true
	b.mu.Unlock()
}

func (b *broadcaster[T]) stop() {
	close(b.inbox)
}

// subscribe registers a new subscriber channel. The buffer of 1 lets stale
// wakeups be dropped without blocking the fan-out.
func (b *broadcaster[T]) subscribe() (chan T, error) {
	ch := make(chan T, 1)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return nil, errBroadcasterStopped
	}
	b.subscribers[ch] = struct{}{}
	return ch, nil
}

// publish enqueues msg without blocking: a full inbox has its stale entry
// replaced by the newest message.
func (b *broadcaster[T]) publish(msg T) {
	select {
	case b.inbox <- msg:
	default:
		select {
		case <-b.inbox:
		default:
		}
		b.inbox <- msg
	}
}
