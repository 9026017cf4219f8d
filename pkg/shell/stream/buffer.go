// Package stream provides the stable stream proxies attached to a lifecycle
// unit: append-only capture buffers for stdout/stderr with replayable
// subscriptions, and a stdin proxy that buffers writes issued before the
// process starts.
package stream

import (
	"io"
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

var logger = log.New(io.Discard, "stream: ", log.LstdFlags)

// chunk is an element of the append-only singly linked list. The list uses
// a sentinel head node for simpler lock-free append logic.
type chunk struct {
	data []byte
	next atomic.Pointer[chunk]
}

// Buffer accumulates the full output of one stream as an append-only list
// of chunks. Appends are serialized; reads are lock-free, so any number of
// subscribers can walk the list concurrently. A subscription replays the
// list from the head, so a subscriber attached before the process starts
// still observes the very first bytes the process emits.
type Buffer struct {
	head *chunk // sentinel, immutable

	appendMu sync.Mutex // guards tail; combined captures have two writers
	tail     *chunk

	wake *broadcaster[struct{}]
}

// NewBuffer creates a new, empty Buffer.
func NewBuffer() *Buffer {
	sentinel := &chunk{}
	return &Buffer{
		head: sentinel,
		tail: sentinel,
		wake: newBroadcaster[struct{}](),
	}
}

// Stop marks the buffer complete. Subscribers drain any remaining chunks
// and their channels close. Appending after Stop is undefined.
func (b *Buffer) Stop() {
	if b == nil {
		return
	}
	b.wake.stop()
}

// Append adds data to the end of the buffer. The slice is stored as-is;
// callers that may reuse the slice should go through Write, which copies.
func (b *Buffer) Append(data []byte) {
	if b == nil {
		return
	}
	n := &chunk{data: data}
	b.appendMu.Lock()
	b.tail.next.Store(n)
	b.tail = n
	b.appendMu.Unlock()
	b.wake.publish(struct{}{})
}

// Write implements io.Writer. It appends a copy of p, since child processes
// reuse their write buffers.
func (b *Buffer) Write(p []byte) (int, error) {
	if b == nil {
		return len(p), nil
	}
	if len(p) == 0 {
		return 0, nil
	}
	cp := append([]byte(nil), p...)
	b.Append(cp)
	return len(p), nil
}

// Subscribe returns a channel that yields every chunk from the beginning of
// the stream, in order, and closes once the buffer has been stopped and
// fully drained.
func (b *Buffer) Subscribe(capacity int) <-chan []byte {
	ch := make(chan []byte, capacity)
	notifier, err := b.wake.subscribe()
	if err != nil {
		go b.replayStopped(ch)
	} else {
		go b.replayLive(notifier, ch)
	}
	return ch
}

func (b *Buffer) replayLive(notifier chan struct{}, ch chan []byte) {
	id := uuid.NewString()
	logger.Printf("%s live subscriber started", id)
	prev := b.head
	for {
		cur := prev.next.Load()
		if cur == nil {
			if _, ok := <-notifier; !ok {
				// Stopped. Drain anything appended between the nil check and
				// the notifier closing, then finish.
				drainFrom(prev, ch)
				close(ch)
				logger.Printf("%s live subscriber done", id)
				return
			}
			continue
		}
		prev = cur
		ch <- cur.data
	}
}

func (b *Buffer) replayStopped(ch chan []byte) {
	drainFrom(b.head, ch)
	close(ch)
}

func drainFrom(prev *chunk, ch chan []byte) {
	for cur := prev.next.Load(); cur != nil; cur = cur.next.Load() {
		ch <- cur.data
	}
}

// ForEach iterates over all stored chunks in insertion order. If iter
// returns false, iteration stops early.
func (b *Buffer) ForEach(iter func([]byte) bool) {
	if b == nil || iter == nil {
		return
	}
	cur := b.head.next.Load() // skip sentinel
	for cur != nil {
		if !iter(cur.data) {
			return
		}
		cur = cur.next.Load()
	}
}

// Bytes concatenates all stored chunks into a single slice.
func (b *Buffer) Bytes() []byte {
	total := 0
	chunks := make([][]byte, 0, 16)
	b.ForEach(func(data []byte) bool {
		chunks = append(chunks, data)
		total += len(data)
		return true
	})
	out := make([]byte, 0, total)
	for _, data := range chunks {
		out = append(out, data...)
	}
	return out
}

// String returns all stored chunks concatenated into a single string.
func (b *Buffer) String() string {
	return string(b.Bytes())
}
