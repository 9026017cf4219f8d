package stream

import (
	"errors"
	"io"
	"sync"
)

// ErrInputClosed is returned by Write after the proxy has been closed.
var ErrInputClosed = errors.New("input stream is closed")

// Input is the writable stdin proxy for a lifecycle unit. Writes issued
// before the unit starts are buffered in order and flushed to the real
// stdin when Attach wires it up; later writes go straight through. The
// proxy itself never blocks on an unstarted process.
type Input struct {
	mu      sync.Mutex
	pending [][]byte
	sink    io.WriteCloser
	closed  bool
}

// NewInput creates a detached Input proxy.
func NewInput() *Input {
	return &Input{}
}

// Write buffers p until the proxy is attached, then forwards directly.
func (in *Input) Write(p []byte) (int, error) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return 0, ErrInputClosed
	}
	if in.sink == nil {
		in.pending = append(in.pending, append([]byte(nil), p...))
		return len(p), nil
	}
	return in.sink.Write(p)
}

// Close signals EOF to the child. Before Attach it records the intent;
// Attach closes the real stdin once the backlog has been flushed.
func (in *Input) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return nil
	}
	in.closed = true
	if in.sink != nil {
		return in.sink.Close()
	}
	return nil
}

// Attach wires the proxy to the real stdin, flushing buffered writes in
// order. Every write issued before Attach reaches the child before any
// write issued after.
func (in *Input) Attach(w io.WriteCloser) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	for _, p := range in.pending {
		if _, err := w.Write(p); err != nil {
			return err
		}
	}
	in.pending = nil
	in.sink = w
	if in.closed {
		return w.Close()
	}
	return nil
}
