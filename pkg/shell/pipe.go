package shell

import "io"

// pipeBuffer is the channel capacity used when shuttling chunks between
// units; subscriptions replay from the start, so the size only affects
// batching.
const pipeBuffer = 16

// Pipe feeds this unit's full stdout into a new downstream command built
// from the template, auto-starting both sides, and returns the downstream
// unit so pipelines chain left to right. The downstream inherits this
// unit's configuration except for its input, which is the pipe itself.
func (p *Proc) Pipe(tmpl string, values ...any) (*Proc, error) {
	cfg := p.cfg.clone()
	cfg.Input = nil
	cfg.Immediate = false
	down, err := newProc(cfg, tmpl, values)
	if err != nil {
		return nil, err
	}

	// Subscribe before starting anything: the replay-from-head semantics
	// guarantee the downstream sees bytes emitted before it attached.
	ch := p.stdout.Subscribe(pipeBuffer)
	p.Start()
	down.Start()

	go func() {
		for data := range ch {
			if _, err := down.stdin.Write(data); err != nil {
				logger.Printf("pipe %s -> %s: %v", p.id, down.id, err)
				for range ch {
				}
				break
			}
		}
		_ = down.stdin.Close()
	}()

	return down, nil
}

// PipeTo copies this unit's full stdout into w, auto-starting the unit, and
// returns w for chaining. Unlike Pipe there is no downstream lifecycle: the
// destination is a plain sink.
func (p *Proc) PipeTo(w io.Writer) io.Writer {
	ch := p.stdout.Subscribe(pipeBuffer)
	p.Start()
	go func() {
		for data := range ch {
			if _, err := w.Write(data); err != nil {
				logger.Printf("pipe %s -> sink: %v", p.id, err)
				for range ch {
				}
				return
			}
		}
	}()
	return w
}
