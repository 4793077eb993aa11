package sim

import (
	"sync"

	"github.com/san-kum/phasesim/internal/dynamo"
)

// Pool recycles ensemble buffers of a fixed size, for consumers that copy
// the particles every frame.
type Pool struct {
	pool sync.Pool
	size int
}

func NewPool(size int) *Pool {
	return &Pool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				buf := make(dynamo.Ensemble, size)
				return &buf
			},
		},
	}
}

func (p *Pool) Get() dynamo.Ensemble {
	return *p.pool.Get().(*dynamo.Ensemble)
}

// Put returns a buffer. Buffers of the wrong size are dropped.
func (p *Pool) Put(e dynamo.Ensemble) {
	if len(e) != p.size {
		return
	}
	clear(e)
	p.pool.Put(&e)
}

// Capture copies the engine's particles into a pooled buffer.
func (p *Pool) Capture(e *Engine) dynamo.Ensemble {
	return e.CopyParticles(p.Get())
}
