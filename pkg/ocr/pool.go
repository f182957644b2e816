package ocr

import (
	"context"
	"errors"
	"fmt"
)

// Pool hands out a fixed set of engines, one per concurrent caller.
type Pool struct {
	engines chan Engine
	all     []Engine
}

// NewPool builds size engines with factory. Engines already built are closed
// if a later one fails.
func NewPool(size int, factory func() (Engine, error)) (*Pool, error) {
	if size < 1 {
		size = 1
	}
	p := &Pool{engines: make(chan Engine, size)}
	for i := 0; i < size; i++ {
		e, err := factory()
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("engine %d: %w", i, err)
		}
		p.all = append(p.all, e)
		p.engines <- e
	}
	return p, nil
}

// Get blocks until an engine is free or ctx is done.
func (p *Pool) Get(ctx context.Context) (Engine, error) {
	select {
	case e := <-p.engines:
		return e, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Put returns an engine taken with Get.
func (p *Pool) Put(e Engine) {
	p.engines <- e
}

func (p *Pool) Size() int { return len(p.all) }

// Close closes every engine. Engines must not be in use.
func (p *Pool) Close() error {
	var errs []error
	for _, e := range p.all {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	p.all = nil
	return errors.Join(errs...)
}
