package workerpool

import (
	"context"
)

const DefaultWorkersCount = 10

type Worker struct{}

type Pool[Data any] struct {
	size    int
	pool    chan *Worker
	handler func(ctx context.Context, msg Data) error
}

func New[Data any](size int, handler func(ctx context.Context, msg Data) error) *Pool[Data] {
	if size <= 0 {
		size = DefaultWorkersCount
	}

	return &Pool[Data]{
		size:    size,
		pool:    make(chan *Worker, size),
		handler: handler,
	}
}

func (p *Pool[Data]) Size() int {
	return p.size
}

func (p *Pool[Data]) Create() {
	for range p.size {
		p.pool <- &Worker{}
	}
}

func (p *Pool[Data]) Handle(ctx context.Context, data Data) error {
	w := <-p.pool

	defer func() { p.pool <- w }()

	return p.handler(ctx, data)
}

func (p *Pool[Data]) Wait() {
	for range p.size {
		<-p.pool
	}
}
