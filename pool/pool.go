// Copyright 2024 The sonlib-go Authors
// This file is part of sonlib-go.
//
// sonlib-go is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// sonlib-go is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with sonlib-go. If not, see <http://www.gnu.org/licenses/>.

// Package pool is the bounded worker pool of spec C8: a fixed set of
// goroutines pulling work off a shared LIFO stack, with an optional
// serialized finisher run after each unit completes.
package pool

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// Pool runs numWorkers goroutines, each repeatedly popping a Unit off a
// shared LIFO stack and passing it to workFunc. If finishFunc is non-nil, it
// is called with every result, one at a time, on the worker goroutine that
// produced it.
//
// Containers, trees, matrices and the rest of the library assume a single
// caller; Pool is the only component in the module meant to be driven from
// multiple goroutines at once.
type Pool[Unit, Result any] struct {
	workFunc   func(Unit) Result
	finishFunc func(Result)

	mu       sync.Mutex
	workCond *sync.Cond
	doneCond *sync.Cond
	stack    []Unit
	idle     int
	killed   bool

	numWorkers int
	finishMu   sync.Mutex
	workers    errgroup.Group
}

// New starts a pool of numWorkers goroutines. finishFunc may be nil if
// results don't need separate handling.
func New[Unit, Result any](numWorkers int, workFunc func(Unit) Result, finishFunc func(Result)) *Pool[Unit, Result] {
	p := &Pool[Unit, Result]{
		workFunc:   workFunc,
		finishFunc: finishFunc,
		numWorkers: numWorkers,
	}
	p.workCond = sync.NewCond(&p.mu)
	p.doneCond = sync.NewCond(&p.mu)
	for i := 0; i < numWorkers; i++ {
		p.workers.Go(func() error {
			p.workerLoop()
			return nil
		})
	}
	return p
}

// Push adds unit to the top of the work stack, to be picked up by whichever
// worker gets to it next. Order between pushes is not preserved: a unit
// pushed later may be popped, and complete, before one pushed earlier.
func (p *Pool[Unit, Result]) Push(unit Unit) {
	p.mu.Lock()
	p.stack = append(p.stack, unit)
	p.mu.Unlock()
	p.workCond.Signal()
}

// Wait blocks until the work stack is empty and every worker is idle.
func (p *Pool[Unit, Result]) Wait() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.stack) > 0 || p.idle != p.numWorkers {
		p.doneCond.Wait()
	}
}

// Destruct signals every worker to stop once it next checks for work and
// blocks until all of them have exited. It does not interrupt a workFunc
// call already in progress; callers are responsible for workFunc returning
// in bounded time.
func (p *Pool[Unit, Result]) Destruct() {
	p.mu.Lock()
	p.killed = true
	p.mu.Unlock()
	for i := 0; i < p.numWorkers; i++ {
		p.workCond.Signal()
	}
	p.workers.Wait()
}

func (p *Pool[Unit, Result]) workerLoop() {
	for {
		p.mu.Lock()
		for len(p.stack) == 0 && !p.killed {
			p.idle++
			p.doneCond.Broadcast()
			p.workCond.Wait()
			p.idle--
		}
		if p.killed {
			p.mu.Unlock()
			return
		}
		unit := p.pop()
		p.mu.Unlock()

		result := p.workFunc(unit)

		if p.finishFunc != nil {
			p.finishMu.Lock()
			p.finishFunc(result)
			p.finishMu.Unlock()
		}
	}
}

// pop must be called with p.mu held and p.stack non-empty.
func (p *Pool[Unit, Result]) pop() Unit {
	n := len(p.stack)
	u := p.stack[n-1]
	p.stack = p.stack[:n-1]
	return u
}
