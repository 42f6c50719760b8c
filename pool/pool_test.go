// Copyright 2024 The sonlib-go Authors
// This file is part of sonlib-go.

package pool_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/benedictpaten/sonlib-go/pool"
)

func TestPoolRunsAllUnits(t *testing.T) {
	var sum int64
	p := pool.New(4, func(u int) int {
		return u * u
	}, func(r int) {
		atomic.AddInt64(&sum, int64(r))
	})

	for i := 1; i <= 10; i++ {
		p.Push(i)
	}
	p.Wait()
	p.Destruct()

	require.Equal(t, int64(385), atomic.LoadInt64(&sum)) // sum of squares 1..10
}

func TestPoolWaitBlocksUntilIdle(t *testing.T) {
	started := make(chan struct{}, 3)
	release := make(chan struct{})

	p := pool.New(3, func(u int) int {
		started <- struct{}{}
		<-release
		return u
	}, nil)

	for i := 0; i < 3; i++ {
		p.Push(i)
	}
	for i := 0; i < 3; i++ {
		<-started
	}

	waitDone := make(chan struct{})
	go func() {
		p.Wait()
		close(waitDone)
	}()

	select {
	case <-waitDone:
		t.Fatal("Wait returned before workers finished")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-waitDone
	p.Destruct()
}

func TestPoolFinishFuncIsSerialized(t *testing.T) {
	var mu sync.Mutex
	inFinish := false
	overlapped := false

	p := pool.New(4, func(u int) int {
		time.Sleep(time.Millisecond)
		return u
	}, func(r int) {
		mu.Lock()
		if inFinish {
			overlapped = true
		}
		inFinish = true
		mu.Unlock()

		time.Sleep(time.Millisecond)

		mu.Lock()
		inFinish = false
		mu.Unlock()
	})

	for i := 0; i < 8; i++ {
		p.Push(i)
	}
	p.Wait()
	p.Destruct()

	require.False(t, overlapped, "finishFunc calls overlapped")
}

func TestPoolDestructJoinsIdleWorkers(t *testing.T) {
	p := pool.New(2, func(u int) int { return u }, nil)
	p.Wait()

	done := make(chan struct{})
	go func() {
		p.Destruct()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Destruct did not return for an idle pool")
	}
}
