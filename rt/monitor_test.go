package rt

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMonitor_ReentrantEnter(t *testing.T) {
	m := NewMonitor()
	m.Enter()
	m.Enter() // same goroutine, must not deadlock
	m.Enter()
	m.Exit()
	m.Exit()
	m.Exit()
}

func TestMonitor_ExitByNonOwnerPanics(t *testing.T) {
	m := NewMonitor()
	m.Enter()
	done := make(chan any, 1)
	go func() {
		defer func() { done <- recover() }()
		m.Exit()
	}()
	require.NotNil(t, <-done)
	m.Exit()
}

func TestMonitor_MutualExclusion(t *testing.T) {
	m := NewMonitor()
	var counter int
	var wg sync.WaitGroup
	const goroutines = 50
	const increments = 200
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < increments; j++ {
				m.Enter()
				counter++
				m.Exit()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, goroutines*increments, counter)
}

func TestMonitor_WaitNotifyAll(t *testing.T) {
	m := NewMonitor()
	ready := false
	var wg sync.WaitGroup
	const waiters = 10
	wg.Add(waiters)
	for i := 0; i < waiters; i++ {
		go func() {
			defer wg.Done()
			m.Enter()
			for !ready {
				m.Wait(nil, 0)
			}
			m.Exit()
		}()
	}

	time.Sleep(20 * time.Millisecond) // let waiters park
	m.Enter()
	ready = true
	m.NotifyAll()
	m.Exit()

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("waiters never woke")
	}
}

func TestMonitor_WaitTimesOut(t *testing.T) {
	m := NewMonitor()
	m.Enter()
	start := time.Now()
	result := m.Wait(nil, 30)
	elapsed := time.Since(start)
	m.Exit()
	require.Equal(t, WaitTimedOut, result)
	require.GreaterOrEqual(t, elapsed, 25*time.Millisecond)
}

func TestMonitor_WaitInterrupted(t *testing.T) {
	m := NewMonitor()
	flag := NewInterruptFlag()

	go func() {
		time.Sleep(10 * time.Millisecond)
		flag.Set()
	}()

	m.Enter()
	result := m.Wait(flag, 0)
	m.Exit()
	require.Equal(t, WaitInterrupted, result)
}

func TestMonitor_WaitAlreadyInterrupted(t *testing.T) {
	m := NewMonitor()
	flag := NewInterruptFlag()
	flag.Set()

	m.Enter()
	result := m.Wait(flag, 0)
	m.Exit()
	require.Equal(t, WaitInterrupted, result)
}

func TestMonitor_WaitRestoresRecursionDepth(t *testing.T) {
	m := NewMonitor()
	m.Enter()
	m.Enter()
	go func() {
		time.Sleep(10 * time.Millisecond)
		m.Enter()
		m.NotifyAll()
		m.Exit()
	}()
	m.Wait(nil, time.Second.Milliseconds())
	// still holding two levels from before the wait
	m.Exit()
	m.Exit()
}
