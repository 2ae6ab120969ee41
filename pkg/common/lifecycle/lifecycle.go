// Copyright (c) 2024 Searchstack, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lifecycle

import (
	"sync"
)

// LifeCycle manages the start/stop lifecycle for the owner of a long
// running goroutine:
//
//	lc := lifecycle.NewLifeCycle()
//	lc.Start()
//	go func() {
//		defer lc.StopComplete()
//		<-lc.StopCh()
//	}()
//	lc.Stop()
//	lc.Wait() // blocks until the goroutine has exited
type LifeCycle interface {
	// Start is idempotent; it returns false if already started.
	Start() bool
	// Stop is idempotent; it returns false if already stopped.
	Stop() bool
	// StopComplete must be called by the owner when the stop action has
	// terminated. It unblocks Wait.
	StopComplete()
	// StopCh is closed when Stop is called.
	StopCh() <-chan struct{}
	// Wait blocks until StopComplete is called.
	Wait()
}

type lifeCycle struct {
	sync.RWMutex
	// stopCh is non-nil between Start and Stop
	stopCh         chan struct{}
	stopCompleteCh chan struct{}
}

// NewLifeCycle creates a new LifeCycle instance.
func NewLifeCycle() LifeCycle {
	return &lifeCycle{
		stopCompleteCh: make(chan struct{}, 1),
	}
}

func (l *lifeCycle) Start() bool {
	l.Lock()
	defer l.Unlock()

	if l.stopCh != nil {
		return false
	}
	l.stopCh = make(chan struct{})
	return true
}

func (l *lifeCycle) Stop() bool {
	l.Lock()
	defer l.Unlock()

	if l.stopCh == nil {
		return false
	}
	close(l.stopCh)
	l.stopCh = nil
	return true
}

func (l *lifeCycle) StopCh() <-chan struct{} {
	l.RLock()
	defer l.RUnlock()

	// StopCh can be called after Stop has already run; return a closed
	// channel so the caller does not block forever.
	if l.stopCh == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return l.stopCh
}

func (l *lifeCycle) StopComplete() {
	select {
	case l.stopCompleteCh <- struct{}{}:
	default:
		// already signalled
	}
}

func (l *lifeCycle) Wait() {
	<-l.stopCompleteCh
}
