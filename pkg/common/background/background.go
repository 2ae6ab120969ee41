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

package background

import (
	"time"

	"errors"

	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally"
	"go.uber.org/atomic"

	"github.com/searchstack/mlnode/pkg/common/lifecycle"
)

var (
	errEmptyName     = errors.New("background work name cannot be empty")
	errDuplicateName = errors.New("duplicate background work name")
)

// Work refers to a piece of background work which needs to happen
// periodically.
type Work struct {
	Name   string
	Period time.Duration

	// Func is invoked once per period. The running flag is reset when
	// the work is stopped; long running funcs should poll it and bail
	// out early.
	Func func(running *atomic.Bool)

	// InitialDelay, when non-nil, is evaluated on every Start to
	// compute the delay before the first run. This allows works with a
	// wall-clock schedule to recompute their next trigger time after a
	// stop/start cycle.
	InitialDelay func() time.Duration
}

// Manager allows multiple background Works to be registered and
// started/stopped together. Start and Stop are idempotent and may be
// alternated repeatedly.
type Manager interface {
	// Start starts all registered background works.
	Start()
	// Stop stops all registered background works and blocks until the
	// runner goroutines have exited.
	Stop()
	// RegisterWorks registers background works against the Manager.
	RegisterWorks(works ...Work) error
}

// manager implements Manager.
type manager struct {
	runners map[string]*runner
	scope   tally.Scope
}

// NewManager creates a new Manager emitting per-work run metrics to the
// given scope.
func NewManager(scope tally.Scope) Manager {
	return &manager{
		runners: make(map[string]*runner),
		scope:   scope.SubScope("background"),
	}
}

func (m *manager) RegisterWorks(works ...Work) error {
	for _, work := range works {
		if work.Name == "" {
			return errEmptyName
		}
		if _, ok := m.runners[work.Name]; ok {
			return errDuplicateName
		}

		m.runners[work.Name] = &runner{
			work: work,
			lc:   lifecycle.NewLifeCycle(),
			runs: m.scope.Tagged(map[string]string{"work": work.Name}).Counter("runs"),
		}
	}
	return nil
}

func (m *manager) Start() {
	for _, r := range m.runners {
		r.start()
	}
}

func (m *manager) Stop() {
	for _, r := range m.runners {
		r.stop()
	}
}

type runner struct {
	work    Work
	lc      lifecycle.LifeCycle
	running atomic.Bool
	runs    tally.Counter
}

func (r *runner) start() {
	if !r.lc.Start() {
		log.WithField("name", r.work.Name).
			Info("Background work is already running, no-op.")
		return
	}
	log.WithField("name", r.work.Name).Info("Starting background work.")
	r.running.Store(true)

	stopCh := r.lc.StopCh()
	go func() {
		defer r.lc.StopComplete()

		if r.work.InitialDelay != nil {
			delay := r.work.InitialDelay()
			log.WithField("name", r.work.Name).
				WithField("initial_delay", delay).
				Info("Initial delay for background work")

			initialTimer := time.NewTimer(delay)
			select {
			case <-stopCh:
				initialTimer.Stop()
				log.WithField("name", r.work.Name).
					Info("Background work stopped before first run.")
				return
			case <-initialTimer.C:
			}
		}

		ticker := time.NewTicker(r.work.Period)
		defer ticker.Stop()
		for {
			r.work.Func(&r.running)
			r.runs.Inc(1)

			select {
			case <-stopCh:
				log.WithField("name", r.work.Name).
					Info("Background work stopped.")
				return
			case t := <-ticker.C:
				log.WithField("tick", t).
					WithField("name", r.work.Name).
					Debug("Background work triggered.")
			}
		}
	}()
}

func (r *runner) stop() {
	if !r.lc.Stop() {
		log.WithField("name", r.work.Name).
			Warn("Background work is not running, no-op.")
		return
	}
	log.WithField("name", r.work.Name).Info("Stopping background work.")
	r.running.Store(false)
	r.lc.Wait()
	log.WithField("name", r.work.Name).Info("Background work stop confirmed.")
}
