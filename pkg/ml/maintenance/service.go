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

package maintenance

import (
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally"
	"go.uber.org/atomic"
	"golang.org/x/time/rate"

	"github.com/searchstack/mlnode/pkg/common/background"
)

const (
	maintenanceWorkName = "nightly_maintenance"
	maintenancePeriod   = 24 * time.Hour

	// the nightly run triggers at 30 minutes past UTC midnight plus a
	// random offset, spreading load across clusters that share
	// infrastructure
	maintenanceTriggerOffset = 30 * time.Minute
	maintenanceTriggerJitter = time.Hour
)

// Config holds the tunables of the nightly maintenance.
type Config struct {
	// RequestsPerSecond throttles the expired data deletion issued by
	// maintenance tasks. Zero or negative disables throttling.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// Task is one maintenance action run on every nightly trigger. Tasks
// are external collaborators; failures are logged and never abort the
// remaining tasks.
type Task struct {
	Name string
	Run  func(limiter *rate.Limiter) error
}

// Service runs the registered maintenance tasks once a day while this
// node is the leader. Start and Stop are idempotent since leadership
// may be gained and lost repeatedly.
type Service struct {
	manager background.Manager
	limiter *rate.Limiter
	tasks   []Task
	started *atomic.Bool
	metrics *Metrics
}

// NewService creates the nightly maintenance service.
func NewService(
	scope tally.Scope,
	metrics *Metrics,
	cfg Config,
	tasks ...Task) (*Service, error) {

	s := &Service{
		manager: background.NewManager(scope),
		limiter: rate.NewLimiter(toLimit(cfg.RequestsPerSecond), 1),
		tasks:   tasks,
		started: atomic.NewBool(false),
		metrics: metrics,
	}
	if err := s.manager.RegisterWorks(background.Work{
		Name:         maintenanceWorkName,
		Period:       maintenancePeriod,
		InitialDelay: delayToNextTrigger,
		Func:         s.runOnce,
	}); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins the nightly maintenance loop.
func (s *Service) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	s.manager.Start()
}

// Stop halts the nightly maintenance loop.
func (s *Service) Stop() {
	if !s.started.CompareAndSwap(true, false) {
		return
	}
	s.manager.Stop()
}

// Running reports whether the maintenance loop is active.
func (s *Service) Running() bool {
	return s.started.Load()
}

// SetRequestsPerSecond adjusts the deletion throttle at runtime.
func (s *Service) SetRequestsPerSecond(rps float64) {
	s.limiter.SetLimit(toLimit(rps))
	log.WithField("requests_per_second", rps).
		Info("Updated maintenance requests per second.")
}

func (s *Service) runOnce(running *atomic.Bool) {
	log.Info("Triggering scheduled maintenance.")
	for _, task := range s.tasks {
		if !running.Load() {
			log.WithField("task", task.Name).
				Info("Maintenance stopped before task ran.")
			return
		}
		if err := task.Run(s.limiter); err != nil {
			s.metrics.MaintenanceFailures.Inc(1)
			log.WithField("task", task.Name).WithError(err).
				Error("Maintenance task failed.")
			continue
		}
		log.WithField("task", task.Name).Debug("Maintenance task completed.")
	}
	s.metrics.MaintenanceRuns.Inc(1)
}

func toLimit(rps float64) rate.Limit {
	if rps <= 0 {
		return rate.Inf
	}
	return rate.Limit(rps)
}

// delayToNextTrigger computes the delay until the next nightly trigger
// time. Evaluated on every Start so a stop/start cycle does not reuse a
// stale delay.
func delayToNextTrigger() time.Duration {
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	next := midnight.Add(24*time.Hour + maintenanceTriggerOffset)
	jitter := time.Duration(rand.Int63n(int64(maintenanceTriggerJitter)))
	return next.Sub(now) + jitter
}
