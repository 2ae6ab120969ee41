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

// Package health emits a periodic liveness heartbeat metric, plus a
// leader gauge so dashboards can locate the elected maintenance node.
package health

import (
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally"

	"github.com/searchstack/mlnode/pkg/common/leader"
	"github.com/searchstack/mlnode/pkg/common/lifecycle"
)

const _defaultHeartbeatInterval = 10 * time.Second

// Config holds the heartbeat tunables.
type Config struct {
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
}

// Heartbeat periodically emits liveness and leadership metrics.
type Heartbeat interface {
	Start()
	Stop()
}

type heartbeat struct {
	lifecycle lifecycle.LifeCycle

	interval  time.Duration
	candidate leader.Candidate

	heartbeatGauge tally.Gauge
	leaderGauge    tally.Gauge
}

// New creates a heartbeat for the given election candidate. A nil
// candidate emits liveness only.
func New(
	parent tally.Scope,
	cfg Config,
	candidate leader.Candidate) Heartbeat {

	interval := cfg.HeartbeatInterval
	if interval <= 0 {
		interval = _defaultHeartbeatInterval
	}
	scope := parent.SubScope("health")
	return &heartbeat{
		lifecycle:      lifecycle.NewLifeCycle(),
		interval:       interval,
		candidate:      candidate,
		heartbeatGauge: scope.Gauge("heartbeat"),
		leaderGauge:    scope.Gauge("leader"),
	}
}

func (hb *heartbeat) Start() {
	if !hb.lifecycle.Start() {
		return
	}
	log.Info("Heartbeat started.")

	go func() {
		defer hb.lifecycle.StopComplete()

		ticker := time.NewTicker(hb.interval)
		defer ticker.Stop()

		for {
			select {
			case <-hb.lifecycle.StopCh():
				log.Info("Heartbeat stopped.")
				return
			case <-ticker.C:
				hb.heartbeatGauge.Update(1)
				if hb.candidate != nil && hb.candidate.IsLeader() {
					hb.leaderGauge.Update(1)
				} else {
					hb.leaderGauge.Update(0)
				}
			}
		}
	}()
}

func (hb *heartbeat) Stop() {
	if !hb.lifecycle.Stop() {
		return
	}
	hb.lifecycle.Wait()
}
