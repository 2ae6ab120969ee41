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

package leader

import (
	"path"
	"strings"
	"sync"
	"time"

	"github.com/docker/leadership"
	"github.com/docker/libkv/store"
	"github.com/docker/libkv/store/zookeeper"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally"
)

const (
	// ttl is the election ttl for docker/leadership
	ttl = 15 * time.Second
	// zkConnErrRetry is how long to wait before restarting campaigning
	// for leadership on connection error
	zkConnErrRetry = 1 * time.Second
)

// ElectionConfig is the config for leader election of this service.
type ElectionConfig struct {
	// A list of ZK servers to use for leader election
	ZKServers []string `yaml:"zk_servers"`
	// The root path in ZK to use for role leader election, e.g.
	// /mlnode/YOURCLUSTERHERE
	Root string `yaml:"root"`
}

// election holds the state of one candidacy.
type election struct {
	sync.Mutex
	metrics    electionMetrics
	running    bool
	role       string
	candidate  *leadership.Candidate
	nomination Nomination
}

// NewCandidate creates a new election object to control participation
// in leader election for the given role.
func NewCandidate(
	cfg ElectionConfig,
	parent tally.Scope,
	role string,
	nomination Nomination) (Candidate, error) {

	if role == "" {
		return nil, errors.New("a role is required to campaign for leadership")
	}

	log.WithFields(log.Fields{"id": nomination.GetID(), "role": role}).
		Debug("Creating new Candidate")

	client, err := zookeeper.New(
		cfg.ZKServers,
		&store.Config{ConnectionTimeout: zkConnErrRetry},
	)
	if err != nil {
		return nil, err
	}
	return newElection(cfg, client, parent, role, nomination), nil
}

// newElection wires an election against an arbitrary libkv store, which
// lets tests substitute a mock store.
func newElection(
	cfg ElectionConfig,
	client store.Store,
	parent tally.Scope,
	role string,
	nomination Nomination) *election {

	candidate := leadership.NewCandidate(
		client,
		leaderPath(cfg.Root, role),
		nomination.GetID(),
		ttl,
	)
	return &election{
		metrics:    newElectionMetrics(parent.SubScope("election"), role),
		role:       role,
		candidate:  candidate,
		nomination: nomination,
	}
}

// Start begins campaigning for leadership and invokes the nomination
// callbacks on leadership changes. It handles connection errors and
// retries until Stop is called.
func (el *election) Start() error {
	el.Lock()
	defer el.Unlock()
	if el.running {
		return errors.New("already running election")
	}
	el.running = true
	el.metrics.Start.Inc(1)
	el.metrics.Running.Update(1)

	log.WithField("role", el.role).Info("Joining election")
	go func() {
		for el.isRunning() {
			if err := el.waitForEvent(); err != nil {
				log.WithField("role", el.role).
					Errorf("Failure running election; retrying: %v", err)
			}
			time.Sleep(zkConnErrRetry)
		}
		log.Info("Stopped running election")
	}()

	return nil
}

// waitForEvent blocks until an event is handled from either the error
// channel or the election channel. It is called in a retry loop.
func (el *election) waitForEvent() error {
	electionCh, errCh := el.candidate.RunForElection()

	for {
		select {
		case isElected := <-electionCh:
			if isElected {
				log.WithFields(log.Fields{
					"id":   el.nomination.GetID(),
					"role": el.role,
				}).Info("Leadership gained")
				el.metrics.GainedLeadership.Inc(1)
				el.metrics.IsLeader.Update(1)
				if err := el.nomination.GainedLeadershipCallback(); err != nil {
					log.WithFields(log.Fields{
						"id":    el.nomination.GetID(),
						"role":  el.role,
						"error": err,
					}).Error("GainedLeadershipCallback failed")
					return err
				}
			} else {
				log.WithFields(log.Fields{
					"id":   el.nomination.GetID(),
					"role": el.role,
				}).Info("Leadership lost")
				el.metrics.LostLeadership.Inc(1)
				el.metrics.IsLeader.Update(0)
				if err := el.nomination.LostLeadershipCallback(); err != nil {
					log.WithFields(log.Fields{
						"id":    el.nomination.GetID(),
						"role":  el.role,
						"error": err,
					}).Error("LostLeadershipCallback failed")
					return err
				}
			}
		case err := <-errCh:
			if err != nil {
				log.WithFields(log.Fields{
					"role":  el.role,
					"error": err,
				}).Error("Error participating in election")
				el.metrics.Error.Inc(1)
				return err
			}
			// shutdown signal from the leadership lib; the caller
			// decides whether to keep campaigning
			return nil
		}
	}
}

// Stop stops campaigning for leadership and invokes the shutdown
// callback.
func (el *election) Stop() error {
	el.Lock()
	if el.running {
		el.running = false
		el.metrics.Stop.Inc(1)
		el.metrics.Running.Update(0)
		el.candidate.Stop()
		// resign asynchronously to avoid deadlocking
		go el.Resign()
	}
	el.Unlock()
	return el.nomination.ShutDownCallback()
}

// Resign gives up leadership.
func (el *election) Resign() {
	el.metrics.Resigned.Inc(1)
	el.candidate.Resign()
}

// IsLeader returns whether this candidate is the current leader.
func (el *election) IsLeader() bool {
	// the candidate reports leader even after a resignation, so gate
	// on whether we are actively campaigning
	return el.isRunning() && el.candidate.IsLeader()
}

func (el *election) isRunning() bool {
	el.Lock()
	defer el.Unlock()
	return el.running
}

// leaderPath returns the full election store path to the leader node
// given the path root and a role.
func leaderPath(rootPath string, role string) string {
	// there cannot be a leading / for libkv
	return strings.TrimPrefix(path.Join(rootPath, role, "leader"), "/")
}
