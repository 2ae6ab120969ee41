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
	"fmt"
	"sync"
	"testing"

	libkvmock "github.com/docker/libkv/store/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/uber-go/tally"
)

type testComponent struct {
	host   string
	port   string
	events chan string
}

func (x *testComponent) GainedLeadershipCallback() error {
	x.events <- "leadership_gained"
	return nil
}
func (x *testComponent) LostLeadershipCallback() error {
	x.events <- "leadership_lost"
	return nil
}
func (x *testComponent) ShutDownCallback() error {
	x.events <- "shutdown"
	return nil
}
func (x *testComponent) GetID() string { return x.host + ":" + x.port }

type testLock struct {
	lock   sync.RWMutex
	lostCh chan struct{}
}

func (l *testLock) Lock(stopChan chan struct{}) (<-chan struct{}, error) {
	l.lock.Lock()
	l.lostCh = make(chan struct{})
	return l.lostCh, nil
}

func (l *testLock) Unlock() error {
	l.lock.Unlock()
	close(l.lostCh)
	return nil
}

func newMockElection(t *testing.T, nomination Nomination) *election {
	cfg := ElectionConfig{Root: "/mlnode/fake"}
	role := "testrole"
	key := leaderPath(cfg.Root, role)

	kv, err := libkvmock.New([]string{}, nil)
	assert.NoError(t, err)
	assert.NotNil(t, kv)
	mockStore := kv.(*libkvmock.Mock)
	// mock store should return the same lock for the same key
	mockStore.On("NewLock", key, mock.Anything).Return(&testLock{}, nil)

	return newElection(cfg, mockStore, tally.NoopScope, role, nomination)
}

func TestNewCandidateRequiresRole(t *testing.T) {
	nomination := &testComponent{
		host:   "testhost",
		port:   "666",
		events: make(chan string, 100),
	}

	el, err := NewCandidate(
		ElectionConfig{
			ZKServers: []string{"1.1.1.1:2181"},
			Root:      "/mlnode",
		},
		tally.NoopScope,
		"",
		nomination,
	)
	assert.Error(t, err)
	assert.Nil(t, el)
}

func TestLeaderElection(t *testing.T) {
	nomination := &testComponent{
		host:   "testhost",
		port:   "666",
		events: make(chan string, 100),
	}
	el := newMockElection(t, nomination)

	err := el.Start()
	assert.NoError(t, err)

	// Should issue a false upon start, no matter what.
	assert.Equal(t, "leadership_lost", <-nomination.events)

	// Since the lock always succeeds, we should get elected.
	assert.Equal(t, "leadership_gained", <-nomination.events)
	assert.Equal(t, true, el.IsLeader())

	// When we resign, unlock will get called, we'll be notified of the
	// de-election and we'll try to get the lock again.
	go el.Resign()
	assert.Equal(t, "leadership_lost", <-nomination.events)
	assert.Equal(t, "leadership_gained", <-nomination.events)
	assert.Equal(t, true, el.IsLeader())

	err = el.Stop()
	assert.NoError(t, err)
	// make sure abdicating triggers shutdown handler
	assert.Equal(t, "shutdown", <-nomination.events)
	// and then you are no longer leader
	assert.Equal(t, false, el.IsLeader())
}

func TestStartIsNotReentrant(t *testing.T) {
	nomination := &testComponent{
		host:   "testhost",
		port:   "666",
		events: make(chan string, 100),
	}
	el := newMockElection(t, nomination)

	assert.NoError(t, el.Start())
	assert.Error(t, el.Start())

	assert.Equal(t, "leadership_lost", <-nomination.events)
	assert.Equal(t, "leadership_gained", <-nomination.events)

	assert.NoError(t, el.Stop())
	assert.Equal(t, "shutdown", <-nomination.events)
}

// electionFailureTestComponent fails the initial call of
// GainedLeadershipCallback
type electionFailureTestComponent struct {
	sync.RWMutex
	firstCall bool
	*testComponent
}

func (x *electionFailureTestComponent) GainedLeadershipCallback() error {
	x.Lock()
	defer x.Unlock()
	x.testComponent.GainedLeadershipCallback()
	if x.firstCall {
		x.firstCall = false
		return fmt.Errorf("GainedLeadershipCallback test err")
	}
	return nil
}

// if GainedLeadershipCallback fails, the candidate re-campaigns and a
// new leader gets elected
func TestLeaderElectionIfGainedLeadershipCallbackFails(t *testing.T) {
	nomination := &electionFailureTestComponent{
		firstCall: true,
		testComponent: &testComponent{
			host:   "testhost",
			port:   "666",
			events: make(chan string, 100),
		},
	}
	el := newMockElection(t, nomination)

	err := el.Start()
	assert.NoError(t, err)

	// Should issue a false upon start, no matter what.
	assert.Equal(t, "leadership_lost", <-nomination.events)
	// Since the lock always succeeds, we should get elected.
	assert.Equal(t, "leadership_gained", <-nomination.events)
	// GainedLeadershipCallback fails, we should lose the leadership
	assert.Equal(t, "leadership_lost", <-nomination.events)
	// regain the leadership on the second try
	assert.Equal(t, "leadership_gained", <-nomination.events)
	assert.Equal(t, true, el.IsLeader())

	err = el.Stop()
	assert.NoError(t, err)
	assert.Equal(t, "shutdown", <-nomination.events)
	assert.Equal(t, false, el.IsLeader())
}

func TestLeaderPath(t *testing.T) {
	assert.Equal(t,
		"mlnode/prod/mlmaintenance/leader",
		leaderPath("/mlnode/prod", "mlmaintenance"))
	assert.Equal(t,
		"mlnode/mlmaintenance/leader",
		leaderPath("mlnode", "mlmaintenance"))
}
