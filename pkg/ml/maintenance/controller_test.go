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
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"
	"github.com/uber-go/tally"

	"github.com/searchstack/mlnode/pkg/cluster"
	"github.com/searchstack/mlnode/pkg/common/stringset"
)

type controllerTestSuite struct {
	suite.Suite

	fake       *fakeAdmin
	testScope  tally.TestScope
	metrics    *Metrics
	service    *Service
	controller *Controller
}

func TestControllerTestSuite(t *testing.T) {
	suite.Run(t, new(controllerTestSuite))
}

func (s *controllerTestSuite) SetupTest() {
	s.fake = newFakeAdmin()
	s.testScope = tally.NewTestScope("", nil)
	s.metrics = NewMetrics(s.testScope)

	service, err := NewService(tally.NoopScope, s.metrics, Config{})
	s.NoError(err)
	s.service = service

	s.controller = NewController(s.fake, service, s.metrics)
}

func (s *controllerTestSuite) TearDownTest() {
	s.service.Stop()
}

func (s *controllerTestSuite) notify(leader, recovered bool, templates ...string) {
	s.controller.ClusterChanged(cluster.Event{
		State: cluster.State{
			Leader:           leader,
			RecoveryComplete: recovered,
			Templates:        stringset.New(templates...),
		},
	})
}

func (s *controllerTestSuite) counterValue(name string) int64 {
	for _, c := range s.testScope.Snapshot().Counters() {
		if c.Name() == name {
			return c.Value()
		}
	}
	return 0
}

func (s *controllerTestSuite) TestInitialStateIsFollower() {
	s.False(s.controller.IsMaster())
	s.False(s.service.Running())
}

func (s *controllerTestSuite) TestMaintenanceRunsIffLeader() {
	transitions := []bool{true, false, true, true, false, false, true}
	for _, leader := range transitions {
		s.notify(leader, true)
		s.Equal(leader, s.controller.IsMaster())
		s.Equal(leader, s.service.Running())
	}
}

func (s *controllerTestSuite) TestElectionDrivenTransitions() {
	s.controller.OnMaster()
	s.True(s.controller.IsMaster())
	s.True(s.service.Running())
	// repeated gain is a no-op
	s.controller.OnMaster()
	s.True(s.service.Running())

	s.controller.OffMaster()
	s.False(s.controller.IsMaster())
	s.False(s.service.Running())
	s.controller.OffMaster()
	s.False(s.service.Running())
}

func (s *controllerTestSuite) TestHiderTriggeredOnLeadershipGain() {
	s.notify(true, true)
	s.Eventually(func() bool {
		return s.controller.Hider().Hidden()
	}, time.Second, 10*time.Millisecond)
}

func (s *controllerTestSuite) TestNoRemoteActionBeforeRecovery() {
	s.notify(true, false, ".ml-meta")

	// the leadership transition itself still happens
	s.True(s.controller.IsMaster())
	s.True(s.service.Running())
	// but no remediation is attempted until recovery completes
	s.Zero(s.fake.createCount())
	s.Empty(s.fake.deletedTemplates())
}

func (s *controllerTestSuite) TestIndexCreationGuardCoalescesTriggers() {
	s.fake.deferCreate = true

	s.notify(true, true)
	s.notify(true, true)
	s.notify(true, true)
	s.Equal(1, s.fake.createCount())

	s.fake.completePending()
	s.notify(true, true)
	s.Equal(2, s.fake.createCount())
}

func (s *controllerTestSuite) TestIndexCreationSkippedAsFollower() {
	s.notify(false, true)
	s.Zero(s.fake.createCount())
}

func (s *controllerTestSuite) TestIndexCreationFailureCounted() {
	s.fake.createErr = errors.New("creation failed")

	s.notify(true, true)
	s.notify(true, true)

	// retry semantics are unchanged; the counter observes each failure
	// even when the repeated identical message is demoted to debug
	s.Equal(2, s.fake.createCount())
	s.Equal(int64(2), s.counterValue("maintenance.index_creation_failures"))
}

func (s *controllerTestSuite) TestLegacyTemplateSweepScenario() {
	s.notify(true, true, ".ml-meta", ".ml-state")
	s.Equal([]string{".ml-meta"}, s.fake.deletedTemplates())

	s.notify(true, true, ".ml-state")
	s.Equal([]string{".ml-meta", ".ml-state"}, s.fake.deletedTemplates())

	s.notify(true, true)
	s.False(s.controller.Sweeper().Enabled())

	// permanently disabled, even if a legacy template reappears later
	s.notify(true, true, ".ml-meta")
	s.Equal([]string{".ml-meta", ".ml-state"}, s.fake.deletedTemplates())
}

func (s *controllerTestSuite) TestSweepSkippedAsFollower() {
	s.notify(false, true, ".ml-meta")
	s.Empty(s.fake.deletedTemplates())
	s.True(s.controller.Sweeper().Enabled())
}
