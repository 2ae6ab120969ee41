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

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/uber-go/tally"

	"github.com/searchstack/mlnode/pkg/common/stringset"
)

func newTestSweeper(fake *fakeAdmin) *TemplateSweeper {
	return NewTemplateSweeper(fake, NewMetrics(tally.NoopScope))
}

func TestSweepDeletesOneTemplatePerCall(t *testing.T) {
	fake := newFakeAdmin()
	s := newTestSweeper(fake)

	templates := stringset.New(".ml-meta", ".ml-state")

	assert.True(t, s.SweepOnce(templates))
	assert.Equal(t, []string{".ml-meta"}, fake.deletedTemplates())

	templates.Remove(".ml-meta")
	assert.True(t, s.SweepOnce(templates))
	assert.Equal(t, []string{".ml-meta", ".ml-state"}, fake.deletedTemplates())

	templates.Remove(".ml-state")
	assert.False(t, s.SweepOnce(templates))
	assert.Equal(t, []string{".ml-meta", ".ml-state"}, fake.deletedTemplates())
}

func TestSweepFollowsFixedOrder(t *testing.T) {
	fake := newFakeAdmin()
	s := newTestSweeper(fake)

	// .ml-config precedes .ml-state in the fixed sweep order no matter
	// how the cluster reports them
	templates := stringset.New(".ml-state", ".ml-config")
	assert.True(t, s.SweepOnce(templates))
	assert.Equal(t, []string{".ml-config"}, fake.deletedTemplates())
}

func TestSweepSkipsWhileDeleteInFlight(t *testing.T) {
	fake := newFakeAdmin()
	fake.deferDelete = true
	s := newTestSweeper(fake)

	templates := stringset.New(".ml-meta")

	assert.True(t, s.SweepOnce(templates))
	// the first delete has not completed; further sweeps are no-ops
	// that still request a future call
	assert.True(t, s.SweepOnce(templates))
	assert.True(t, s.SweepOnce(templates))
	assert.Equal(t, []string{".ml-meta"}, fake.deletedTemplates())

	fake.completePending()
	assert.True(t, s.SweepOnce(templates))
	assert.Equal(t, []string{".ml-meta", ".ml-meta"}, fake.deletedTemplates())
}

func TestSweepDeleteFailureIsNotEscalated(t *testing.T) {
	fake := newFakeAdmin()
	fake.deleteErr = errors.New("template already deleted")
	s := newTestSweeper(fake)

	templates := stringset.New(".ml-meta")

	// failures are logged only; the guard is released so the next
	// sweep can retry
	assert.True(t, s.SweepOnce(templates))
	assert.True(t, s.SweepOnce(templates))
	assert.Equal(t, []string{".ml-meta", ".ml-meta"}, fake.deletedTemplates())
}

func TestSweepEmptyAndNilTemplates(t *testing.T) {
	fake := newFakeAdmin()
	s := newTestSweeper(fake)

	assert.False(t, s.SweepOnce(stringset.New()))
	assert.False(t, s.SweepOnce(nil))
	assert.Empty(t, fake.deletedTemplates())
}

func TestSweeperDisableIsPermanent(t *testing.T) {
	fake := newFakeAdmin()
	s := newTestSweeper(fake)

	assert.True(t, s.Enabled())
	s.Disable()
	assert.False(t, s.Enabled())
	s.Disable()
	assert.False(t, s.Enabled())
}
