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
	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/searchstack/mlnode/pkg/admin"
	"github.com/searchstack/mlnode/pkg/common/inflight"
	"github.com/searchstack/mlnode/pkg/common/stringset"
)

// TemplateSweeper removes deprecated legacy index templates, at most one
// per cluster state notification. Bounding each call to a single delete
// avoids request storms on bursty state updates, and the in-flight guard
// prevents overlapping deletes of the same template when notifications
// arrive faster than the request round trip.
type TemplateSweeper struct {
	client  admin.Client
	guard   *inflight.Guard
	legacy  []string
	enabled *atomic.Bool
	metrics *Metrics
}

// NewTemplateSweeper creates a sweeper over the fixed legacy template
// list. It starts enabled and is disabled permanently by the controller
// once a sweep finds nothing left to delete.
func NewTemplateSweeper(client admin.Client, metrics *Metrics) *TemplateSweeper {
	return &TemplateSweeper{
		client:  client,
		guard:   inflight.NewGuard(),
		legacy:  LegacyIndexTemplates,
		enabled: atomic.NewBool(true),
		metrics: metrics,
	}
}

// Enabled returns whether the sweeper should still be invoked.
func (s *TemplateSweeper) Enabled() bool {
	return s.enabled.Load()
}

// Disable turns the sweeper off permanently. The transition is one-way.
func (s *TemplateSweeper) Disable() {
	if s.enabled.CompareAndSwap(true, false) {
		log.Debug("No legacy index templates remain; sweeping disabled.")
	}
}

// SweepOnce deletes at most one legacy template still present in the
// given cluster templates. It returns true if further calls are
// worthwhile and false if no legacy template remains, in which case it
// never needs to be called again.
func (s *TemplateSweeper) SweepOnce(templates stringset.StringSet) bool {
	name := s.nextToDelete(templates)
	if name == "" {
		return false
	}

	if !s.guard.TryAcquire() {
		// a delete is already in flight; retry on a later notification
		return true
	}

	req := &admin.DeleteTemplateRequest{Name: name}
	s.client.DeleteTemplate(req, func(ack *admin.Ack, err error) {
		s.guard.Release()
		if err != nil {
			// the template may have been deleted concurrently; either
			// way the next sweep re-derives the remaining work
			s.metrics.TemplateDeleteFailures.Inc(1)
			log.WithField("template", name).WithError(err).
				Debug("Error deleting legacy index template.")
			return
		}
		s.metrics.TemplatesDeleted.Inc(1)
		log.WithField("template", name).
			Debug("Deleted legacy index template.")
	})

	return true
}

// nextToDelete returns the first legacy template still present, in the
// fixed sweep order, or "" when none remain.
func (s *TemplateSweeper) nextToDelete(templates stringset.StringSet) string {
	if templates == nil {
		return ""
	}
	for _, name := range s.legacy {
		if templates.Contains(name) {
			return name
		}
	}
	return ""
}
