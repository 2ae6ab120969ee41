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
	"github.com/uber-go/tally"
)

// Metrics tracks the remediation actions of the maintenance controller.
// Failure counters observe what the logs already record; they do not
// change the retry behavior.
type Metrics struct {
	IndexCreationFailures  tally.Counter
	TemplatesDeleted       tally.Counter
	TemplateDeleteFailures tally.Counter
	IndicesHidden          tally.Counter
	HideFailures           tally.Counter
	MaintenanceRuns        tally.Counter
	MaintenanceFailures    tally.Counter
	GainedLeadership       tally.Counter
	LostLeadership         tally.Counter
}

// NewMetrics returns the metrics for the maintenance controller using
// the given scope.
func NewMetrics(scope tally.Scope) *Metrics {
	s := scope.SubScope("maintenance")

	return &Metrics{
		IndexCreationFailures:  s.Counter("index_creation_failures"),
		TemplatesDeleted:       s.Counter("templates_deleted"),
		TemplateDeleteFailures: s.Counter("template_delete_failures"),
		IndicesHidden:          s.Counter("indices_hidden"),
		HideFailures:           s.Counter("hide_failures"),
		MaintenanceRuns:        s.Counter("maintenance_runs"),
		MaintenanceFailures:    s.Counter("maintenance_failures"),
		GainedLeadership:       s.Counter("gained_leadership"),
		LostLeadership:         s.Counter("lost_leadership"),
	}
}
