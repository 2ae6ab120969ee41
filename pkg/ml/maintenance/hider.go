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
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/searchstack/mlnode/pkg/admin"
)

// IndexHider makes the internal ML indices and their aliases hidden.
// The pipeline re-derives its work set from current cluster state on
// every run, so it is idempotent and safe to re-trigger; a failed run
// is retried by whichever future event triggers it again. No retries
// are scheduled internally.
type IndexHider struct {
	client   admin.Client
	patterns []string
	hidden   *atomic.Bool
	metrics  *Metrics
}

// NewIndexHider creates a hider over the internal index patterns.
func NewIndexHider(client admin.Client, metrics *Metrics) *IndexHider {
	return &IndexHider{
		client:   client,
		patterns: InternalIndexPatterns,
		hidden:   atomic.NewBool(false),
		metrics:  metrics,
	}
}

// Hidden reports whether a full pipeline run has completed with every
// mutation acknowledged. The flag is advisory; the authoritative state
// lives in the cluster and is re-derived on every run.
func (h *IndexHider) Hidden() bool {
	return h.hidden.Load()
}

// HideInternalIndices starts the pipeline: fetch index settings, hide
// the indices that are not hidden yet, fetch aliases, and replace the
// aliases that are not hidden yet, preserving all other attributes.
func (h *IndexHider) HideInternalIndices() {
	req := &admin.GetSettingsRequest{Indices: h.patterns}
	h.client.GetSettings(req, func(resp *admin.SettingsResponse, err error) {
		if err != nil {
			h.fail(err)
			return
		}
		h.hideIndices(resp)
	})
}

// hideIndices issues one batched settings update for the indices that
// are not hidden yet, or short-circuits to alias handling when there is
// nothing to do.
func (h *IndexHider) hideIndices(resp *admin.SettingsResponse) {
	var nonHidden []string
	for index, settings := range resp.Indices {
		if !settings.GetAsBool(admin.SettingIndexHidden, false) {
			nonHidden = append(nonHidden, index)
		}
	}
	if len(nonHidden) == 0 {
		log.Debug("There are no internal indices that need to be made hidden.")
		h.fetchAliases()
		return
	}
	sort.Strings(nonHidden)
	log.WithField("indices", strings.Join(nonHidden, ", ")).
		Debug("The following internal indices will now be made hidden.")

	req := &admin.UpdateSettingsRequest{
		Indices:  nonHidden,
		Settings: admin.Settings{admin.SettingIndexHidden: true},
	}
	h.client.UpdateSettings(req, func(ack *admin.Ack, err error) {
		if err != nil {
			h.fail(err)
			return
		}
		if !ack.Acknowledged {
			h.metrics.HideFailures.Inc(1)
			log.Error("One or more of the internal indices could not be made hidden.")
			return
		}
		h.fetchAliases()
	})
}

// fetchAliases fetches the aliases of the internal indices once the
// indices themselves are hidden.
func (h *IndexHider) fetchAliases() {
	req := &admin.GetAliasesRequest{Indices: h.patterns}
	h.client.GetAliases(req, func(resp *admin.AliasesResponse, err error) {
		if err != nil {
			h.fail(err)
			return
		}
		h.hideAliases(resp)
	})
}

// hideAliases issues one batched alias replacement for the aliases that
// are not hidden yet, or short-circuits to completion when there is
// nothing to do.
func (h *IndexHider) hideAliases(resp *admin.AliasesResponse) {
	var actions []admin.AliasAction
	for index, aliases := range resp.Aliases {
		for _, alias := range aliases {
			if alias.IsHidden() {
				continue
			}
			actions = append(actions, aliasReplacementAction(index, alias))
		}
	}
	if len(actions) == 0 {
		log.Debug("There are no internal aliases that need to be made hidden.")
		h.complete(&admin.Ack{Acknowledged: true})
		return
	}

	descriptions := make([]string, 0, len(actions))
	for _, action := range actions {
		descriptions = append(descriptions, action.Index+": "+action.Alias.Name)
	}
	sort.Strings(descriptions)
	log.WithField("aliases", strings.Join(descriptions, "; ")).
		Debug("The following internal aliases will now be made hidden.")

	req := &admin.UpdateAliasesRequest{Actions: actions}
	h.client.UpdateAliases(req, func(ack *admin.Ack, err error) {
		if err != nil {
			h.fail(err)
			return
		}
		h.complete(ack)
	})
}

// complete records the advisory flag when every mutation has been
// acknowledged.
func (h *IndexHider) complete(ack *admin.Ack) {
	if !ack.Acknowledged {
		h.metrics.HideFailures.Inc(1)
		log.Error("One or more of the internal aliases could not be made hidden.")
		return
	}
	h.metrics.IndicesHidden.Inc(1)
	h.hidden.Store(true)
}

func (h *IndexHider) fail(err error) {
	h.metrics.HideFailures.Inc(1)
	log.WithError(err).
		Error("An error occurred while making internal indices and aliases hidden.")
}

// aliasReplacementAction re-adds the alias with the hidden flag set,
// preserving all attributes apart from is_hidden.
func aliasReplacementAction(index string, existing admin.Alias) admin.AliasAction {
	hidden := true
	return admin.AliasAction{
		Index: index,
		Alias: admin.Alias{
			Name:          existing.Name,
			Hidden:        &hidden,
			WriteIndex:    existing.WriteIndex,
			Filter:        existing.Filter,
			IndexRouting:  existing.IndexRouting,
			SearchRouting: existing.SearchRouting,
		},
	}
}
