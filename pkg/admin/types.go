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

// Package admin defines the asynchronous administrative API of the
// search cluster consumed by the maintenance controller. All operations
// are idempotent remote calls completing through callbacks.
package admin

// SettingIndexHidden is the per-index setting that suppresses an index
// from default listing and search operations.
const SettingIndexHidden = "index.hidden"

// Ack is the response to an administrative mutation. Acknowledged is
// false when the call succeeded but the change was not applied by all
// members.
type Ack struct {
	Acknowledged bool `json:"acknowledged"`
}

// Settings is a flat key/value view of index settings.
type Settings map[string]interface{}

// GetAsBool returns the boolean value of key, or def when the key is
// absent or not a boolean.
func (s Settings) GetAsBool(key string, def bool) bool {
	v, ok := s[key]
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	default:
		return def
	}
}

// SettingsResponse maps concrete index names to their settings.
type SettingsResponse struct {
	Indices map[string]Settings
}

// Alias is the metadata of one alias on one index.
type Alias struct {
	Name          string `json:"alias"`
	Hidden        *bool  `json:"is_hidden,omitempty"`
	WriteIndex    *bool  `json:"is_write_index,omitempty"`
	Filter        string `json:"filter,omitempty"`
	IndexRouting  string `json:"index_routing,omitempty"`
	SearchRouting string `json:"search_routing,omitempty"`
}

// IsHidden returns whether the alias is explicitly marked hidden.
func (a Alias) IsHidden() bool {
	return a.Hidden != nil && *a.Hidden
}

// AliasesResponse maps concrete index names to their aliases.
type AliasesResponse struct {
	Aliases map[string][]Alias
}

// AliasAction adds (or re-adds, replacing in place) one alias on one
// index.
type AliasAction struct {
	Index string `json:"index"`
	Alias Alias  `json:"alias"`
}

// GetSettingsRequest fetches settings for the given index names or
// patterns. Missing indices are ignored; hidden and closed indices are
// expanded.
type GetSettingsRequest struct {
	Indices []string
}

// UpdateSettingsRequest applies the given settings to all listed
// indices in one batch.
type UpdateSettingsRequest struct {
	Indices  []string
	Settings Settings
}

// GetAliasesRequest fetches aliases for the given index names or
// patterns.
type GetAliasesRequest struct {
	Indices []string
}

// UpdateAliasesRequest applies the given alias actions atomically.
type UpdateAliasesRequest struct {
	Actions []AliasAction
}

// DeleteTemplateRequest deletes one legacy index template by name.
type DeleteTemplateRequest struct {
	Name string
}

// Client is the asynchronous administrative API. Every call dispatches
// the remote operation and returns immediately; the callback is invoked
// exactly once with either a response or an error.
type Client interface {
	GetSettings(req *GetSettingsRequest, cb func(*SettingsResponse, error))
	UpdateSettings(req *UpdateSettingsRequest, cb func(*Ack, error))
	GetAliases(req *GetAliasesRequest, cb func(*AliasesResponse, error))
	UpdateAliases(req *UpdateAliasesRequest, cb func(*Ack, error))
	DeleteTemplate(req *DeleteTemplateRequest, cb func(*Ack, error))
	// CreateAnnotationsIndex idempotently ensures the annotations
	// index and its read/write aliases exist.
	CreateAnnotationsIndex(cb func(*Ack, error))
}
