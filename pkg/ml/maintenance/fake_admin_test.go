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
	"sync"

	"github.com/searchstack/mlnode/pkg/admin"
)

// fakeAdmin is an in-memory admin.Client. Callbacks complete
// synchronously unless a call class is deferred, which lets tests hold
// remote calls in flight.
type fakeAdmin struct {
	mu sync.Mutex

	settings map[string]admin.Settings
	aliases  map[string][]admin.Alias

	getSettingsErr    error
	updateSettingsErr error
	getAliasesErr     error
	updateAliasesErr  error
	deleteErr         error
	createErr         error

	updateSettingsAck bool
	updateAliasesAck  bool

	settingsUpdates []*admin.UpdateSettingsRequest
	aliasUpdates    []*admin.UpdateAliasesRequest
	deleted         []string
	createCalls     int

	deferDelete    bool
	pendingDeletes []func()
	deferCreate    bool
	pendingCreates []func()
}

func newFakeAdmin() *fakeAdmin {
	return &fakeAdmin{
		settings:          map[string]admin.Settings{},
		aliases:           map[string][]admin.Alias{},
		updateSettingsAck: true,
		updateAliasesAck:  true,
	}
}

func (f *fakeAdmin) GetSettings(req *admin.GetSettingsRequest, cb func(*admin.SettingsResponse, error)) {
	f.mu.Lock()
	if f.getSettingsErr != nil {
		err := f.getSettingsErr
		f.mu.Unlock()
		cb(nil, err)
		return
	}
	resp := &admin.SettingsResponse{Indices: map[string]admin.Settings{}}
	for index, settings := range f.settings {
		copied := admin.Settings{}
		for k, v := range settings {
			copied[k] = v
		}
		resp.Indices[index] = copied
	}
	f.mu.Unlock()
	cb(resp, nil)
}

func (f *fakeAdmin) UpdateSettings(req *admin.UpdateSettingsRequest, cb func(*admin.Ack, error)) {
	f.mu.Lock()
	f.settingsUpdates = append(f.settingsUpdates, req)
	if f.updateSettingsErr != nil {
		err := f.updateSettingsErr
		f.mu.Unlock()
		cb(nil, err)
		return
	}
	if !f.updateSettingsAck {
		f.mu.Unlock()
		cb(&admin.Ack{Acknowledged: false}, nil)
		return
	}
	for _, index := range req.Indices {
		if f.settings[index] == nil {
			f.settings[index] = admin.Settings{}
		}
		for k, v := range req.Settings {
			f.settings[index][k] = v
		}
	}
	f.mu.Unlock()
	cb(&admin.Ack{Acknowledged: true}, nil)
}

func (f *fakeAdmin) GetAliases(req *admin.GetAliasesRequest, cb func(*admin.AliasesResponse, error)) {
	f.mu.Lock()
	if f.getAliasesErr != nil {
		err := f.getAliasesErr
		f.mu.Unlock()
		cb(nil, err)
		return
	}
	resp := &admin.AliasesResponse{Aliases: map[string][]admin.Alias{}}
	for index, aliases := range f.aliases {
		resp.Aliases[index] = append([]admin.Alias(nil), aliases...)
	}
	f.mu.Unlock()
	cb(resp, nil)
}

func (f *fakeAdmin) UpdateAliases(req *admin.UpdateAliasesRequest, cb func(*admin.Ack, error)) {
	f.mu.Lock()
	f.aliasUpdates = append(f.aliasUpdates, req)
	if f.updateAliasesErr != nil {
		err := f.updateAliasesErr
		f.mu.Unlock()
		cb(nil, err)
		return
	}
	if !f.updateAliasesAck {
		f.mu.Unlock()
		cb(&admin.Ack{Acknowledged: false}, nil)
		return
	}
	for _, action := range req.Actions {
		replaced := false
		for i, existing := range f.aliases[action.Index] {
			if existing.Name == action.Alias.Name {
				f.aliases[action.Index][i] = action.Alias
				replaced = true
				break
			}
		}
		if !replaced {
			f.aliases[action.Index] = append(f.aliases[action.Index], action.Alias)
		}
	}
	f.mu.Unlock()
	cb(&admin.Ack{Acknowledged: true}, nil)
}

func (f *fakeAdmin) DeleteTemplate(req *admin.DeleteTemplateRequest, cb func(*admin.Ack, error)) {
	f.mu.Lock()
	f.deleted = append(f.deleted, req.Name)
	err := f.deleteErr
	complete := func() {
		if err != nil {
			cb(nil, err)
			return
		}
		cb(&admin.Ack{Acknowledged: true}, nil)
	}
	if f.deferDelete {
		f.pendingDeletes = append(f.pendingDeletes, complete)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	complete()
}

func (f *fakeAdmin) CreateAnnotationsIndex(cb func(*admin.Ack, error)) {
	f.mu.Lock()
	f.createCalls++
	err := f.createErr
	complete := func() {
		if err != nil {
			cb(nil, err)
			return
		}
		cb(&admin.Ack{Acknowledged: true}, nil)
	}
	if f.deferCreate {
		f.pendingCreates = append(f.pendingCreates, complete)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	complete()
}

// completePending releases all held delete and create callbacks.
func (f *fakeAdmin) completePending() {
	f.mu.Lock()
	deletes := f.pendingDeletes
	creates := f.pendingCreates
	f.pendingDeletes = nil
	f.pendingCreates = nil
	f.mu.Unlock()

	for _, complete := range deletes {
		complete()
	}
	for _, complete := range creates {
		complete()
	}
}

func (f *fakeAdmin) deletedTemplates() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func (f *fakeAdmin) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls
}

func (f *fakeAdmin) settingsUpdateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.settingsUpdates)
}

func (f *fakeAdmin) aliasUpdateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.aliasUpdates)
}
