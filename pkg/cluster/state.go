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

// Package cluster models the cluster-state notification source that
// drives the maintenance controller. The underlying membership and
// consensus protocol is an external collaborator; this package only
// carries its snapshots to listeners.
package cluster

import (
	"github.com/searchstack/mlnode/pkg/common/stringset"
)

// State is a point-in-time snapshot of the cluster as seen by the local
// node.
type State struct {
	// Leader is whether the local node currently holds the cluster
	// leadership.
	Leader bool
	// RecoveryComplete is whether the cluster has finished recovering
	// its persisted state after startup. No administrative mutations
	// may be issued before recovery completes.
	RecoveryComplete bool
	// Templates holds the names of the index templates currently
	// present in the cluster metadata.
	Templates stringset.StringSet
}

// Event is delivered to listeners on every cluster state change.
type Event struct {
	State State
}

// Listener receives cluster state change events. ClusterChanged is
// called once per notification and must not block on remote calls;
// remote actions are dispatched asynchronously.
type Listener interface {
	ClusterChanged(event Event)
}
