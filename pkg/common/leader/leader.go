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

// Candidate is an active participant in the leader election for a role.
type Candidate interface {
	// IsLeader returns whether this candidate is the current leader.
	IsLeader() bool
	// Start begins campaigning for leadership.
	Start() error
	// Stop ends campaigning for leadership and resigns if elected.
	Stop() error
	// Resign gives up leadership while continuing to campaign.
	Resign()
}

// Nomination represents the set of callbacks to the component whose
// lifecycle is driven by the election outcome.
type Nomination interface {
	// GetID returns the unique identifier of this instance, stored in
	// the election store while it holds leadership.
	GetID() string
	// GainedLeadershipCallback is invoked when this instance becomes
	// the leader.
	GainedLeadershipCallback() error
	// LostLeadershipCallback is invoked when this instance loses
	// leadership.
	LostLeadershipCallback() error
	// ShutDownCallback is invoked when the election is stopped.
	ShutDownCallback() error
}
