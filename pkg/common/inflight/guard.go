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

package inflight

import (
	"go.uber.org/atomic"
)

// Guard coalesces rapid repeated triggers of an idempotent remote action
// into a single in-flight attempt. Callers that fail to acquire skip the
// current round and rely on a future trigger to retry.
type Guard struct {
	inProgress atomic.Bool
}

// NewGuard returns a released guard.
func NewGuard() *Guard {
	return &Guard{}
}

// TryAcquire atomically marks the action as in flight. Returns false if
// another attempt is already outstanding.
func (g *Guard) TryAcquire() bool {
	return g.inProgress.CompareAndSwap(false, true)
}

// Release marks the action as no longer in flight. It must be called in
// the completion callback regardless of outcome, and is idempotent.
func (g *Guard) Release() {
	g.inProgress.Store(false)
}

// InFlight reports whether an attempt is currently outstanding.
func (g *Guard) InFlight() bool {
	return g.inProgress.Load()
}
