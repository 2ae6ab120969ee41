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

package setonce

import (
	"sync"
)

// Value holds a value which can be written at most once. A second write
// is rejected rather than overwriting the first.
type Value[T any] struct {
	mu  sync.Mutex
	set bool
	val T
}

// New returns an empty write-once holder.
func New[T any]() *Value[T] {
	return &Value[T]{}
}

// Set stores v if the holder is still empty and returns whether the
// write succeeded.
func (h *Value[T]) Set(v T) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.set {
		return false
	}
	h.val = v
	h.set = true
	return true
}

// Get returns the stored value and whether a value has been stored.
func (h *Value[T]) Get() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.val, h.set
}

// IsSet returns whether a value has been stored.
func (h *Value[T]) IsSet() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.set
}
