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

package stringset

import (
	"sort"
	"sync"
)

// StringSet defines the interface for a thread safe set of strings.
type StringSet interface {
	// Add adds key to the set
	Add(key string)
	// Contains checks if the set contains key
	Contains(key string) bool
	// Remove removes key from the set
	Remove(key string)
	// Len returns the number of elements in the set
	Len() int
	// ToSlice returns the elements of the set as a sorted slice
	ToSlice() []string
}

// stringSet implements StringSet. It is thread safe.
type stringSet struct {
	sync.RWMutex
	m map[string]struct{}
}

// New creates a new StringSet containing the given keys.
func New(keys ...string) StringSet {
	s := &stringSet{
		m: make(map[string]struct{}, len(keys)),
	}
	for _, k := range keys {
		s.m[k] = struct{}{}
	}
	return s
}

func (s *stringSet) Add(key string) {
	s.Lock()
	defer s.Unlock()

	s.m[key] = struct{}{}
}

func (s *stringSet) Contains(key string) bool {
	s.RLock()
	defer s.RUnlock()

	_, ok := s.m[key]
	return ok
}

func (s *stringSet) Remove(key string) {
	s.Lock()
	defer s.Unlock()

	delete(s.m, key)
}

func (s *stringSet) Len() int {
	s.RLock()
	defer s.RUnlock()

	return len(s.m)
}

// ToSlice returns the elements as a sorted slice so that callers get a
// deterministic iteration order.
func (s *stringSet) ToSlice() []string {
	s.RLock()
	defer s.RUnlock()

	keys := make([]string, 0, len(s.m))
	for k := range s.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
