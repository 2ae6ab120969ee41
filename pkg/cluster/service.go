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

package cluster

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Service fans cluster state snapshots out to registered listeners.
type Service interface {
	// AddListener registers a listener for state change events.
	AddListener(l Listener)
	// RemoveListener deregisters a previously registered listener.
	RemoveListener(l Listener)
	// Notify delivers a snapshot to all listeners. Each notification is
	// processed to completion, in registration order, before the next
	// Notify call proceeds.
	Notify(state State)
}

type service struct {
	sync.Mutex
	listeners []Listener
}

// NewService creates an empty notification service.
func NewService() Service {
	return &service{}
}

func (s *service) AddListener(l Listener) {
	s.Lock()
	defer s.Unlock()

	s.listeners = append(s.listeners, l)
}

func (s *service) RemoveListener(l Listener) {
	s.Lock()
	defer s.Unlock()

	for i, registered := range s.listeners {
		if registered == l {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

// Notify holds the service lock for the duration of the fan-out so that
// concurrent notifications are serialized. Listeners dispatch remote
// work asynchronously and return quickly.
func (s *service) Notify(state State) {
	s.Lock()
	defer s.Unlock()

	event := Event{State: state}
	for _, l := range s.listeners {
		l.ClusterChanged(event)
	}
	log.WithField("leader", state.Leader).
		WithField("recovered", state.RecoveryComplete).
		Debug("Delivered cluster state notification.")
}
