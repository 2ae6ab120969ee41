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

// Package maintenance coordinates the master-driven background
// maintenance of the ML subsystem: creating required internal indices,
// hiding internal indices and aliases, sweeping deprecated legacy
// templates, and running the nightly maintenance tasks. Only the
// current cluster leader performs any of this work.
package maintenance

import (
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/searchstack/mlnode/pkg/admin"
	"github.com/searchstack/mlnode/pkg/cluster"
	"github.com/searchstack/mlnode/pkg/common/inflight"
)

// Controller reacts to leadership transitions and cluster state
// notifications. On gaining leadership it starts the nightly
// maintenance loop and triggers the index hiding pipeline once; on
// losing leadership it stops the loop. On every notification while
// leader it ensures the annotations index exists and sweeps legacy
// templates. The initial state is follower.
type Controller struct {
	mu       sync.Mutex // guards isMaster and leadership transitions
	isMaster bool

	client      admin.Client
	maintenance *Service
	sweeper     *TemplateSweeper
	hider       *IndexHider

	indexCreation *inflight.Guard
	// last index creation failure message; repeats of an identical
	// message are demoted to debug to avoid flooding the log on
	// persistent errors
	prevCreateErr *atomic.String

	metrics *Metrics
}

var _ cluster.Listener = (*Controller)(nil)

// NewController creates a follower-state controller.
func NewController(
	client admin.Client,
	maintenance *Service,
	metrics *Metrics) *Controller {

	return &Controller{
		client:        client,
		maintenance:   maintenance,
		sweeper:       NewTemplateSweeper(client, metrics),
		hider:         NewIndexHider(client, metrics),
		indexCreation: inflight.NewGuard(),
		prevCreateErr: atomic.NewString(""),
		metrics:       metrics,
	}
}

// IsMaster reports whether the controller currently believes it is the
// leader.
func (c *Controller) IsMaster() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isMaster
}

// Sweeper returns the legacy template sweeper.
func (c *Controller) Sweeper() *TemplateSweeper {
	return c.sweeper
}

// Hider returns the index hiding pipeline.
func (c *Controller) Hider() *IndexHider {
	return c.hider
}

// OnMaster is invoked when this node gains the cluster leadership
// through an external election rather than a state notification.
func (c *Controller) OnMaster() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.isMaster {
		return
	}
	c.isMaster = true
	c.onMaster()
}

// OffMaster is invoked when this node loses the cluster leadership
// through an external election rather than a state notification.
func (c *Controller) OffMaster() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isMaster {
		return
	}
	c.isMaster = false
	c.offMaster()
}

// ClusterChanged handles one cluster state notification. Remote actions
// are dispatched asynchronously; the call itself never blocks on the
// admin API.
func (c *Controller) ClusterChanged(event cluster.Event) {
	c.mu.Lock()
	if event.State.Leader != c.isMaster {
		c.isMaster = event.State.Leader
		if c.isMaster {
			c.onMaster()
		} else {
			c.offMaster()
		}
	}
	isMaster := c.isMaster
	c.mu.Unlock()

	if !event.State.RecoveryComplete {
		// Wait until the cluster has recovered its persisted state.
		return
	}

	// The guard prevents multiple simultaneous attempts to create the
	// index if there is a flurry of state updates in quick succession.
	if isMaster && c.indexCreation.TryAcquire() {
		c.client.CreateAnnotationsIndex(func(ack *admin.Ack, err error) {
			if err == nil && !ack.Acknowledged {
				err = errors.New("annotations index creation was not acknowledged")
			}
			if err != nil {
				c.logCreationFailure(err)
			}
			c.indexCreation.Release()
		})
	}

	// The enabled flag short-circuits the scan once no legacy template
	// has been found to exist.
	if isMaster && c.sweeper.Enabled() {
		if !c.sweeper.SweepOnce(event.State.Templates) {
			c.sweeper.Disable()
		}
	}
}

func (c *Controller) onMaster() {
	log.Info("Gained cluster leadership; starting maintenance.")
	c.metrics.GainedLeadership.Inc(1)
	c.maintenance.Start()
	go c.hider.HideInternalIndices()
}

func (c *Controller) offMaster() {
	log.Info("Lost cluster leadership; stopping maintenance.")
	c.metrics.LostLeadership.Inc(1)
	c.maintenance.Stop()
}

func (c *Controller) logCreationFailure(err error) {
	c.metrics.IndexCreationFailures.Inc(1)
	msg := err.Error()
	if c.prevCreateErr.Swap(msg) == msg {
		log.WithError(err).Debug("Error creating annotations index or aliases.")
		return
	}
	log.WithError(err).Error("Error creating annotations index or aliases.")
}
