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

// Package deployment tracks the lifecycle of one deployed inference
// model on the local node: initialization, serving readiness, stop
// reason and cancellation. The actual inference execution lives in the
// allocation service.
package deployment

import (
	"time"

	"github.com/pborman/uuid"
	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"
	"go.uber.org/yarpc/yarpcerrors"

	"github.com/searchstack/mlnode/pkg/common/setonce"
)

// memory estimate constants: the native process maps the model twice
// and carries a fixed executable overhead
const (
	perDeploymentMemoryOverhead = 240 * 1024 * 1024
	memoryMultiplier            = 2
)

// Params are the immutable parameters a deployment was started with.
type Params struct {
	ModelID     string
	MemoryBytes int64
}

// EstimateMemoryUsage returns the memory required to serve the model.
func (p Params) EstimateMemoryUsage() int64 {
	return memoryMultiplier*p.MemoryBytes + perDeploymentMemoryOverhead
}

// Task is the per-node unit tracking one active inference-serving
// instance. Lifecycle: created with the config unset, ready once Init
// stores the config, and terminally stopped via Stop, cancellation or
// an external failure. Once stopped it cannot resume.
//
// The task is owned by the allocation service that created it; all
// other callers only read its state or submit inference requests.
type Task struct {
	id         string
	params     Params
	allocation AllocationService
	license    LicenseTracker

	config     *setonce.Value[InferenceConfig]
	stopped    *atomic.Bool
	stopReason *setonce.Value[string]
}

// NewTask creates a deployment task in the initializing state.
func NewTask(
	params Params,
	allocation AllocationService,
	license LicenseTracker) *Task {

	return &Task{
		id:         uuid.New(),
		params:     params,
		allocation: allocation,
		license:    license,
		config:     setonce.New[InferenceConfig](),
		stopped:    atomic.NewBool(false),
		stopReason: setonce.New[string](),
	}
}

// ID returns the unique allocation identifier of this task.
func (t *Task) ID() string {
	return t.id
}

// ModelID returns the identity of the deployed model.
func (t *Task) ModelID() string {
	return t.params.ModelID
}

// Params returns the deployment parameters.
func (t *Task) Params() Params {
	return t.params
}

// EstimateMemoryUsage returns the memory required to serve the model.
func (t *Task) EstimateMemoryUsage() int64 {
	return t.params.EstimateMemoryUsage()
}

// Init stores the inference config, marking the task ready, and begins
// license usage tracking. It must be called exactly once, before any
// inference call.
func (t *Task) Init(config InferenceConfig) error {
	if !t.config.Set(config) {
		return yarpcerrors.AbortedErrorf(
			"[%s] deployment task is already initialized", t.params.ModelID)
	}
	t.license.StartTracking(t.featureKey())
	return nil
}

// Infer submits one inference request. It fails immediately when the
// task is not initialized or the update does not match the stored
// config; otherwise the merged config and document are delegated to the
// allocation service, which completes the callback asynchronously.
// Infer has no effect on the task state.
func (t *Task) Infer(
	doc Document,
	update ConfigUpdate,
	timeout time.Duration,
	cb func(Result, error)) {

	config, ok := t.config.Get()
	if !ok {
		cb(nil, yarpcerrors.AbortedErrorf(
			"[%s] inference not possible against uninitialized model",
			t.params.ModelID))
		return
	}
	if !update.IsSupported(config) {
		cb(nil, yarpcerrors.PermissionDeniedErrorf(
			"[%s] inference not possible: task is configured with [%s] but received update of type [%s]",
			t.params.ModelID, config.Name(), update.Name()))
		return
	}
	t.allocation.Infer(t, update.Apply(config), doc, timeout, cb)
}

// Stop terminally stops the task, recording the first given reason, and
// notifies the allocation service so it can release resources and alert
// watchers. Stop is idempotent.
func (t *Task) Stop(reason string) {
	log.WithField("model_id", t.params.ModelID).
		WithField("reason", reason).
		Debug("Stopping deployment task.")
	t.license.StopTracking(t.featureKey())
	t.stopped.Store(true)
	t.stopReason.Set(reason)
	t.allocation.StopDeploymentAndNotify(t, reason)
}

// StopWithoutNotification stops the task like Stop but skips notifying
// the allocation service. Used when the stop originates from the
// allocation service itself.
func (t *Task) StopWithoutNotification(reason string) {
	log.WithField("model_id", t.params.ModelID).
		WithField("reason", reason).
		Debug("Stopping deployment task without notification.")
	t.license.StopTracking(t.featureKey())
	t.stopReason.Set(reason)
	t.stopped.Store(true)
}

// OnCancelled handles an external cancellation signal, e.g. a client
// disconnect or an admin request. Cancellation is equivalent to a
// normal stop; inference calls already dispatched to the allocation
// service are not forcibly aborted here.
func (t *Task) OnCancelled(reason string) {
	t.Stop(reason)
}

// IsStopped reports whether the task has terminally stopped.
func (t *Task) IsStopped() bool {
	return t.stopped.Load()
}

// StoppedReason returns the first recorded stop reason, if any.
func (t *Task) StoppedReason() (string, bool) {
	return t.stopReason.Get()
}

// ModelStats returns the model's runtime statistics, if available.
func (t *Task) ModelStats() (*Stats, bool) {
	return t.allocation.ModelStats(t)
}

// SetFailed reports the deployment as failed to the allocation service.
func (t *Task) SetFailed(reason string) {
	t.allocation.FailAllocation(t, reason)
}

func (t *Task) featureKey() string {
	return "model-" + t.params.ModelID
}
