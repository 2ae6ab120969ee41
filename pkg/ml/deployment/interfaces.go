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

package deployment

import (
	"time"
)

// Document is the input to one inference call.
type Document map[string]interface{}

// Result is the output of one inference call.
type Result map[string]interface{}

// Stats are the runtime statistics of one deployed model.
type Stats struct {
	ModelID            string
	InferenceCount     int64
	AvgInferenceTimeMs float64
	LastAccess         time.Time
	PendingRequests    int
}

// AllocationService is the node-local allocation and execution engine a
// deployment task delegates to. It owns model loading, request queuing
// and the inference processes; the task only tracks lifecycle.
type AllocationService interface {
	// Infer executes one inference asynchronously and completes the
	// callback with either a result or an error.
	Infer(
		task *Task,
		config InferenceConfig,
		doc Document,
		timeout time.Duration,
		cb func(Result, error))
	// StopDeploymentAndNotify releases the deployment's resources and
	// alerts watchers of the stop.
	StopDeploymentAndNotify(task *Task, reason string)
	// FailAllocation reports the allocation as failed.
	FailAllocation(task *Task, reason string)
	// ModelStats returns the model's runtime statistics, if available.
	ModelStats(task *Task) (*Stats, bool)
}

// LicenseTracker records usage of licensed features.
type LicenseTracker interface {
	StartTracking(feature string)
	StopTracking(feature string)
}
