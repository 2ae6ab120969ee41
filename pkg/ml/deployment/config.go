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

// InferenceConfig is the base configuration a deployment task is
// initialized with.
type InferenceConfig interface {
	// Name identifies the config type, e.g. "classification".
	Name() string
}

// ConfigUpdate is a per-request override of the base config. An update
// is only applicable to a matching config type.
type ConfigUpdate interface {
	// Name identifies the update type.
	Name() string
	// IsSupported returns whether the update can be applied to the
	// given base config.
	IsSupported(config InferenceConfig) bool
	// Apply merges the update into a copy of the base config.
	Apply(config InferenceConfig) InferenceConfig
}

// ClassificationConfig configures classification inference.
type ClassificationConfig struct {
	NumTopClasses int
	ResultsField  string
}

// Name implements InferenceConfig.
func (ClassificationConfig) Name() string { return "classification" }

// RegressionConfig configures regression inference.
type RegressionConfig struct {
	ResultsField string
}

// Name implements InferenceConfig.
func (RegressionConfig) Name() string { return "regression" }

// ClassificationUpdate overrides fields of a ClassificationConfig.
type ClassificationUpdate struct {
	NumTopClasses *int
	ResultsField  *string
}

// Name implements ConfigUpdate.
func (ClassificationUpdate) Name() string { return "classification" }

// IsSupported implements ConfigUpdate.
func (ClassificationUpdate) IsSupported(config InferenceConfig) bool {
	_, ok := config.(ClassificationConfig)
	return ok
}

// Apply implements ConfigUpdate.
func (u ClassificationUpdate) Apply(config InferenceConfig) InferenceConfig {
	merged := config.(ClassificationConfig)
	if u.NumTopClasses != nil {
		merged.NumTopClasses = *u.NumTopClasses
	}
	if u.ResultsField != nil {
		merged.ResultsField = *u.ResultsField
	}
	return merged
}

// RegressionUpdate overrides fields of a RegressionConfig.
type RegressionUpdate struct {
	ResultsField *string
}

// Name implements ConfigUpdate.
func (RegressionUpdate) Name() string { return "regression" }

// IsSupported implements ConfigUpdate.
func (RegressionUpdate) IsSupported(config InferenceConfig) bool {
	_, ok := config.(RegressionConfig)
	return ok
}

// Apply implements ConfigUpdate.
func (u RegressionUpdate) Apply(config InferenceConfig) InferenceConfig {
	merged := config.(RegressionConfig)
	if u.ResultsField != nil {
		merged.ResultsField = *u.ResultsField
	}
	return merged
}

// EmptyUpdate applies to any config type and changes nothing.
type EmptyUpdate struct{}

// Name implements ConfigUpdate.
func (EmptyUpdate) Name() string { return "empty" }

// IsSupported implements ConfigUpdate.
func (EmptyUpdate) IsSupported(InferenceConfig) bool { return true }

// Apply implements ConfigUpdate.
func (EmptyUpdate) Apply(config InferenceConfig) InferenceConfig { return config }
