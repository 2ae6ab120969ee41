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

package maintenance

// LegacyIndexTemplates are the deprecated index templates slated for
// removal, in the fixed order they are swept.
var LegacyIndexTemplates = []string{
	".ml-anomalies-",
	".ml-config",
	".ml-inference-000001",
	".ml-inference-000002",
	".ml-inference-000003",
	".ml-meta",
	".ml-notifications",
	".ml-notifications-000001",
	".ml-notifications-000002",
	".ml-state",
	".ml-stats",
}

// InternalIndexPatterns match every internal index of the ML subsystem.
// These indices and their aliases are kept hidden.
var InternalIndexPatterns = []string{
	".ml-anomalies-*",
	".ml-annotations*",
	".ml-config",
	".ml-inference-*",
	".ml-meta",
	".ml-notifications*",
	".ml-state*",
	".ml-stats-*",
}
