// Copyright 2025 Ecotoss
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package testutil provides the shared configuration bootstrap for tests.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/ecotoss/binsight/internal/cloud"
)

var (
	configOnce sync.Once
	testConfig *cloud.Config
)

// GetTestConfig loads the repository's test configuration once, pointing
// the loader at the configs directory regardless of which package the test
// runs from.
func GetTestConfig() *cloud.Config {
	configOnce.Do(func() {
		_, thisFile, _, _ := runtime.Caller(0)
		repoRoot := filepath.Join(filepath.Dir(thisFile), "..", "..")

		os.Setenv(cloud.EnvConfigFilePrefix, filepath.Join(repoRoot, "configs"))
		os.Setenv(cloud.EnvConfigRuntime, "test")

		testConfig = cloud.NewConfig()
		cloud.LoadConfig(testConfig)
	})
	return testConfig
}
