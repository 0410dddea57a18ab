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

package cloud_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecotoss/binsight/internal/testutil"
)

func TestHierarchicalConfigLoading(t *testing.T) {
	config := testutil.GetTestConfig()

	// The test runtime file overrides the application section.
	assert.Equal(t, "binsight-backend-test", config.Application.Name)
	assert.Equal(t, 2, config.Analysis.PollTimeoutSeconds)

	// Values only present in the base file survive the overlay.
	assert.Equal(t, int64(104857600), config.Storage.MaxUploadBytes)
	assert.ElementsMatch(t, []string{"webm", "mp4", "avi", "mov"}, config.Storage.AllowedExtensions)
	assert.Equal(t, "ecotoss", config.Mongo.Database)
}

func TestAnalyzerModelConfigured(t *testing.T) {
	config := testutil.GetTestConfig()

	analyzer, ok := config.AgentModels["analyzer"]
	require.True(t, ok, "analyzer model must be declared")
	assert.Equal(t, "gemini-2.0-flash", analyzer.Model)
	assert.Greater(t, analyzer.RateLimit, 0)
}

func TestAnalysisPromptHasExampleToken(t *testing.T) {
	config := testutil.GetTestConfig()

	prompt := config.PromptTemplates.AnalysisPrompt
	require.NotEmpty(t, prompt)
	assert.True(t, strings.Contains(prompt, "{example_output}"),
		"prompt template must carry the example output token")
	assert.True(t, strings.Contains(prompt, "thrown_in_bin"))
}
