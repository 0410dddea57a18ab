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

package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecotoss/binsight/internal/cloud"
	"github.com/ecotoss/binsight/internal/core/model"
	"github.com/ecotoss/binsight/internal/core/services"
)

// Without a Gemini client the workflow must still produce and persist an
// error-shaped envelope instead of failing the request.
func TestAnalyzeWithoutGeminiClient(t *testing.T) {
	config := cloud.NewConfig()
	config.Analysis = cloud.Analysis{PollIntervalSeconds: 1, PollTimeoutSeconds: 1}

	results, err := services.NewResultStore(cloud.Storage{ResultsDir: t.TempDir()})
	require.NoError(t, err)

	w := NewVideoAnalysisWorkflow(config, &cloud.ServiceClients{}, results, nil)

	envelope, resultFile, err := w.Analyze(context.Background(),
		"uploads/clip.mp4", "clip.mp4", "video/mp4",
		&model.UploadRequest{UserAuth0ID: "auth0|u1"})

	require.NoError(t, err)
	require.NotNil(t, envelope)
	assert.True(t, envelope.GeminiAnalysis.IsError())
	assert.Equal(t, ErrorTypeConfiguration, envelope.GeminiAnalysis.ErrorType)
	assert.Equal(t, "clip.mp4", envelope.VideoFilename)
	assert.NotEmpty(t, envelope.AnalysisID)
	assert.Equal(t, "clip_result.json", resultFile)

	// The envelope is retrievable like any successful result.
	data, err := results.Get("clip.mp4")
	require.NoError(t, err)
	assert.Contains(t, string(data), ErrorTypeConfiguration)
}
