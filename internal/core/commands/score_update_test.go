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

package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecotoss/binsight/internal/cloud"
	"github.com/ecotoss/binsight/internal/core/cor"
	"github.com/ecotoss/binsight/internal/core/model"
	"github.com/ecotoss/binsight/internal/core/services"
)

// A skipped score update (anonymous upload, or no Mongo service) must not
// cost the caller the persisted envelope.
func TestSkippedScoreUpdateKeepsEnvelope(t *testing.T) {
	results, err := services.NewResultStore(cloud.Storage{ResultsDir: t.TempDir()})
	require.NoError(t, err)

	chain := cor.NewBaseChain("persist_then_score")
	chain.AddCommand(NewAnalysisPersist("persist", results))
	chain.AddCommand(NewScoreUpdate("score", nil))

	corCtx := cor.NewBaseContext()
	corCtx.SetContext(context.Background())
	corCtx.Add(cor.CtxIn, &model.AnalysisResult{
		Objects: []model.DetectedObject{{ThrownInBin: "yes", TrashType: "compost"}},
	})
	corCtx.Add(ParamStoredName, "1735830245_clip.mp4")
	corCtx.Add(ParamRequest, &model.UploadRequest{})

	chain.Execute(corCtx)

	require.False(t, corCtx.HasErrors())
	envelope, ok := corCtx.Get(cor.CtxIn).(*model.StoredAnalysis)
	require.True(t, ok, "envelope must survive the skipped score update")
	assert.Equal(t, "1735830245_clip.mp4", envelope.VideoFilename)
	assert.False(t, envelope.GeminiAnalysis.IsError())

	// The good result file is on disk.
	_, err = results.Get("1735830245_clip.mp4")
	assert.NoError(t, err)
}

func TestScoreUpdateSkippedForAnonymousUpload(t *testing.T) {
	command := NewScoreUpdate("score", nil)

	corCtx := cor.NewBaseContext()
	corCtx.SetContext(context.Background())
	corCtx.Add(cor.CtxIn, &model.StoredAnalysis{VideoFilename: "clip.mp4"})
	corCtx.Add(ParamRequest, &model.UploadRequest{})

	assert.False(t, command.IsExecutable(corCtx))
}

// A defaulted legacy reply scores from the client's summary, per the
// extraction defaults feeding the fallback decision.
func TestDefaultedLegacyReplyScoresFromSummary(t *testing.T) {
	result := ExtractAnalysis(`{"confidence": 0.9}`, nil)
	require.False(t, result.IsError())
	require.NotEmpty(t, result.RawResponse)

	inc := services.IncrementsForResult(result, &model.SummaryCounts{Recyclable: 2, Compost: 0, Trash: 1})

	assert.Equal(t, model.ScoreIncrements{Recycle: 2, Compost: 0, Trash: 1}, inc)
}
