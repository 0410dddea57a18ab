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

// Package workflow wires the pipeline commands into the end-to-end video
// analysis chain.
package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ecotoss/binsight/internal/cloud"
	"github.com/ecotoss/binsight/internal/core/commands"
	"github.com/ecotoss/binsight/internal/core/cor"
	"github.com/ecotoss/binsight/internal/core/model"
	"github.com/ecotoss/binsight/internal/core/services"
)

// AnalyzerModelName is the agent model key the workflow uses from the
// configuration.
const AnalyzerModelName = "analyzer"

// Error type labels surfaced in error-shaped analysis results.
const (
	ErrorTypeTimeout       = "TimeoutError"
	ErrorTypeProcessing    = "ProcessingError"
	ErrorTypeConfiguration = "ConfigurationError"
)

// VideoAnalysisWorkflow runs one uploaded video through the full pipeline:
// file service upload, model generation, extraction, persistence, and score
// update, followed by best-effort remote cleanup.
//
// A pipeline failure is not surfaced as an error: the failure is wrapped in
// an error-shaped analysis envelope, persisted like a normal result, and
// returned to the caller, matching the behavior clients already rely on.
type VideoAnalysisWorkflow struct {
	chain   cor.Chain
	cleanup cor.Command
	results *services.ResultStore
	scores  *services.ScoreService
}

// NewVideoAnalysisWorkflow assembles the chain from the configured clients.
// With no Gemini client the workflow still constructs; every analysis then
// yields a configuration-error envelope.
func NewVideoAnalysisWorkflow(
	config *cloud.Config,
	clients *cloud.ServiceClients,
	results *services.ResultStore,
	scores *services.ScoreService,
) *VideoAnalysisWorkflow {
	var files commands.FileAPI
	var agentModel *cloud.QuotaAwareGenerativeAIModel
	if clients.GenAIClient != nil {
		files = clients.GenAIClient.Files
		agentModel = clients.AgentModels[AnalyzerModelName]
	}

	chain := cor.NewBaseChain("video_analysis")
	chain.AddCommand(commands.NewFileServiceUpload("file_upload", files, config.Analysis))
	chain.AddCommand(commands.NewAnalysisCreator("analysis_creator", agentModel, config.PromptTemplates.AnalysisPrompt))
	chain.AddCommand(commands.NewAnalysisJSONToStruct("analysis_extractor"))
	chain.AddCommand(commands.NewAnalysisPersist("analysis_persist", results))
	chain.AddCommand(commands.NewScoreUpdate("score_update", scores))

	return &VideoAnalysisWorkflow{
		chain:   chain,
		cleanup: commands.NewFileServiceCleanup("file_cleanup", files),
		results: results,
		scores:  scores,
	}
}

// Analyze runs the pipeline for one stored video and returns the persisted
// envelope together with the result filename. The error return is reserved
// for failures to record the outcome at all; analysis failures come back
// inside the envelope.
func (w *VideoAnalysisWorkflow) Analyze(
	ctx context.Context,
	videoPath string,
	storedName string,
	mimeType string,
	req *model.UploadRequest,
) (*model.StoredAnalysis, string, error) {
	corCtx := cor.NewBaseContext()
	corCtx.SetContext(ctx)
	corCtx.Add(cor.CtxIn, videoPath)
	corCtx.Add(commands.ParamMIMEType, mimeType)
	corCtx.Add(commands.ParamStoredName, storedName)
	corCtx.Add(commands.ParamDisplayName, storedName)
	corCtx.Add(commands.ParamRequest, req)

	w.chain.Execute(corCtx)

	// Remove the remote copy regardless of how the chain ended.
	if w.cleanup.IsExecutable(corCtx) {
		w.cleanup.Execute(corCtx)
	}

	if envelope, ok := corCtx.Get(cor.CtxIn).(*model.StoredAnalysis); ok {
		resultFile, _ := corCtx.Get(commands.ParamResultFile).(string)
		return envelope, resultFile, nil
	}

	return w.recordFailure(ctx, storedName, req, pipelineError(corCtx))
}

// recordFailure persists an error-shaped envelope and applies the client's
// own tally as the score fallback.
func (w *VideoAnalysisWorkflow) recordFailure(
	ctx context.Context,
	storedName string,
	req *model.UploadRequest,
	cause error,
) (*model.StoredAnalysis, string, error) {
	slog.ErrorContext(ctx, "video analysis failed", "video", storedName, "error", cause)

	envelope := &model.StoredAnalysis{
		VideoFilename: storedName,
		Timestamp:     float64(time.Now().UnixNano()) / float64(time.Second),
		GeminiAnalysis: model.AnalysisResult{
			Error:     cause.Error(),
			ErrorType: classifyError(cause),
		},
		Metadata:   commands.BuildMetadata(req),
		AnalysisID: uuid.NewString(),
	}

	resultFile, err := w.results.Save(envelope)
	if err != nil {
		return nil, "", err
	}

	if w.scores != nil && req != nil && req.UserAuth0ID != "" {
		inc := services.IncrementsFromSummary(req.Summary)
		if applyErr := w.scores.Apply(ctx, req.UserAuth0ID, storedName, inc, req.Location); applyErr != nil {
			slog.WarnContext(ctx, "fallback score update failed", "user", req.UserAuth0ID, "error", applyErr)
		}
	}

	return envelope, resultFile, nil
}

// ErrAnalyzerNotConfigured is reported when the pipeline has no Gemini
// client to run with.
var ErrAnalyzerNotConfigured = errors.New("video analysis unavailable: GEMINI_API_KEY is not configured")

// pipelineError extracts the chain's failure, or names the missing
// configuration when the chain had nothing to run with.
func pipelineError(corCtx cor.Context) error {
	for _, err := range corCtx.GetErrors() {
		return err
	}
	return ErrAnalyzerNotConfigured
}

func classifyError(err error) string {
	switch {
	case errors.Is(err, commands.ErrFileProcessingTimeout), errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeTimeout
	case errors.Is(err, ErrAnalyzerNotConfigured):
		return ErrorTypeConfiguration
	default:
		return ErrorTypeProcessing
	}
}
