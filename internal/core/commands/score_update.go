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
	"log/slog"

	"github.com/ecotoss/binsight/internal/core/cor"
	"github.com/ecotoss/binsight/internal/core/model"
	"github.com/ecotoss/binsight/internal/core/services"
)

// ScoreUpdate applies the analysis outcome to the user's score document.
// Input: the persisted *model.StoredAnalysis, passed through unchanged.
// Scoring is best-effort: a Mongo failure is logged, never propagated, so
// the caller still receives the analysis.
type ScoreUpdate struct {
	cor.BaseCommand
	scores *services.ScoreService
}

func NewScoreUpdate(name string, scores *services.ScoreService) *ScoreUpdate {
	return &ScoreUpdate{
		BaseCommand: *cor.NewBaseCommand(name),
		scores:      scores,
	}
}

// IsExecutable requires a score service and an identified user; anonymous
// uploads skip scoring entirely.
func (s *ScoreUpdate) IsExecutable(context cor.Context) bool {
	if !s.BaseCommand.IsExecutable(context) || s.scores == nil {
		return false
	}
	req, ok := context.Get(ParamRequest).(*model.UploadRequest)
	return ok && req != nil && req.UserAuth0ID != ""
}

func (s *ScoreUpdate) Execute(context cor.Context) {
	ctx := context.GetContext()
	envelope := context.Get(s.GetInputParam()).(*model.StoredAnalysis)
	req := context.Get(ParamRequest).(*model.UploadRequest)

	// Score from the model's own reply; when it was unparseable or had to
	// be defaulted, fall back to the tally the client computed on-device.
	inc := services.IncrementsForResult(&envelope.GeminiAnalysis, req.Summary)

	err := s.scores.Apply(ctx, req.UserAuth0ID, envelope.VideoFilename, inc, req.Location)
	if err != nil {
		s.GetErrorCounter().Add(ctx, 1)
		slog.WarnContext(ctx, "score update failed", "user", req.UserAuth0ID, "video", envelope.VideoFilename, "error", err)
	} else {
		s.GetSuccessCounter().Add(ctx, 1)
	}

	context.Add(s.GetOutputParam(), envelope)
}
