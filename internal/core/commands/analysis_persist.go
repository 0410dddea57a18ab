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
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ecotoss/binsight/internal/core/cor"
	"github.com/ecotoss/binsight/internal/core/model"
	"github.com/ecotoss/binsight/internal/core/services"
)

// AnalysisPersist wraps the analysis result in its envelope and writes it to
// the result store. Input: *model.AnalysisResult. Output: the persisted
// *model.StoredAnalysis.
type AnalysisPersist struct {
	cor.BaseCommand
	results *services.ResultStore
}

func NewAnalysisPersist(name string, results *services.ResultStore) *AnalysisPersist {
	return &AnalysisPersist{
		BaseCommand: *cor.NewBaseCommand(name),
		results:     results,
	}
}

// BuildMetadata echoes the client-provided request context into the stored
// envelope, or nil when the request carried none.
func BuildMetadata(req *model.UploadRequest) *model.UploadMetadata {
	if req == nil {
		return nil
	}
	if req.Summary == nil && req.LastDetectedObjects == nil && req.Location == nil {
		return nil
	}
	return &model.UploadMetadata{
		Summary:         req.Summary,
		DetectedObjects: req.LastDetectedObjects,
		Location:        req.Location,
	}
}

func (a *AnalysisPersist) Execute(context cor.Context) {
	ctx := context.GetContext()
	result := context.Get(a.GetInputParam()).(*model.AnalysisResult)
	storedName, _ := context.Get(ParamStoredName).(string)
	req, _ := context.Get(ParamRequest).(*model.UploadRequest)

	envelope := &model.StoredAnalysis{
		VideoFilename:  storedName,
		Timestamp:      float64(time.Now().UnixNano()) / float64(time.Second),
		GeminiAnalysis: *result,
		Metadata:       BuildMetadata(req),
		AnalysisID:     uuid.NewString(),
	}

	resultFile, err := a.results.Save(envelope)
	if err != nil {
		a.GetErrorCounter().Add(ctx, 1)
		context.AddError(a.GetName(), fmt.Errorf("failed to persist analysis: %w", err))
		return
	}

	a.GetSuccessCounter().Add(ctx, 1)
	context.Add(ParamResultFile, resultFile)
	context.Add(a.GetOutputParam(), envelope)
}
