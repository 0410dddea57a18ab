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
	"log"
	"strings"

	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"

	"github.com/ecotoss/binsight/internal/cloud"
	"github.com/ecotoss/binsight/internal/core/cor"
	"github.com/ecotoss/binsight/internal/core/model"
)

// TemplateExampleOutput is the token in the prompt template replaced with
// the example reply.
const TemplateExampleOutput = "{example_output}"

// AnalysisCreator sends the classification prompt and the uploaded video to
// the model. Input: the *genai.File handle. Output: the raw model reply
// text.
type AnalysisCreator struct {
	cor.BaseCommand
	model              *cloud.QuotaAwareGenerativeAIModel
	promptTemplate     string
	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter
	retryCounter       metric.Int64Counter
}

func NewAnalysisCreator(name string, agentModel *cloud.QuotaAwareGenerativeAIModel, promptTemplate string) *AnalysisCreator {
	base := cor.NewBaseCommand(name)

	inputTokenCounter, err := base.GetMeter().Int64Counter(fmt.Sprintf("%s.genai.token.input", name))
	if err != nil {
		log.Printf("error creating input token counter for command '%s': %v\n", name, err)
	}
	outputTokenCounter, err := base.GetMeter().Int64Counter(fmt.Sprintf("%s.genai.token.output", name))
	if err != nil {
		log.Printf("error creating output token counter for command '%s': %v\n", name, err)
	}
	retryCounter, err := base.GetMeter().Int64Counter(fmt.Sprintf("%s.genai.retries", name))
	if err != nil {
		log.Printf("error creating retry counter for command '%s': %v\n", name, err)
	}

	return &AnalysisCreator{
		BaseCommand:        *base,
		model:              agentModel,
		promptTemplate:     promptTemplate,
		inputTokenCounter:  inputTokenCounter,
		outputTokenCounter: outputTokenCounter,
		retryCounter:       retryCounter,
	}
}

func (a *AnalysisCreator) IsExecutable(context cor.Context) bool {
	return a.BaseCommand.IsExecutable(context) && a.model != nil
}

func (a *AnalysisCreator) Execute(context cor.Context) {
	ctx := context.GetContext()
	file := context.Get(a.GetInputParam()).(*genai.File)

	prompt := strings.ReplaceAll(a.promptTemplate, TemplateExampleOutput, model.GetAnalysisOutputExample())

	content := []*genai.Content{{
		Parts: []*genai.Part{
			{Text: prompt},
			{FileData: &genai.FileData{FileURI: file.URI, MIMEType: file.MIMEType}},
		},
		Role: "user",
	}}

	reply, err := cloud.GenerateMultiModalResponse(ctx,
		a.inputTokenCounter, a.outputTokenCounter, a.retryCounter, 0,
		a.model, content)
	if err != nil {
		a.GetErrorCounter().Add(ctx, 1)
		context.AddError(a.GetName(), fmt.Errorf("failed to generate analysis: %w", err))
		return
	}

	a.GetSuccessCounter().Add(ctx, 1)
	context.Add(a.GetOutputParam(), reply)
}
