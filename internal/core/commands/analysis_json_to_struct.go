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
	"encoding/json"
	"strings"

	"github.com/ecotoss/binsight/internal/core/cor"
	"github.com/ecotoss/binsight/internal/core/model"
)

// ErrorTypeParse marks results whose model reply could not be interpreted
// as JSON.
const ErrorTypeParse = "ParseError"

// stripFences removes a surrounding markdown code fence, with or without a
// "json" language tag.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// firstJSONValue finds the first balanced {...} or [...] substring, used as
// a salvage pass when the model wraps its JSON in prose.
func firstJSONValue(text string) (string, bool) {
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return "", false
	}
	open := text[start]
	var close byte = '}'
	if open == '[' {
		close = ']'
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// ExtractAnalysis interprets the raw model reply. Markdown fences are
// stripped, the whole text is parsed first, and a balanced JSON substring
// is tried as a fallback. Array replies become object lists; object replies
// become a single observation with the capture location merged in and
// missing fields defaulted. Anything unparseable yields a ParseError result
// that still carries the raw reply.
func ExtractAnalysis(raw string, loc *model.GeoPoint) *model.AnalysisResult {
	text := stripFences(raw)

	payload := text
	if !json.Valid([]byte(payload)) {
		sub, ok := firstJSONValue(text)
		if !ok {
			return parseError(raw)
		}
		payload = sub
	}

	switch {
	case strings.HasPrefix(payload, "["):
		var objects []model.DetectedObject
		if err := json.Unmarshal([]byte(payload), &objects); err != nil {
			return parseError(raw)
		}
		return &model.AnalysisResult{Objects: objects}
	case strings.HasPrefix(payload, "{"):
		var fields map[string]interface{}
		if err := json.Unmarshal([]byte(payload), &fields); err != nil {
			return parseError(raw)
		}
		result := &model.AnalysisResult{
			ThrownInBin: "no",
			TrashType:   "trash",
			Location:    loc,
		}
		complete := true
		if v, ok := fields["thrown_in_bin"].(string); ok {
			result.ThrownInBin = v
		} else {
			complete = false
		}
		if v, ok := fields["trash_type"].(string); ok {
			result.TrashType = v
		} else {
			complete = false
		}
		if !complete {
			result.RawResponse = raw
		}
		return result
	default:
		return parseError(raw)
	}
}

func parseError(raw string) *model.AnalysisResult {
	return &model.AnalysisResult{
		Error:       "could not parse analysis response as JSON",
		ErrorType:   ErrorTypeParse,
		RawResponse: raw,
	}
}

// AnalysisJSONToStruct converts the raw model reply into a structured
// result. Input: the reply text. Output: *model.AnalysisResult. A reply
// that fails to parse is not a pipeline error: the ParseError result flows
// on and is persisted like any other.
type AnalysisJSONToStruct struct {
	cor.BaseCommand
}

func NewAnalysisJSONToStruct(name string) *AnalysisJSONToStruct {
	return &AnalysisJSONToStruct{BaseCommand: *cor.NewBaseCommand(name)}
}

func (a *AnalysisJSONToStruct) Execute(context cor.Context) {
	ctx := context.GetContext()
	raw := context.Get(a.GetInputParam()).(string)

	var loc *model.GeoPoint
	if req, ok := context.Get(ParamRequest).(*model.UploadRequest); ok && req != nil {
		loc = req.Location
	}

	result := ExtractAnalysis(raw, loc)
	if result.IsError() {
		a.GetErrorCounter().Add(ctx, 1)
	} else {
		a.GetSuccessCounter().Add(ctx, 1)
	}
	context.Add(a.GetOutputParam(), result)
}
