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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecotoss/binsight/internal/core/model"
)

func TestExtractAnalysisArray(t *testing.T) {
	raw := `[{"thrown_in_bin": "yes", "trash_type": "plastic bottle"}, {"thrown_in_bin": "no", "trash_type": "paper cup"}]`

	result := ExtractAnalysis(raw, nil)

	require.False(t, result.IsError())
	require.Len(t, result.Objects, 2)
	assert.Equal(t, "yes", result.Objects[0].ThrownInBin)
	assert.Equal(t, "plastic bottle", result.Objects[0].TrashType)
	assert.Equal(t, "no", result.Objects[1].ThrownInBin)
}

func TestExtractAnalysisFencedRoundTrip(t *testing.T) {
	interior := `[{"thrown_in_bin": "yes", "trash_type": "banana peel"}]`
	fenced := "```json\n" + interior + "\n```"

	plain := ExtractAnalysis(interior, nil)
	unfenced := ExtractAnalysis(fenced, nil)

	require.False(t, plain.IsError())
	require.False(t, unfenced.IsError())
	assert.Equal(t, plain.Objects, unfenced.Objects)
}

func TestExtractAnalysisBareFence(t *testing.T) {
	raw := "```\n{\"thrown_in_bin\": \"yes\", \"trash_type\": \"compost\"}\n```"

	result := ExtractAnalysis(raw, nil)

	require.False(t, result.IsError())
	assert.Equal(t, "yes", result.ThrownInBin)
	assert.Equal(t, "compost", result.TrashType)
	assert.Empty(t, result.RawResponse)
}

func TestExtractAnalysisSingleObjectMergesLocation(t *testing.T) {
	loc := &model.GeoPoint{Latitude: 40.7, Longitude: -74.0}

	result := ExtractAnalysis(`{"thrown_in_bin": "yes", "trash_type": "glass bottle"}`, loc)

	require.False(t, result.IsError())
	require.NotNil(t, result.Location)
	assert.Equal(t, 40.7, result.Location.Latitude)
}

func TestExtractAnalysisMissingFieldsDefaulted(t *testing.T) {
	raw := `{"confidence": 0.9}`

	result := ExtractAnalysis(raw, nil)

	require.False(t, result.IsError())
	assert.Equal(t, "no", result.ThrownInBin)
	assert.Equal(t, "trash", result.TrashType)
	assert.Equal(t, raw, result.RawResponse)
}

func TestExtractAnalysisSalvagesEmbeddedJSON(t *testing.T) {
	raw := `Sure! Here is the result: {"thrown_in_bin": "yes", "trash_type": "aluminum can"} Hope that helps.`

	result := ExtractAnalysis(raw, nil)

	require.False(t, result.IsError())
	assert.Equal(t, "aluminum can", result.TrashType)
}

func TestExtractAnalysisParseErrorCarriesRawText(t *testing.T) {
	raw := "I could not see any trash in this video."

	result := ExtractAnalysis(raw, nil)

	require.True(t, result.IsError())
	assert.Equal(t, ErrorTypeParse, result.ErrorType)
	assert.Equal(t, raw, result.RawResponse)
}

func TestExtractAnalysisEmptyArray(t *testing.T) {
	result := ExtractAnalysis("[]", nil)

	require.False(t, result.IsError())
	assert.NotNil(t, result.Objects)
	assert.Empty(t, result.Objects)
}
