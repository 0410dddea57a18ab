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

// Package model defines the data types exchanged between the API layer, the
// analysis workflow, and the persistence services.
package model

import "encoding/json"

// DetectedObject is one item the model observed in the video.
type DetectedObject struct {
	ThrownInBin string `json:"thrown_in_bin"`
	TrashType   string `json:"trash_type"`
}

// GeoPoint is a device-reported capture location.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AnalysisResult is the structured interpretation of the model's reply. It
// holds exactly one of three shapes: a list of detected objects, a single
// observation, or an error. RawResponse keeps the unparsed model text when
// the reply did not match the expected schema.
type AnalysisResult struct {
	Objects     []DetectedObject
	ThrownInBin string
	TrashType   string
	Location    *GeoPoint
	RawResponse string
	Error       string
	ErrorType   string
}

// IsError reports whether the result carries an error instead of an
// observation.
func (a *AnalysisResult) IsError() bool {
	return a.Error != ""
}

// MarshalJSON renders the result in the same shape the model produced it:
// errors as {"error", "error_type"}, multi-object replies as an array, and
// single observations as an object with the capture location merged in.
func (a AnalysisResult) MarshalJSON() ([]byte, error) {
	if a.IsError() {
		obj := map[string]string{
			"error":      a.Error,
			"error_type": a.ErrorType,
		}
		// The unparseable reply stays with the error for diagnosis.
		if a.RawResponse != "" {
			obj["raw_response"] = a.RawResponse
		}
		return json.Marshal(obj)
	}
	if a.Objects != nil {
		return json.Marshal(a.Objects)
	}
	obj := map[string]interface{}{
		"thrown_in_bin": a.ThrownInBin,
		"trash_type":    a.TrashType,
	}
	if a.Location != nil {
		obj["location"] = a.Location
	}
	if a.RawResponse != "" {
		obj["raw_response"] = a.RawResponse
	}
	return json.Marshal(obj)
}

// SummaryCounts is a client-side tally of classified items, sent alongside
// the upload as a fallback when the model reply cannot be scored directly.
// The capitalized keys match the mobile client's payload.
type SummaryCounts struct {
	Recyclable int `json:"Recyclable"`
	Compost    int `json:"Compost"`
	Trash      int `json:"Trash"`
}

// UploadMetadata echoes the client-provided context back inside the stored
// envelope.
type UploadMetadata struct {
	Summary         *SummaryCounts   `json:"summary,omitempty"`
	DetectedObjects []DetectedObject `json:"detected_objects,omitempty"`
	Location        *GeoPoint        `json:"location,omitempty"`
}

// UploadRequest carries the optional multipart form fields that accompany a
// video upload.
type UploadRequest struct {
	Summary             *SummaryCounts
	LastDetectedObjects []DetectedObject
	Location            *GeoPoint
	UserAuth0ID         string
}

// StoredAnalysis is the envelope persisted to disk for every analyzed video
// and returned to the caller.
type StoredAnalysis struct {
	VideoFilename  string          `json:"video_filename"`
	Timestamp      float64         `json:"timestamp"` // Unix seconds with fractional part.
	GeminiAnalysis AnalysisResult  `json:"gemini_analysis"`
	Metadata       *UploadMetadata `json:"metadata,omitempty"`
	AnalysisID     string          `json:"analysis_id,omitempty"`
}
