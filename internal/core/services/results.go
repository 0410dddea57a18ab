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

// Package services implements the persistence services behind the analysis
// workflow: the on-disk result store and the MongoDB score store.
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ecotoss/binsight/internal/cloud"
	"github.com/ecotoss/binsight/internal/core/model"
)

// ErrResultNotFound is returned when no stored analysis exists for a video.
var ErrResultNotFound = errors.New("analysis result not found")

// ResultFilename derives the result file name from a video file name by
// replacing the extension with the "_result.json" suffix.
func ResultFilename(videoFilename string) string {
	stem := strings.TrimSuffix(videoFilename, filepath.Ext(videoFilename))
	return stem + "_result.json"
}

// ResultStore writes and reads analysis envelopes as JSON files in a single
// directory.
type ResultStore struct {
	dir string
}

// NewResultStore creates the results directory if needed.
func NewResultStore(cfg cloud.Storage) (*ResultStore, error) {
	if err := os.MkdirAll(cfg.ResultsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	return &ResultStore{dir: cfg.ResultsDir}, nil
}

// Save persists the envelope for its video and returns the result file name.
func (r *ResultStore) Save(analysis *model.StoredAnalysis) (string, error) {
	name := ResultFilename(analysis.VideoFilename)
	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode analysis result: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write analysis result: %w", err)
	}
	return name, nil
}

// Get returns the raw stored envelope for the named video. The bytes are
// served to API callers verbatim.
func (r *ResultStore) Get(videoFilename string) ([]byte, error) {
	name := ResultFilename(filepath.Base(videoFilename))
	data, err := os.ReadFile(filepath.Join(r.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis result: %w", err)
	}
	return data, nil
}
