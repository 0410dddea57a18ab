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

// Package cloud holds the application configuration structs, loaded from TOML
// files, together with the clients for the external services the backend
// depends on (the Gemini API and MongoDB).
//
// Secrets are never placed in the TOML files: the Gemini API key and the
// MongoDB connection string come from the process environment.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings disables the content safety blocks for all harm
// categories. The input is short clips of people throwing away trash; the
// model reply is a JSON counting result, so nothing here needs filtering.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// Storage configures the on-disk video and result locations and the upload
// validation limits.
type Storage struct {
	UploadDir         string   `toml:"upload_dir"`         // Directory where accepted videos are stored.
	ResultsDir        string   `toml:"results_dir"`        // Directory where analysis envelopes are written.
	MaxUploadBytes    int64    `toml:"max_upload_bytes"`   // Hard ceiling on the uploaded file size.
	AllowedExtensions []string `toml:"allowed_extensions"` // Video container extension allow-list.
}

// Analysis configures the remote file-processing poll loop.
type Analysis struct {
	PollIntervalSeconds int `toml:"poll_interval_seconds"` // Fixed delay between file state checks.
	PollTimeoutSeconds  int `toml:"poll_timeout_seconds"`  // Total ceiling on waiting for ACTIVE.
}

// Mongo configures the score store. The connection string itself is read
// from the MONGODB_URI environment variable.
type Mongo struct {
	Database        string `toml:"database"`
	ScoreCollection string `toml:"score_collection"`
}

// PromptTemplates holds the text templates for prompts sent to the model.
type PromptTemplates struct {
	AnalysisPrompt string `toml:"analysis"` // The waste-classification instruction prompt.
}

// GeminiModel configures one named generative model.
type GeminiModel struct {
	Model              string  `toml:"model"`
	SystemInstructions string  `toml:"system_instructions"`
	Temperature        float32 `toml:"temperature"`
	TopP               float32 `toml:"top_p"`
	TopK               float32 `toml:"top_k"`
	MaxTokens          int32   `toml:"max_tokens"`
	OutputFormat       string  `toml:"output_format"`
	RateLimit          int     `toml:"rate_limit"` // Requests per second allowed against the API.
}

// Config is the root configuration for the application.
type Config struct {
	Application struct {
		Name string `toml:"name"`
		Port int    `toml:"port"`
	} `toml:"application"`
	Storage         Storage                `toml:"storage"`
	Analysis        Analysis               `toml:"analysis"`
	Mongo           Mongo                  `toml:"mongo"`
	PromptTemplates PromptTemplates        `toml:"prompt_templates"`
	AgentModels     map[string]GeminiModel `toml:"agent_models"`
}

// NewConfig returns a Config with its map fields initialized so the TOML
// decoder can populate them.
func NewConfig() *Config {
	return &Config{
		AgentModels: make(map[string]GeminiModel),
	}
}
