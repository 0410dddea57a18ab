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

package cloud

import (
	"context"
	"log/slog"
	"os"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"google.golang.org/genai"
)

// ServiceClients is a factory-built container for the external service
// clients. Either client may be nil when its credential is absent from the
// environment: the application starts in a degraded mode, reports the gap
// over the health endpoint, and surfaces per-request errors instead of
// refusing to boot.
type ServiceClients struct {
	GenAIClient *genai.Client
	MongoClient *mongo.Client
	AgentModels map[string]*QuotaAwareGenerativeAIModel
}

// GeminiConfigured reports whether a usable Gemini client was created.
func (s *ServiceClients) GeminiConfigured() bool {
	return s != nil && s.GenAIClient != nil
}

// MongoConfigured reports whether a usable MongoDB client was created.
func (s *ServiceClients) MongoConfigured() bool {
	return s != nil && s.MongoClient != nil
}

// Close releases the clients. Safe to call with either client nil.
func (s *ServiceClients) Close(ctx context.Context) {
	if s.MongoClient != nil {
		if err := s.MongoClient.Disconnect(ctx); err != nil {
			slog.Warn("error disconnecting mongo client", "error", err)
		}
	}
}

// NewCloudServiceClients creates the Gemini and MongoDB clients from the
// environment and builds the quota-aware model wrappers declared in the
// configuration.
func NewCloudServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	out := &ServiceClients{
		AgentModels: make(map[string]*QuotaAwareGenerativeAIModel),
	}

	apiKey := os.Getenv(EnvGeminiAPIKey)
	if apiKey == "" {
		slog.Warn("GEMINI_API_KEY is not set, video analysis is disabled")
	} else {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, err
		}
		out.GenAIClient = client

		for name, values := range config.AgentModels {
			generationConfig := &genai.GenerateContentConfig{
				Temperature:      genai.Ptr[float32](values.Temperature),
				TopP:             genai.Ptr[float32](values.TopP),
				TopK:             genai.Ptr[float32](values.TopK),
				MaxOutputTokens:  values.MaxTokens,
				ResponseMIMEType: values.OutputFormat,
				SafetySettings:   DefaultSafetySettings,
			}
			if values.SystemInstructions != "" {
				generationConfig.SystemInstruction = &genai.Content{
					Parts: []*genai.Part{{Text: values.SystemInstructions}},
				}
			}
			out.AgentModels[name] = NewQuotaAwareModel(generationConfig, values.Model, client.Models, values.RateLimit)
		}
	}

	mongoURI := os.Getenv(EnvMongoURI)
	if mongoURI == "" {
		slog.Warn("MONGODB_URI is not set, score updates are disabled")
	} else {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
		if err != nil {
			return nil, err
		}
		out.MongoClient = client
	}

	return out, nil
}
