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

package main

import (
	"context"
	"sync"

	"github.com/ecotoss/binsight/internal/api"
	"github.com/ecotoss/binsight/internal/cloud"
	"github.com/ecotoss/binsight/internal/core/services"
	"github.com/ecotoss/binsight/internal/core/workflow"
	"github.com/ecotoss/binsight/internal/storage"
)

// StateManager holds the application singletons built at startup.
type StateManager struct {
	Config       *cloud.Config
	Clients      *cloud.ServiceClients
	VideoStore   *storage.LocalVideoStore
	ResultStore  *services.ResultStore
	ScoreService *services.ScoreService
	Workflow     *workflow.VideoAnalysisWorkflow
	VideoAPI     *api.VideoAPI
}

var (
	state      = &StateManager{}
	configOnce sync.Once
)

// GetConfig loads the hierarchical TOML configuration exactly once.
func GetConfig() *cloud.Config {
	configOnce.Do(func() {
		config := cloud.NewConfig()
		cloud.LoadConfig(config)
		state.Config = config
	})
	return state.Config
}

// InitState builds the service clients, stores, and the analysis workflow.
func InitState(ctx context.Context) error {
	config := GetConfig()

	clients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		return err
	}
	state.Clients = clients

	videoStore, err := storage.NewLocalVideoStore(config.Storage)
	if err != nil {
		return err
	}
	state.VideoStore = videoStore

	resultStore, err := services.NewResultStore(config.Storage)
	if err != nil {
		return err
	}
	state.ResultStore = resultStore

	state.ScoreService = services.NewScoreService(clients.MongoClient, config.Mongo)
	state.Workflow = workflow.NewVideoAnalysisWorkflow(config, clients, resultStore, state.ScoreService)
	state.VideoAPI = api.NewVideoAPI(videoStore, resultStore, state.Workflow, clients.GeminiConfigured())
	return nil
}
