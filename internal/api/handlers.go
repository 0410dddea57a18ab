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

// Package api exposes the HTTP surface of the service: video upload and
// analysis, result retrieval, video listing, and health reporting.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ecotoss/binsight/internal/core/model"
	"github.com/ecotoss/binsight/internal/core/services"
	"github.com/ecotoss/binsight/internal/storage"
)

// Analyzer runs one stored video through the analysis pipeline.
// *workflow.VideoAnalysisWorkflow satisfies it; tests substitute fakes.
type Analyzer interface {
	Analyze(ctx context.Context, videoPath, storedName, mimeType string, req *model.UploadRequest) (*model.StoredAnalysis, string, error)
}

// VideoAPI holds the handler dependencies.
type VideoAPI struct {
	store            *storage.LocalVideoStore
	results          *services.ResultStore
	analyzer         Analyzer
	geminiConfigured bool
}

func NewVideoAPI(store *storage.LocalVideoStore, results *services.ResultStore, analyzer Analyzer, geminiConfigured bool) *VideoAPI {
	return &VideoAPI{
		store:            store,
		results:          results,
		analyzer:         analyzer,
		geminiConfigured: geminiConfigured,
	}
}

// Register mounts all endpoints under /api.
func (v *VideoAPI) Register(router gin.IRouter) {
	group := router.Group("/api")
	group.POST("/upload", v.Upload)
	group.POST("/analyze-existing", v.AnalyzeExisting)
	group.GET("/list-videos", v.ListVideos)
	group.GET("/get-result/:filename", v.GetResult)
	group.GET("/health", v.Health)
}

// uploadData is the optional JSON blob the client sends alongside the video.
type uploadData struct {
	Summary             *model.SummaryCounts   `json:"summary"`
	LastDetectedObjects []model.DetectedObject `json:"lastDetectedObjects"`
	Location            *model.GeoPoint        `json:"location"`
	UserAuth0ID         string                 `json:"userAuth0Id"`
}

func (d *uploadData) toRequest() *model.UploadRequest {
	if d == nil {
		return &model.UploadRequest{}
	}
	return &model.UploadRequest{
		Summary:             d.Summary,
		LastDetectedObjects: d.LastDetectedObjects,
		Location:            d.Location,
		UserAuth0ID:         d.UserAuth0ID,
	}
}

// parseUploadData decodes the metadata blob. A malformed blob is tolerated:
// the video itself is still worth analyzing.
func parseUploadData(ctx context.Context, raw string) *model.UploadRequest {
	var data uploadData
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			slog.WarnContext(ctx, "ignoring malformed upload metadata", "error", err)
			return &model.UploadRequest{}
		}
	}
	return data.toRequest()
}

// Upload accepts a multipart video, stores it locally, and runs the full
// analysis pipeline before responding.
func (v *VideoAPI) Upload(c *gin.Context) {
	header, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No video file provided"})
		return
	}
	if header.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No selected file"})
		return
	}
	if !v.store.Allowed(header.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File type not allowed"})
		return
	}

	req := parseUploadData(c.Request.Context(), c.PostForm("data"))

	src, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer src.Close()

	storedName := v.store.StoredName(header.Filename, time.Now())
	videoPath, size, err := v.store.Save(src, storedName)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File exceeds maximum upload size"})
			return
		}
		slog.ErrorContext(c.Request.Context(), "failed to store upload", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store upload"})
		return
	}
	slog.InfoContext(c.Request.Context(), "video stored", "filename", storedName, "bytes", size)

	v.analyzeAndRespond(c, videoPath, storedName, req)
}

// AnalyzeExisting re-runs the pipeline on an already-stored video.
func (v *VideoAPI) AnalyzeExisting(c *gin.Context) {
	var body struct {
		Filename string      `json:"filename"`
		Metadata *uploadData `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No filename provided"})
		return
	}
	if !v.store.Exists(body.Filename) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video file not found"})
		return
	}

	videoPath, err := v.store.Path(body.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filename"})
		return
	}

	v.analyzeAndRespond(c, videoPath, body.Filename, body.Metadata.toRequest())
}

// analyzeAndRespond is the shared tail of the two analysis endpoints.
// Pipeline failures ride inside a 200 envelope; only a failure to record
// the outcome becomes a 500.
func (v *VideoAPI) analyzeAndRespond(c *gin.Context, videoPath, storedName string, req *model.UploadRequest) {
	mimeType := v.store.DetectMIME(storedName)

	envelope, resultFile, err := v.analyzer.Analyze(c.Request.Context(), videoPath, storedName, mimeType, req)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "analysis pipeline error", "video", storedName, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         !envelope.GeminiAnalysis.IsError(),
		"message":         "Video processed",
		"filename":        storedName,
		"result_file":     resultFile,
		"gemini_analysis": envelope.GeminiAnalysis,
		"location":        req.Location,
	})
}

// ListVideos returns the stored videos, newest first.
func (v *VideoAPI) ListVideos(c *gin.Context) {
	videos, err := v.store.List()
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to list videos", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list videos"})
		return
	}

	files := make([]gin.H, 0, len(videos))
	for _, video := range videos {
		files = append(files, gin.H{
			"filename": video.Filename,
			"size":     video.SizeBytes,
			"created":  video.Created.Unix(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

// GetResult serves a persisted analysis envelope verbatim.
func (v *VideoAPI) GetResult(c *gin.Context) {
	filename := c.Param("filename")

	data, err := v.results.Get(filename)
	if errors.Is(err, services.ErrResultNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Result not found"})
		return
	}
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to read result", "video", filename, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read result"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// Health reports liveness and whether the analysis backend is usable.
func (v *VideoAPI) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"gemini_configured": v.geminiConfigured,
		"upload_folder":     v.store.Dir(),
	})
}
