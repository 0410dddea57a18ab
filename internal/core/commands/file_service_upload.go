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
	gocontext "context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"google.golang.org/genai"

	"github.com/ecotoss/binsight/internal/cloud"
	"github.com/ecotoss/binsight/internal/core/cor"
)

var (
	// ErrFileProcessingTimeout is returned when the remote file does not
	// become ACTIVE within the configured window.
	ErrFileProcessingTimeout = errors.New("file processing timed out")
	// ErrFileProcessingFailed is returned when the file service reports the
	// FAILED state for the uploaded video.
	ErrFileProcessingFailed = errors.New("file processing failed")
)

// FileAPI is the slice of the Gemini file service used by the pipeline.
// *genai.Files satisfies it.
type FileAPI interface {
	UploadFromPath(ctx gocontext.Context, path string, config *genai.UploadFileConfig) (*genai.File, error)
	Get(ctx gocontext.Context, name string, config *genai.GetFileConfig) (*genai.File, error)
	Delete(ctx gocontext.Context, name string, config *genai.DeleteFileConfig) (*genai.DeleteFileResponse, error)
}

// FileServiceUpload pushes the local video to the Gemini file service and
// polls at a fixed interval until the file is ACTIVE. Input: local video
// path. Output: the *genai.File handle.
type FileServiceUpload struct {
	cor.BaseCommand
	files        FileAPI
	pollInterval time.Duration
	pollTimeout  time.Duration
}

func NewFileServiceUpload(name string, files FileAPI, cfg cloud.Analysis) *FileServiceUpload {
	return &FileServiceUpload{
		BaseCommand:  *cor.NewBaseCommand(name),
		files:        files,
		pollInterval: time.Duration(cfg.PollIntervalSeconds) * time.Second,
		pollTimeout:  time.Duration(cfg.PollTimeoutSeconds) * time.Second,
	}
}

func (f *FileServiceUpload) IsExecutable(context cor.Context) bool {
	return f.BaseCommand.IsExecutable(context) && f.files != nil
}

func (f *FileServiceUpload) Execute(context cor.Context) {
	ctx := context.GetContext()
	videoPath := context.Get(f.GetInputParam()).(string)

	mimeType, _ := context.Get(ParamMIMEType).(string)
	displayName, _ := context.Get(ParamDisplayName).(string)
	if displayName == "" {
		displayName = filepath.Base(videoPath)
	}

	file, err := f.files.UploadFromPath(ctx, videoPath, &genai.UploadFileConfig{
		MIMEType:    mimeType,
		DisplayName: displayName,
	})
	if err != nil {
		f.GetErrorCounter().Add(ctx, 1)
		context.AddError(f.GetName(), fmt.Errorf("failed to upload video to file service: %w", err))
		return
	}

	// Record the remote name immediately so cleanup runs even when the
	// poll below fails.
	context.Add(ParamRemoteFile, file.Name)
	slog.InfoContext(ctx, "video uploaded to file service", "file", file.Name, "state", file.State)

	file, err = f.awaitActive(context, file)
	if err != nil {
		f.GetErrorCounter().Add(ctx, 1)
		context.AddError(f.GetName(), err)
		return
	}

	f.GetSuccessCounter().Add(ctx, 1)
	context.Add(f.GetOutputParam(), file)
}

// awaitActive polls until the file reaches ACTIVE, breaking on FAILED,
// timeout, or cancellation of the request context. Any other state, the
// unspecified one included, keeps polling: only an ACTIVE file may be
// handed to generate-content.
func (f *FileServiceUpload) awaitActive(context cor.Context, file *genai.File) (*genai.File, error) {
	ctx := context.GetContext()
	deadline := time.Now().Add(f.pollTimeout)

	for file.State != genai.FileStateActive {
		if file.State == genai.FileStateFailed {
			return nil, ErrFileProcessingFailed
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w after %s", ErrFileProcessingTimeout, f.pollTimeout)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.pollInterval):
		}
		var err error
		file, err = f.files.Get(ctx, file.Name, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to poll file state: %w", err)
		}
	}

	return file, nil
}
