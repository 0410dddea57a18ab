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
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/ecotoss/binsight/internal/cloud"
	"github.com/ecotoss/binsight/internal/core/cor"
)

// fakeFileAPI scripts the file service: the upload returns the first state,
// each poll advances to the next one.
type fakeFileAPI struct {
	states    []genai.FileState
	polls     int
	deleted   []string
	uploadErr error
}

func (f *fakeFileAPI) file(state genai.FileState) *genai.File {
	return &genai.File{
		Name:     "files/test-video",
		URI:      "https://files.example/test-video",
		MIMEType: "video/mp4",
		State:    state,
	}
}

func (f *fakeFileAPI) UploadFromPath(_ context.Context, _ string, _ *genai.UploadFileConfig) (*genai.File, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return f.file(f.states[0]), nil
}

func (f *fakeFileAPI) Get(_ context.Context, _ string, _ *genai.GetFileConfig) (*genai.File, error) {
	f.polls++
	idx := f.polls
	if idx >= len(f.states) {
		idx = len(f.states) - 1
	}
	return f.file(f.states[idx]), nil
}

func (f *fakeFileAPI) Delete(_ context.Context, name string, _ *genai.DeleteFileConfig) (*genai.DeleteFileResponse, error) {
	f.deleted = append(f.deleted, name)
	return &genai.DeleteFileResponse{}, nil
}

func newUploadContext() cor.Context {
	corCtx := cor.NewBaseContext()
	corCtx.SetContext(context.Background())
	corCtx.Add(cor.CtxIn, "uploads/test.mp4")
	corCtx.Add(ParamMIMEType, "video/mp4")
	return corCtx
}

func TestFileServiceUploadBecomesActive(t *testing.T) {
	files := &fakeFileAPI{states: []genai.FileState{
		genai.FileStateProcessing,
		genai.FileStateProcessing,
		genai.FileStateActive,
	}}
	command := NewFileServiceUpload("upload_test", files, cloud.Analysis{
		PollIntervalSeconds: 0,
		PollTimeoutSeconds:  5,
	})

	corCtx := newUploadContext()
	command.Execute(corCtx)

	require.False(t, corCtx.HasErrors())
	file, ok := corCtx.Get(cor.CtxOut).(*genai.File)
	require.True(t, ok)
	assert.Equal(t, genai.FileStateActive, file.State)
	assert.Equal(t, 2, files.polls)
	assert.Equal(t, "files/test-video", corCtx.Get(ParamRemoteFile))
}

func TestFileServiceUploadWaitsThroughUnspecifiedState(t *testing.T) {
	files := &fakeFileAPI{states: []genai.FileState{
		genai.FileStateUnspecified,
		genai.FileStateActive,
	}}
	command := NewFileServiceUpload("upload_test", files, cloud.Analysis{
		PollIntervalSeconds: 0,
		PollTimeoutSeconds:  5,
	})

	corCtx := newUploadContext()
	command.Execute(corCtx)

	require.False(t, corCtx.HasErrors())
	file, ok := corCtx.Get(cor.CtxOut).(*genai.File)
	require.True(t, ok, "a non-active state must be polled, not passed on")
	assert.Equal(t, genai.FileStateActive, file.State)
	assert.Equal(t, 1, files.polls)
}

func TestFileServiceUploadProcessingFailed(t *testing.T) {
	files := &fakeFileAPI{states: []genai.FileState{
		genai.FileStateProcessing,
		genai.FileStateFailed,
	}}
	command := NewFileServiceUpload("upload_test", files, cloud.Analysis{
		PollIntervalSeconds: 0,
		PollTimeoutSeconds:  5,
	})

	corCtx := newUploadContext()
	command.Execute(corCtx)

	require.True(t, corCtx.HasErrors())
	assert.True(t, errors.Is(corCtx.GetErrors()["upload_test"], ErrFileProcessingFailed))
	// The remote name must still be recorded so cleanup can delete it.
	assert.Equal(t, "files/test-video", corCtx.Get(ParamRemoteFile))
}

func TestFileServiceUploadTimesOut(t *testing.T) {
	files := &fakeFileAPI{states: []genai.FileState{genai.FileStateProcessing}}
	command := NewFileServiceUpload("upload_test", files, cloud.Analysis{
		PollIntervalSeconds: 0,
		PollTimeoutSeconds:  0,
	})

	corCtx := newUploadContext()
	command.Execute(corCtx)

	require.True(t, corCtx.HasErrors())
	assert.True(t, errors.Is(corCtx.GetErrors()["upload_test"], ErrFileProcessingTimeout))
	assert.Nil(t, corCtx.Get(cor.CtxOut))
}

func TestFileServiceUploadFailure(t *testing.T) {
	files := &fakeFileAPI{uploadErr: errors.New("quota exceeded")}
	command := NewFileServiceUpload("upload_test", files, cloud.Analysis{
		PollIntervalSeconds: 0,
		PollTimeoutSeconds:  5,
	})

	corCtx := newUploadContext()
	command.Execute(corCtx)

	require.True(t, corCtx.HasErrors())
	assert.Nil(t, corCtx.Get(ParamRemoteFile))
}

func TestFileServiceCleanupDeletesRemoteFile(t *testing.T) {
	files := &fakeFileAPI{}
	cleanup := NewFileServiceCleanup("cleanup_test", files)

	corCtx := cor.NewBaseContext()
	corCtx.SetContext(context.Background())

	// Nothing uploaded yet: not executable.
	assert.False(t, cleanup.IsExecutable(corCtx))

	corCtx.Add(ParamRemoteFile, "files/test-video")
	require.True(t, cleanup.IsExecutable(corCtx))
	cleanup.Execute(corCtx)

	assert.Equal(t, []string{"files/test-video"}, files.deleted)
	assert.False(t, corCtx.HasErrors())
}
