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
	"log/slog"

	"github.com/ecotoss/binsight/internal/core/cor"
)

// FileServiceCleanup deletes the remote copy of the video from the Gemini
// file service. It is run outside the main chain, after the pipeline has
// finished, so the remote file is removed whether the analysis succeeded or
// not. Deletion failures are logged and swallowed; the file service expires
// files on its own eventually.
type FileServiceCleanup struct {
	cor.BaseCommand
	files FileAPI
}

func NewFileServiceCleanup(name string, files FileAPI) *FileServiceCleanup {
	base := cor.NewBaseCommand(name)
	base.InputParamName = ParamRemoteFile
	return &FileServiceCleanup{
		BaseCommand: *base,
		files:       files,
	}
}

func (f *FileServiceCleanup) IsExecutable(context cor.Context) bool {
	if f.files == nil || context == nil || context.GetContext() == nil {
		return false
	}
	name, ok := context.Get(ParamRemoteFile).(string)
	return ok && name != ""
}

func (f *FileServiceCleanup) Execute(context cor.Context) {
	ctx := context.GetContext()
	name := context.Get(ParamRemoteFile).(string)

	if _, err := f.files.Delete(ctx, name, nil); err != nil {
		slog.WarnContext(ctx, "failed to delete remote file", "file", name, "error", err)
		return
	}
	slog.InfoContext(ctx, "remote file deleted", "file", name)
}
