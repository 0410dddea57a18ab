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

// Package commands contains the individual steps of the video analysis
// pipeline: upload the video to the file service, generate the model reply,
// extract the structured result, persist it, update the user's score, and
// clean up the remote file.
package commands

// Shared context parameter keys. The primary value flows between commands
// through the chain's in/out piping; these keys carry the side-band values
// several commands need.
const (
	// ParamMIMEType is the sniffed content type of the uploaded video.
	ParamMIMEType = "mime_type"
	// ParamDisplayName is the human-readable name for the remote file.
	ParamDisplayName = "display_name"
	// ParamStoredName is the on-disk filename of the uploaded video.
	ParamStoredName = "stored_name"
	// ParamRequest is the *model.UploadRequest that accompanied the upload.
	ParamRequest = "upload_request"
	// ParamRemoteFile is the file service name of the uploaded video, kept
	// for cleanup after the pipeline finishes.
	ParamRemoteFile = "remote_file"
	// ParamResultFile is the filename of the persisted analysis envelope.
	ParamResultFile = "result_file"
)
