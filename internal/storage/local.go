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

// Package storage persists uploaded videos on the local filesystem and
// guards the directory against oversized files, unsupported containers, and
// path traversal.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/h2non/filetype"

	"github.com/ecotoss/binsight/internal/cloud"
)

var (
	// ErrUnsupportedType is returned when the file extension is not on the
	// allow-list.
	ErrUnsupportedType = errors.New("unsupported video type")
	// ErrTooLarge is returned when the upload exceeds the configured size cap.
	ErrTooLarge = errors.New("file exceeds maximum upload size")
	// ErrNotFound is returned when the named video does not exist.
	ErrNotFound = errors.New("video not found")
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// VideoInfo describes one stored video for directory listings.
type VideoInfo struct {
	Filename  string    `json:"filename"`
	SizeBytes int64     `json:"size_bytes"`
	Created   time.Time `json:"created"`
}

// LocalVideoStore keeps uploaded videos in a single flat directory.
type LocalVideoStore struct {
	dir        string
	maxBytes   int64
	allowedExt map[string]bool
}

// NewLocalVideoStore creates the upload directory if needed and returns a
// store enforcing the configured limits.
func NewLocalVideoStore(cfg cloud.Storage) (*LocalVideoStore, error) {
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	allowed := make(map[string]bool, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}
	return &LocalVideoStore{
		dir:        cfg.UploadDir,
		maxBytes:   cfg.MaxUploadBytes,
		allowedExt: allowed,
	}, nil
}

// Dir returns the upload directory path.
func (s *LocalVideoStore) Dir() string {
	return s.dir
}

// Allowed reports whether the filename carries an extension from the
// allow-list. Files without an extension are rejected.
func (s *LocalVideoStore) Allowed(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return false
	}
	return s.allowedExt[ext]
}

// SanitizeFilename strips any directory components and replaces characters
// outside [A-Za-z0-9._-] with underscores.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, ".")
	if name == "" {
		name = "video"
	}
	return name
}

// StoredName builds the on-disk name for an upload: an integer unix
// timestamp prefix followed by the sanitized original name. Collisions for
// the same name within one second are an accepted risk.
func (s *LocalVideoStore) StoredName(original string, now time.Time) string {
	return strconv.FormatInt(now.Unix(), 10) + "_" + SanitizeFilename(original)
}

// Save streams the upload to disk under the given stored name, enforcing
// the size cap while copying. A partial file left by an oversized or failed
// upload is removed.
func (s *LocalVideoStore) Save(src io.Reader, storedName string) (string, int64, error) {
	if !s.Allowed(storedName) {
		return "", 0, ErrUnsupportedType
	}
	dest, err := s.Path(storedName)
	if err != nil {
		return "", 0, err
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create video file: %w", err)
	}

	written, err := io.Copy(f, io.LimitReader(src, s.maxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > s.maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(dest)
		return "", 0, err
	}
	return dest, written, nil
}

// Path resolves a filename inside the upload directory, rejecting any name
// that would escape it.
func (s *LocalVideoStore) Path(filename string) (string, error) {
	if filename != filepath.Base(filename) || filename == "." || filename == ".." {
		return "", fmt.Errorf("invalid filename: %s", filename)
	}
	return filepath.Join(s.dir, filename), nil
}

// Exists reports whether the named video is present in the store.
func (s *LocalVideoStore) Exists(filename string) bool {
	p, err := s.Path(filename)
	if err != nil {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// List returns the stored videos with an allowed extension, newest first.
func (s *LocalVideoStore) List() ([]VideoInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload directory: %w", err)
	}
	out := make([]VideoInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !s.Allowed(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, VideoInfo{
			Filename:  entry.Name(),
			SizeBytes: info.Size(),
			Created:   info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Created.After(out[j].Created)
	})
	return out, nil
}

// DetectMIME sniffs the video's content type from its leading bytes and
// falls back to an extension-based guess when sniffing is inconclusive.
func (s *LocalVideoStore) DetectMIME(filename string) string {
	if p, err := s.Path(filename); err == nil {
		if f, err := os.Open(p); err == nil {
			head := make([]byte, 261)
			n, _ := io.ReadFull(f, head)
			f.Close()
			if kind, err := filetype.Match(head[:n]); err == nil && kind != filetype.Unknown {
				return kind.MIME.Value
			}
		}
	}
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "mp4":
		return "video/mp4"
	case "webm":
		return "video/webm"
	case "avi":
		return "video/x-msvideo"
	case "mov":
		return "video/quicktime"
	default:
		return "application/octet-stream"
	}
}
