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

package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecotoss/binsight/internal/cloud"
)

func newTestStore(t *testing.T, maxBytes int64) *LocalVideoStore {
	t.Helper()
	store, err := NewLocalVideoStore(cloud.Storage{
		UploadDir:         t.TempDir(),
		MaxUploadBytes:    maxBytes,
		AllowedExtensions: []string{"webm", "mp4", "avi", "mov"},
	})
	require.NoError(t, err)
	return store
}

func TestAllowedExtensions(t *testing.T) {
	store := newTestStore(t, 1<<20)

	assert.True(t, store.Allowed("clip.mp4"))
	assert.True(t, store.Allowed("CLIP.MOV"))
	assert.True(t, store.Allowed("a.b.webm"))
	assert.False(t, store.Allowed("notes.txt"))
	assert.False(t, store.Allowed("archive.mp4.exe"))
	assert.False(t, store.Allowed("noextension"))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "passwd", SanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "my_clip_1.mp4", SanitizeFilename("my clip 1.mp4"))
	assert.Equal(t, "video", SanitizeFilename(""))
	assert.Equal(t, "video", SanitizeFilename("..."))
}

func TestStoredNameHasUnixTimestampPrefix(t *testing.T) {
	store := newTestStore(t, 1<<20)
	now := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)

	name := store.StoredName("my clip.mp4", now)

	assert.Equal(t, "1735830245_my_clip.mp4", name)
}

func TestSaveAndExists(t *testing.T) {
	store := newTestStore(t, 1<<20)

	path, size, err := store.Save(strings.NewReader("fake video bytes"), "20250102_150405_clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, int64(len("fake video bytes")), size)
	assert.FileExists(t, path)
	assert.True(t, store.Exists("20250102_150405_clip.mp4"))
	assert.False(t, store.Exists("other.mp4"))
}

func TestSaveRejectsOversizedUpload(t *testing.T) {
	store := newTestStore(t, 8)

	_, _, err := store.Save(strings.NewReader("way more than eight bytes"), "big.mp4")
	require.ErrorIs(t, err, ErrTooLarge)

	// The partial file must not remain.
	assert.False(t, store.Exists("big.mp4"))
}

func TestSaveRejectsUnsupportedType(t *testing.T) {
	store := newTestStore(t, 1<<20)

	_, _, err := store.Save(strings.NewReader("x"), "malware.exe")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestPathRejectsTraversal(t *testing.T) {
	store := newTestStore(t, 1<<20)

	for _, name := range []string{"../escape.mp4", "a/b.mp4", "..", "."} {
		_, err := store.Path(name)
		assert.Error(t, err, "name %q", name)
	}
}

func TestListReturnsNewestFirst(t *testing.T) {
	store := newTestStore(t, 1<<20)

	older := filepath.Join(store.Dir(), "older.mp4")
	newer := filepath.Join(store.Dir(), "newer.mp4")
	require.NoError(t, os.WriteFile(older, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(newer, []byte("bb"), 0o644))
	// Skew the mtimes so the ordering is deterministic.
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))
	// A stray non-video file must not appear in the listing.
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "notes.txt"), []byte("x"), 0o644))

	videos, err := store.List()
	require.NoError(t, err)

	require.Len(t, videos, 2)
	assert.Equal(t, "newer.mp4", videos[0].Filename)
	assert.Equal(t, "older.mp4", videos[1].Filename)
	assert.Equal(t, int64(2), videos[0].SizeBytes)
}

func TestDetectMIMEFallsBackToExtension(t *testing.T) {
	store := newTestStore(t, 1<<20)

	// Content that no sniffer recognizes.
	_, _, err := store.Save(strings.NewReader("not a real container"), "clip.webm")
	require.NoError(t, err)

	assert.Equal(t, "video/webm", store.DetectMIME("clip.webm"))
	assert.Equal(t, "video/mp4", store.DetectMIME("missing.mp4"))
	assert.Equal(t, "application/octet-stream", store.DetectMIME("missing.bin"))
}
