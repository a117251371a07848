package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gwi.com/study-assistant/internal/logger"
	"gwi.com/study-assistant/internal/objectstore"
	"gwi.com/study-assistant/internal/store"
)

type voiceFixture struct {
	svc     *VoiceService
	llm     *fakeLLM
	db      *store.SQLiteStore
	objects *flakyObjects
	disk    *objectstore.DiskStore
}

func newVoiceFixture(t *testing.T, llm *fakeLLM) *voiceFixture {
	t.Helper()
	synth, db := newTestSynthesis(t, llm)
	disk, err := objectstore.NewDiskStore(logger.Nop(), t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)
	objects := &flakyObjects{Store: disk}
	svc := NewVoiceService(logger.Nop(), llm, synth, objects, db, VoiceOptions{Folder: "voice-notes"})
	return &voiceFixture{svc: svc, llm: llm, db: db, objects: objects, disk: disk}
}

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload-123")
	require.NoError(t, os.WriteFile(path, []byte("RIFF fake wav bytes"), 0o600))
	return path
}

func TestIngest(t *testing.T) {
	f := newVoiceFixture(t, &fakeLLM{
		transcript: "  Cells are the basic unit of life. They have membranes.  ",
		reply:      "- Cells are basic units\n- Membranes enclose cells",
	})
	path := writeTempAudio(t)

	note, err := f.svc.Ingest(context.Background(), VoiceUpload{
		OwnerID: ownerID, TempPath: path, OriginalFilename: "lecture.wav",
	})
	require.NoError(t, err)
	assert.NoFileExists(t, path)

	assert.Equal(t, "Cells are the basic unit of life. They have membranes.", note.Transcript)
	assert.Equal(t, "- Cells are basic units\n- Membranes enclose cells", note.Summary)
	assert.Equal(t, "lecture.wav", note.OriginalFilename)
	assert.Equal(t, "audio/wav", f.llm.transcribeMIME)
	assert.Contains(t, note.AudioObjectID, "voice-notes/")
	assert.Equal(t, "http://localhost:8080/media/"+note.AudioObjectID, note.AudioURL)
	assert.FileExists(t, filepath.Join(f.disk.Root(), filepath.FromSlash(note.AudioObjectID)))

	saved, err := f.db.GetVoiceNote(note.ID, ownerID)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, note.Summary, saved.Summary)
}

func TestIngestTranscriptionFailureStillSaves(t *testing.T) {
	f := newVoiceFixture(t, &fakeLLM{transcribeErr: errQuota, reply: "unused"})
	path := writeTempAudio(t)

	note, err := f.svc.Ingest(context.Background(), VoiceUpload{OwnerID: ownerID, TempPath: path, OriginalFilename: "memo.webm"})
	require.NoError(t, err)
	assert.NoFileExists(t, path)
	assert.Empty(t, note.Transcript)
	assert.Empty(t, note.Summary)
	assert.Zero(t, f.llm.generateCalls())
	assert.NotEmpty(t, note.AudioURL)
}

func TestIngestSummaryFailureUsesPreview(t *testing.T) {
	f := newVoiceFixture(t, &fakeLLM{transcript: "A fairly long transcript", replyErr: errQuota})
	path := writeTempAudio(t)

	note, err := f.svc.Ingest(context.Background(), VoiceUpload{OwnerID: ownerID, TempPath: path})
	require.NoError(t, err)
	assert.Equal(t, "A fairly long transcript...", note.Summary)
	assert.Equal(t, filepath.Base(path), note.OriginalFilename)
}

func TestIngestShortTranscriptSkipsSummary(t *testing.T) {
	f := newVoiceFixture(t, &fakeLLM{transcript: "Hi.", reply: "- never"})
	note, err := f.svc.Ingest(context.Background(), VoiceUpload{OwnerID: ownerID, TempPath: writeTempAudio(t)})
	require.NoError(t, err)
	assert.Equal(t, "Hi.", note.Transcript)
	assert.Empty(t, note.Summary)
	assert.Zero(t, f.llm.generateCalls())
}

func TestIngestUploadFailure(t *testing.T) {
	f := newVoiceFixture(t, &fakeLLM{transcript: "never reached"})
	f.objects.putErr = errors.New("bucket unavailable")
	path := writeTempAudio(t)

	_, err := f.svc.Ingest(context.Background(), VoiceUpload{OwnerID: ownerID, TempPath: path})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)
	assert.NoFileExists(t, path)
	assert.Zero(t, f.llm.transcribeCalls)

	n, err := f.db.CountVoiceNotes(ownerID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIngestValidation(t *testing.T) {
	f := newVoiceFixture(t, &fakeLLM{})

	_, err := f.svc.Ingest(context.Background(), VoiceUpload{OwnerID: ownerID})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	path := writeTempAudio(t)
	_, err = f.svc.Ingest(context.Background(), VoiceUpload{TempPath: path})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.NoFileExists(t, path)
}

func TestDeleteVoiceNote(t *testing.T) {
	f := newVoiceFixture(t, &fakeLLM{transcript: "some words here"})
	note, err := f.svc.Ingest(context.Background(), VoiceUpload{OwnerID: ownerID, TempPath: writeTempAudio(t)})
	require.NoError(t, err)

	ok, err := f.svc.Delete(context.Background(), note.ID, "someone-else")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.svc.Delete(context.Background(), note.ID, ownerID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{note.AudioObjectID}, f.objects.deleted)
	assert.NoFileExists(t, filepath.Join(f.disk.Root(), filepath.FromSlash(note.AudioObjectID)))

	ok, err = f.svc.Delete(context.Background(), note.ID, ownerID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteVoiceNoteRemoteFailure(t *testing.T) {
	f := newVoiceFixture(t, &fakeLLM{transcript: "some words here"})
	note, err := f.svc.Ingest(context.Background(), VoiceUpload{OwnerID: ownerID, TempPath: writeTempAudio(t)})
	require.NoError(t, err)

	f.objects.deleteErr = errors.New("permission denied")
	ok, err := f.svc.Delete(context.Background(), note.ID, ownerID)
	require.NoError(t, err)
	assert.True(t, ok)

	gone, err := f.db.GetVoiceNote(note.ID, ownerID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestInferAudioMIME(t *testing.T) {
	tests := []struct {
		contentType, filename, want string
	}{
		{"audio/mpeg", "x.wav", "audio/mpeg"},
		{"audio/webm; codecs=opus", "", "audio/webm"},
		{"application/octet-stream", "talk.MP3", "audio/mpeg"},
		{"", "a.wav", "audio/wav"},
		{"", "a.m4a", "audio/mp4"},
		{"", "a.ogg", "audio/ogg"},
		{"", "a.webm", "audio/webm"},
		{"", "blob", "audio/webm"},
		{"video/mp4", "clip.flac", "audio/webm"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InferAudioMIME(tt.contentType, tt.filename), "%q %q", tt.contentType, tt.filename)
	}
}
