package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gwi.com/study-assistant/internal/logger"
	"gwi.com/study-assistant/internal/objectstore"
	"gwi.com/study-assistant/internal/store"
)

const (
	defaultAudioMIME        = "audio/webm"
	minTranscriptForSummary = 5
)

type VoiceNoteStore interface {
	CreateVoiceNote(vn *store.VoiceNote) error
	GetVoiceNote(id, userID string) (*store.VoiceNote, error)
	DeleteVoiceNote(id, userID string) (bool, error)
}

type VoiceOptions struct {
	Folder string // object storage prefix
	Model  string
}

// VoiceService ingests recorded audio: upload, transcribe, summarize, save.
type VoiceService struct {
	log     *logger.Logger
	llm     TextGenerator
	synth   *SynthesisService
	objects objectstore.Store
	notes   VoiceNoteStore
	folder  string
	model   string
}

func NewVoiceService(log *logger.Logger, llm TextGenerator, synth *SynthesisService, objects objectstore.Store, notes VoiceNoteStore, opts VoiceOptions) *VoiceService {
	return &VoiceService{
		log:     log.With("service", "VoiceService"),
		llm:     llm,
		synth:   synth,
		objects: objects,
		notes:   notes,
		folder:  opts.Folder,
		model:   opts.Model,
	}
}

// VoiceUpload is an audio file already spooled to local disk. Ingest owns
// TempPath from the moment it is called and always removes it.
type VoiceUpload struct {
	OwnerID          string
	TempPath         string
	OriginalFilename string
	ContentType      string
}

// Ingest fails only on invalid input, upload failure, or a failed save.
// Transcription and summary failures degrade to empty or preview text.
func (s *VoiceService) Ingest(ctx context.Context, in VoiceUpload) (*store.VoiceNote, error) {
	defer s.removeTemp(in.TempPath)

	if strings.TrimSpace(in.TempPath) == "" {
		return nil, invalidRequest("no audio file uploaded")
	}
	if strings.TrimSpace(in.OwnerID) == "" {
		return nil, invalidRequest("userId required")
	}

	filename := in.OriginalFilename
	if filename == "" {
		filename = filepath.Base(in.TempPath)
	}
	mimeType := InferAudioMIME(in.ContentType, filename)

	obj, err := s.upload(ctx, in.TempPath, filename, mimeType)
	if err != nil {
		return nil, err
	}

	transcript := s.transcribe(ctx, in.TempPath, mimeType)
	summary := s.summarize(ctx, in.OwnerID, transcript)

	note := &store.VoiceNote{
		UserID:           in.OwnerID,
		AudioURL:         obj.URL,
		AudioObjectID:    obj.ObjectID,
		OriginalFilename: filename,
		Transcript:       transcript,
		Summary:          summary,
	}
	if err := s.notes.CreateVoiceNote(note); err != nil {
		return nil, fmt.Errorf("failed to save voice note: %w", err)
	}
	return note, nil
}

func (s *VoiceService) upload(ctx context.Context, path, filename, mimeType string) (*objectstore.Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, storageErr("upload_audio", fmt.Errorf("open temp file: %w", err))
	}
	defer f.Close()

	obj, err := s.objects.Put(ctx, f, objectstore.Metadata{
		Folder:      s.folder,
		Filename:    filename,
		ContentType: mimeType,
	})
	if err != nil {
		return nil, storageErr("upload_audio", err)
	}
	return obj, nil
}

func (s *VoiceService) transcribe(ctx context.Context, path, mimeType string) string {
	audio, err := os.ReadFile(path)
	if err != nil {
		s.log.Warn("Transcription skipped; temp file unreadable", "error", err)
		return ""
	}
	transcript, err := s.llm.TranscribeAudio(ctx, audio, mimeType, s.model)
	if err != nil {
		s.log.Warn("Transcription failed", "error", err, "mime_type", mimeType)
		return ""
	}
	return strings.TrimSpace(transcript)
}

func (s *VoiceService) summarize(ctx context.Context, ownerID, transcript string) string {
	if len(strings.TrimSpace(transcript)) <= minTranscriptForSummary {
		return ""
	}
	art, err := s.synth.Synthesize(ctx, GenerationRequest{
		Kind:       KindTranscriptSummary,
		SourceText: transcript,
		OwnerID:    ownerID,
	})
	if err != nil {
		s.log.Warn("Summary failed; using transcript preview", "error_kind", KindOf(err), "error", err)
		return transcriptFallbackSummary(transcript)
	}
	return art.SummaryText()
}

func (s *VoiceService) removeTemp(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn("Failed to remove temp audio file", "path", path, "error", err)
	}
}

// Delete removes the record. Remote object deletion is attempted first and
// its failure is only logged. Returns false when no such note exists.
func (s *VoiceService) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	note, err := s.notes.GetVoiceNote(id, ownerID)
	if err != nil {
		return false, err
	}
	if note == nil {
		return false, nil
	}

	if note.AudioObjectID != "" {
		if err := s.objects.Delete(ctx, note.AudioObjectID); err != nil {
			s.log.Warn("Remote audio delete failed; deleting record anyway",
				"voice_note_id", note.ID, "object_id", note.AudioObjectID, "error", err)
		}
	}
	return s.notes.DeleteVoiceNote(id, ownerID)
}

// InferAudioMIME prefers a declared audio/* content type, then the file
// extension, then audio/webm.
func InferAudioMIME(contentType, filename string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if strings.HasPrefix(ct, "audio/") {
		return ct
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".m4a":
		return "audio/mp4"
	case ".ogg":
		return "audio/ogg"
	case ".webm":
		return "audio/webm"
	default:
		return defaultAudioMIME
	}
}
