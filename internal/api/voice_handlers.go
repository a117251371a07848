package api

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"gwi.com/study-assistant/internal/core"
	"gwi.com/study-assistant/internal/store"
)

const audioFormField = "audio"

type VoiceUploadResponse struct {
	OK            bool             `json:"ok"`
	Note          *store.VoiceNote `json:"note"`
	Transcript    string           `json:"transcript"`
	Summary       string           `json:"summary"`
	AudioURL      string           `json:"audioUrl"`
	AudioPublicID string           `json:"audioPublicId"`
}

// UploadVoiceHandler spools the "audio" part to a temp file and hands it to
// the voice pipeline, which owns and removes it.
func (h *APIHandler) UploadVoiceHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.opts.MaxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			http.Error(w, "Audio file too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Invalid multipart body: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(audioFormField)
	if err != nil {
		http.Error(w, "No audio file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp(h.opts.UploadDir, "voice-*"+filepath.Ext(header.Filename))
	if err != nil {
		h.log.Error("Failed to create temp audio file", "dir", h.opts.UploadDir, "error", err)
		http.Error(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}
	_, copyErr := io.Copy(tmp, file)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(tmp.Name())
		h.log.Error("Failed to spool audio upload", "copy_error", copyErr, "close_error", closeErr)
		http.Error(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}

	note, err := h.voice.Ingest(r.Context(), core.VoiceUpload{
		OwnerID:          userIDFrom(r),
		TempPath:         tmp.Name(),
		OriginalFilename: header.Filename,
		ContentType:      header.Header.Get("Content-Type"),
	})
	if err != nil {
		h.fail(w, err, "Audio upload failed")
		return
	}

	writeJSON(w, http.StatusCreated, VoiceUploadResponse{
		OK:            true,
		Note:          note,
		Transcript:    note.Transcript,
		Summary:       note.Summary,
		AudioURL:      note.AudioURL,
		AudioPublicID: note.AudioObjectID,
	})
}

func (h *APIHandler) ListVoiceNotesHandler(w http.ResponseWriter, r *http.Request) {
	notes, err := h.library.VoiceNotes(userIDFrom(r))
	respondList(h, w, notes, err, "Failed to list voice notes")
}

func (h *APIHandler) CountVoiceNotesHandler(w http.ResponseWriter, r *http.Request) {
	n, err := h.library.CountVoiceNotes(userIDFrom(r))
	respondCount(h, w, n, err)
}

func (h *APIHandler) DeleteVoiceNoteHandler(w http.ResponseWriter, r *http.Request) {
	ok, err := h.voice.Delete(r.Context(), chi.URLParam(r, "id"), userIDFrom(r))
	respondDelete(h, w, ok, err, "Voice note")
}
