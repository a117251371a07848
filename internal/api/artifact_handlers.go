package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"gwi.com/study-assistant/internal/core"
)

type ContentRequest struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
}

type PlanRequest struct {
	Subject  string `json:"subject"`
	Syllabus string `json:"syllabus"`
	ExamDate string `json:"examDate"`
}

func (h *APIHandler) generate(w http.ResponseWriter, r *http.Request, req core.GenerationRequest) (*core.Outcome, bool) {
	req.OwnerID = userIDFrom(r)
	out, err := h.synthesis.Generate(r.Context(), req)
	if err != nil {
		h.fail(w, err, "Failed to generate "+string(req.Kind))
		return nil, false
	}
	return out, true
}

func (h *APIHandler) SummarizeNoteHandler(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	out, ok := h.generate(w, r, core.GenerationRequest{Kind: core.KindSummary, SourceText: req.Content})
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"note": out.Note, "summary": out.Note.Summary})
}

func (h *APIHandler) GenerateQuizHandler(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	out, ok := h.generate(w, r, core.GenerationRequest{Kind: core.KindQuiz, SourceText: req.Content, Subject: req.Subject})
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"quiz": out.Quiz})
}

func (h *APIHandler) GenerateFlashcardsHandler(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	out, ok := h.generate(w, r, core.GenerationRequest{Kind: core.KindFlashcards, SourceText: req.Content, Subject: req.Subject})
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"flashcards": out.Deck})
}

func (h *APIHandler) GeneratePlanHandler(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if !decodeBody(w, r, &req) {
		return
	}
	out, ok := h.generate(w, r, core.GenerationRequest{
		Kind:       core.KindPlan,
		SourceText: req.Syllabus,
		Subject:    req.Subject,
		ExamDate:   req.ExamDate,
	})
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"planner": out.Plan})
}

func (h *APIHandler) ListNotesHandler(w http.ResponseWriter, r *http.Request) {
	notes, err := h.library.Notes(userIDFrom(r))
	respondList(h, w, notes, err, "Failed to list notes")
}

func (h *APIHandler) ListQuizzesHandler(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.library.Quizzes(userIDFrom(r))
	respondList(h, w, quizzes, err, "Failed to list quizzes")
}

func (h *APIHandler) ListFlashcardsHandler(w http.ResponseWriter, r *http.Request) {
	decks, err := h.library.FlashcardDecks(userIDFrom(r))
	respondList(h, w, decks, err, "Failed to list flashcards")
}

func (h *APIHandler) ListPlansHandler(w http.ResponseWriter, r *http.Request) {
	plans, err := h.library.Plans(userIDFrom(r))
	respondList(h, w, plans, err, "Failed to list plans")
}

func (h *APIHandler) GetFlashcardsHandler(w http.ResponseWriter, r *http.Request) {
	deck, err := h.library.FlashcardDeck(chi.URLParam(r, "id"), userIDFrom(r))
	if err != nil {
		h.fail(w, err, "Failed to get flashcards")
		return
	}
	if deck == nil {
		http.Error(w, "Flashcards not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

func (h *APIHandler) CountNotesHandler(w http.ResponseWriter, r *http.Request) {
	n, err := h.library.CountNotes(userIDFrom(r))
	respondCount(h, w, n, err)
}

func (h *APIHandler) CountQuizzesHandler(w http.ResponseWriter, r *http.Request) {
	n, err := h.library.CountQuizzes(userIDFrom(r))
	respondCount(h, w, n, err)
}

func (h *APIHandler) CountFlashcardsHandler(w http.ResponseWriter, r *http.Request) {
	n, err := h.library.CountFlashcardDecks(userIDFrom(r))
	respondCount(h, w, n, err)
}

func (h *APIHandler) DeleteNoteHandler(w http.ResponseWriter, r *http.Request) {
	ok, err := h.library.DeleteNote(chi.URLParam(r, "id"), userIDFrom(r))
	respondDelete(h, w, ok, err, "Note")
}

func (h *APIHandler) DeleteQuizHandler(w http.ResponseWriter, r *http.Request) {
	ok, err := h.library.DeleteQuiz(chi.URLParam(r, "id"), userIDFrom(r))
	respondDelete(h, w, ok, err, "Quiz")
}

func (h *APIHandler) DeleteFlashcardsHandler(w http.ResponseWriter, r *http.Request) {
	ok, err := h.library.DeleteFlashcardDeck(chi.URLParam(r, "id"), userIDFrom(r))
	respondDelete(h, w, ok, err, "Flashcards")
}

func (h *APIHandler) DeletePlanHandler(w http.ResponseWriter, r *http.Request) {
	ok, err := h.library.DeletePlan(chi.URLParam(r, "id"), userIDFrom(r))
	respondDelete(h, w, ok, err, "Plan")
}

func respondList[T any](h *APIHandler, w http.ResponseWriter, items []T, err error, msg string) {
	if err != nil {
		h.fail(w, err, msg)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func respondCount(h *APIHandler, w http.ResponseWriter, n int, err error) {
	if err != nil {
		h.fail(w, err, "Failed to count")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

func respondDelete(h *APIHandler, w http.ResponseWriter, ok bool, err error, what string) {
	if err != nil {
		h.fail(w, err, "Failed to delete "+what)
		return
	}
	if !ok {
		http.Error(w, what+" not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
