package core

import (
	"golang.org/x/sync/errgroup"

	"gwi.com/study-assistant/internal/store"
)

// LibraryService serves a user's saved artifacts.
type LibraryService struct {
	dbStore *store.SQLiteStore
}

func NewLibraryService(db *store.SQLiteStore) *LibraryService {
	return &LibraryService{dbStore: db}
}

func (s *LibraryService) Notes(userID string) ([]store.Note, error) {
	return s.dbStore.ListNotes(userID)
}

func (s *LibraryService) DeleteNote(id, userID string) (bool, error) {
	return s.dbStore.DeleteNote(id, userID)
}

func (s *LibraryService) CountNotes(userID string) (int, error) {
	return s.dbStore.CountNotes(userID)
}

func (s *LibraryService) FlashcardDecks(userID string) ([]store.FlashcardDeck, error) {
	return s.dbStore.ListFlashcardDecks(userID)
}

func (s *LibraryService) FlashcardDeck(id, userID string) (*store.FlashcardDeck, error) {
	return s.dbStore.GetFlashcardDeck(id, userID)
}

func (s *LibraryService) DeleteFlashcardDeck(id, userID string) (bool, error) {
	return s.dbStore.DeleteFlashcardDeck(id, userID)
}

func (s *LibraryService) CountFlashcardDecks(userID string) (int, error) {
	return s.dbStore.CountFlashcardDecks(userID)
}

func (s *LibraryService) Quizzes(userID string) ([]store.Quiz, error) {
	return s.dbStore.ListQuizzes(userID)
}

func (s *LibraryService) DeleteQuiz(id, userID string) (bool, error) {
	return s.dbStore.DeleteQuiz(id, userID)
}

func (s *LibraryService) CountQuizzes(userID string) (int, error) {
	return s.dbStore.CountQuizzes(userID)
}

func (s *LibraryService) Plans(userID string) ([]store.StudyPlan, error) {
	return s.dbStore.ListPlans(userID)
}

func (s *LibraryService) DeletePlan(id, userID string) (bool, error) {
	return s.dbStore.DeletePlan(id, userID)
}

func (s *LibraryService) VoiceNotes(userID string) ([]store.VoiceNote, error) {
	return s.dbStore.ListVoiceNotes(userID)
}

func (s *LibraryService) CountVoiceNotes(userID string) (int, error) {
	return s.dbStore.CountVoiceNotes(userID)
}

// Stats counts every artifact table concurrently.
func (s *LibraryService) Stats(userID string) (*store.Stats, error) {
	var stats store.Stats
	var g errgroup.Group

	counters := []struct {
		dst   *int
		count func(string) (int, error)
	}{
		{&stats.Notes, s.dbStore.CountNotes},
		{&stats.Quizzes, s.dbStore.CountQuizzes},
		{&stats.Flashcards, s.dbStore.CountFlashcardDecks},
		{&stats.Plans, s.dbStore.CountPlans},
		{&stats.VoiceNotes, s.dbStore.CountVoiceNotes},
	}
	for _, c := range counters {
		g.Go(func() error {
			n, err := c.count(userID)
			if err != nil {
				return err
			}
			*c.dst = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}
