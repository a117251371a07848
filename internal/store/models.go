package store

import "time"

type User struct {
	ID           string    `json:"id"` // UUID
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"` // Do not expose this in JSON responses
	CreatedAt    time.Time `json:"created_at"`
}

// Flashcard is one canonical Q/A card.
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// QuizQuestion is one canonical MCQ. Answer is not checked against Options.
type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

type FlashcardDeck struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Subject   string      `json:"subject"`
	Cards     []Flashcard `json:"cards"`
	CreatedAt time.Time   `json:"created_at"`
}

type Quiz struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Subject   string         `json:"subject"`
	Source    string         `json:"source"` // preview of the source text
	Questions []QuizQuestion `json:"questions"`
	CreatedAt time.Time      `json:"created_at"`
}

type StudyPlan struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Subject   string    `json:"subject"`
	ExamDate  string    `json:"exam_date"` // kept as YYYY-MM-DD text
	Plan      []string  `json:"plan"`
	CreatedAt time.Time `json:"created_at"`
}

type VoiceNote struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	AudioURL         string    `json:"audio_url"`
	AudioObjectID    string    `json:"audio_object_id"`
	OriginalFilename string    `json:"original_filename"`
	Transcript       string    `json:"transcript"`
	Summary          string    `json:"summary"`
	CreatedAt        time.Time `json:"created_at"`
}

// Stats counts a user's saved artifacts.
type Stats struct {
	Notes      int `json:"notes"`
	Quizzes    int `json:"quizzes"`
	Flashcards int `json:"flashcards"`
	Plans      int `json:"plans"`
	VoiceNotes int `json:"voiceNotes"`
}
