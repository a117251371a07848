package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3" // SQLite driver
)

// ErrDuplicateEmail is returned by CreateUser when the email is taken.
var ErrDuplicateEmail = errors.New("user already exists")

const (
	tableNotes      = "notes"
	tableDecks      = "flashcard_decks"
	tableQuizzes    = "quizzes"
	tablePlans      = "plans"
	tableVoiceNotes = "voice_notes"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if strings.Contains(dataSourceName, ":memory:") {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id TEXT PRIMARY KEY, -- UUID
        name TEXT NOT NULL,
        email TEXT UNIQUE NOT NULL,
        role TEXT NOT NULL DEFAULT 'student',
        password_hash TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS notes (
        id TEXT PRIMARY KEY, -- UUID
        user_id TEXT NOT NULL,
        content TEXT NOT NULL,
        summary TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS flashcard_decks (
        id TEXT PRIMARY KEY, -- UUID
        user_id TEXT NOT NULL,
        subject TEXT NOT NULL DEFAULT '',
        cards_json TEXT NOT NULL, -- JSON array of {question, answer}
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS quizzes (
        id TEXT PRIMARY KEY, -- UUID
        user_id TEXT NOT NULL,
        subject TEXT NOT NULL DEFAULT '',
        source TEXT NOT NULL DEFAULT '',
        questions_json TEXT NOT NULL, -- JSON array of {question, options, answer}
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS plans (
        id TEXT PRIMARY KEY, -- UUID
        user_id TEXT NOT NULL,
        subject TEXT NOT NULL DEFAULT '',
        exam_date TEXT NOT NULL,
        plan_json TEXT NOT NULL, -- JSON array of strings
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS voice_notes (
        id TEXT PRIMARY KEY, -- UUID
        user_id TEXT NOT NULL,
        audio_url TEXT NOT NULL DEFAULT '',
        audio_object_id TEXT NOT NULL DEFAULT '',
        original_filename TEXT NOT NULL DEFAULT '',
        transcript TEXT NOT NULL DEFAULT '',
        summary TEXT NOT NULL DEFAULT '',
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE INDEX IF NOT EXISTS idx_notes_user ON notes (user_id);
    CREATE INDEX IF NOT EXISTS idx_decks_user ON flashcard_decks (user_id);
    CREATE INDEX IF NOT EXISTS idx_quizzes_user ON quizzes (user_id);
    CREATE INDEX IF NOT EXISTS idx_plans_user ON plans (user_id);
    CREATE INDEX IF NOT EXISTS idx_voice_notes_user ON voice_notes (user_id);
    `
	_, err := s.db.Exec(schema)
	return err
}

// User methods
func (s *SQLiteStore) CreateUser(name, email, passwordHash string) (*User, error) {
	user := &User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Role:         "student",
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	_, err := s.db.Exec("INSERT INTO users (id, name, email, role, password_hash, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		user.ID, user.Name, user.Email, user.Role, user.PasswordHash, user.CreatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

func (s *SQLiteStore) GetUserByEmail(email string) (*User, error) {
	return s.getUser("email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (s *SQLiteStore) GetUserByID(id string) (*User, error) {
	return s.getUser("id = ?", id)
}

func (s *SQLiteStore) getUser(where string, arg any) (*User, error) {
	var user User
	err := s.db.QueryRow("SELECT id, name, email, role, password_hash, created_at FROM users WHERE "+where, arg).
		Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// Note methods
func (s *SQLiteStore) CreateNote(userID, content, summary string) (*Note, error) {
	note := &Note{ID: uuid.NewString(), UserID: userID, Content: content, Summary: summary, CreatedAt: time.Now()}
	_, err := s.db.Exec("INSERT INTO notes (id, user_id, content, summary, created_at) VALUES (?, ?, ?, ?, ?)",
		note.ID, note.UserID, note.Content, note.Summary, note.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert note: %w", err)
	}
	return note, nil
}

func (s *SQLiteStore) ListNotes(userID string) ([]Note, error) {
	rows, err := s.db.Query("SELECT id, user_id, content, summary, created_at FROM notes WHERE user_id = ? ORDER BY created_at DESC, rowid DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	notes := []Note{}
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Content, &n.Summary, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note row: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *SQLiteStore) DeleteNote(id, userID string) (bool, error) {
	return s.deleteOwned(tableNotes, id, userID)
}

func (s *SQLiteStore) CountNotes(userID string) (int, error) {
	return s.countOwned(tableNotes, userID)
}

// Flashcard deck methods
func (s *SQLiteStore) CreateFlashcardDeck(userID, subject string, cards []Flashcard) (*FlashcardDeck, error) {
	cardsJSON, err := json.Marshal(cards)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cards: %w", err)
	}
	deck := &FlashcardDeck{ID: uuid.NewString(), UserID: userID, Subject: subject, Cards: cards, CreatedAt: time.Now()}
	_, err = s.db.Exec("INSERT INTO flashcard_decks (id, user_id, subject, cards_json, created_at) VALUES (?, ?, ?, ?, ?)",
		deck.ID, deck.UserID, deck.Subject, string(cardsJSON), deck.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert flashcard deck: %w", err)
	}
	return deck, nil
}

func (s *SQLiteStore) GetFlashcardDeck(id, userID string) (*FlashcardDeck, error) {
	row := s.db.QueryRow("SELECT id, user_id, subject, cards_json, created_at FROM flashcard_decks WHERE id = ? AND user_id = ?", id, userID)
	deck, err := scanDeck(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get flashcard deck: %w", err)
	}
	return deck, nil
}

func (s *SQLiteStore) ListFlashcardDecks(userID string) ([]FlashcardDeck, error) {
	rows, err := s.db.Query("SELECT id, user_id, subject, cards_json, created_at FROM flashcard_decks WHERE user_id = ? ORDER BY created_at DESC, rowid DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query flashcard decks: %w", err)
	}
	defer rows.Close()

	decks := []FlashcardDeck{}
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flashcard deck row: %w", err)
		}
		decks = append(decks, *deck)
	}
	return decks, rows.Err()
}

func (s *SQLiteStore) DeleteFlashcardDeck(id, userID string) (bool, error) {
	return s.deleteOwned(tableDecks, id, userID)
}

func (s *SQLiteStore) CountFlashcardDecks(userID string) (int, error) {
	return s.countOwned(tableDecks, userID)
}

// Quiz methods
func (s *SQLiteStore) CreateQuiz(userID, subject, source string, questions []QuizQuestion) (*Quiz, error) {
	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal questions: %w", err)
	}
	quiz := &Quiz{ID: uuid.NewString(), UserID: userID, Subject: subject, Source: source, Questions: questions, CreatedAt: time.Now()}
	_, err = s.db.Exec("INSERT INTO quizzes (id, user_id, subject, source, questions_json, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		quiz.ID, quiz.UserID, quiz.Subject, quiz.Source, string(questionsJSON), quiz.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert quiz: %w", err)
	}
	return quiz, nil
}

func (s *SQLiteStore) ListQuizzes(userID string) ([]Quiz, error) {
	rows, err := s.db.Query("SELECT id, user_id, subject, source, questions_json, created_at FROM quizzes WHERE user_id = ? ORDER BY created_at DESC, rowid DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quizzes: %w", err)
	}
	defer rows.Close()

	quizzes := []Quiz{}
	for rows.Next() {
		var q Quiz
		var questionsJSON string
		if err := rows.Scan(&q.ID, &q.UserID, &q.Subject, &q.Source, &questionsJSON, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quiz row: %w", err)
		}
		if err := json.Unmarshal([]byte(questionsJSON), &q.Questions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal questions for quiz %s: %w", q.ID, err)
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

func (s *SQLiteStore) DeleteQuiz(id, userID string) (bool, error) {
	return s.deleteOwned(tableQuizzes, id, userID)
}

func (s *SQLiteStore) CountQuizzes(userID string) (int, error) {
	return s.countOwned(tableQuizzes, userID)
}

// Plan methods
func (s *SQLiteStore) CreatePlan(userID, subject, examDate string, plan []string) (*StudyPlan, error) {
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan: %w", err)
	}
	sp := &StudyPlan{ID: uuid.NewString(), UserID: userID, Subject: subject, ExamDate: examDate, Plan: plan, CreatedAt: time.Now()}
	_, err = s.db.Exec("INSERT INTO plans (id, user_id, subject, exam_date, plan_json, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		sp.ID, sp.UserID, sp.Subject, sp.ExamDate, string(planJSON), sp.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert plan: %w", err)
	}
	return sp, nil
}

func (s *SQLiteStore) ListPlans(userID string) ([]StudyPlan, error) {
	rows, err := s.db.Query("SELECT id, user_id, subject, exam_date, plan_json, created_at FROM plans WHERE user_id = ? ORDER BY created_at DESC, rowid DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	plans := []StudyPlan{}
	for rows.Next() {
		var p StudyPlan
		var planJSON string
		if err := rows.Scan(&p.ID, &p.UserID, &p.Subject, &p.ExamDate, &planJSON, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan plan row: %w", err)
		}
		if err := json.Unmarshal([]byte(planJSON), &p.Plan); err != nil {
			return nil, fmt.Errorf("failed to unmarshal plan %s: %w", p.ID, err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (s *SQLiteStore) DeletePlan(id, userID string) (bool, error) {
	return s.deleteOwned(tablePlans, id, userID)
}

func (s *SQLiteStore) CountPlans(userID string) (int, error) {
	return s.countOwned(tablePlans, userID)
}

// Voice note methods
func (s *SQLiteStore) CreateVoiceNote(vn *VoiceNote) error {
	vn.ID = uuid.NewString() // Ensure ID is set
	vn.CreatedAt = time.Now()

	_, err := s.db.Exec(`INSERT INTO voice_notes (id, user_id, audio_url, audio_object_id, original_filename, transcript, summary, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		vn.ID, vn.UserID, vn.AudioURL, vn.AudioObjectID, vn.OriginalFilename, vn.Transcript, vn.Summary, vn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert voice note: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetVoiceNote(id, userID string) (*VoiceNote, error) {
	var vn VoiceNote
	err := s.db.QueryRow(`SELECT id, user_id, audio_url, audio_object_id, original_filename, transcript, summary, created_at
        FROM voice_notes WHERE id = ? AND user_id = ?`, id, userID).
		Scan(&vn.ID, &vn.UserID, &vn.AudioURL, &vn.AudioObjectID, &vn.OriginalFilename, &vn.Transcript, &vn.Summary, &vn.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get voice note: %w", err)
	}
	return &vn, nil
}

func (s *SQLiteStore) ListVoiceNotes(userID string) ([]VoiceNote, error) {
	rows, err := s.db.Query(`SELECT id, user_id, audio_url, audio_object_id, original_filename, transcript, summary, created_at
        FROM voice_notes WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query voice notes: %w", err)
	}
	defer rows.Close()

	notes := []VoiceNote{}
	for rows.Next() {
		var vn VoiceNote
		if err := rows.Scan(&vn.ID, &vn.UserID, &vn.AudioURL, &vn.AudioObjectID, &vn.OriginalFilename, &vn.Transcript, &vn.Summary, &vn.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan voice note row: %w", err)
		}
		notes = append(notes, vn)
	}
	return notes, rows.Err()
}

func (s *SQLiteStore) DeleteVoiceNote(id, userID string) (bool, error) {
	return s.deleteOwned(tableVoiceNotes, id, userID)
}

func (s *SQLiteStore) CountVoiceNotes(userID string) (int, error) {
	return s.countOwned(tableVoiceNotes, userID)
}

// table is always one of the table constants above.
func (s *SQLiteStore) deleteOwned(table, id, userID string) (bool, error) {
	res, err := s.db.Exec("DELETE FROM "+table+" WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

func (s *SQLiteStore) countOwned(table, userID string) (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE user_id = ?", userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeck(row rowScanner) (*FlashcardDeck, error) {
	var deck FlashcardDeck
	var cardsJSON string
	if err := row.Scan(&deck.ID, &deck.UserID, &deck.Subject, &cardsJSON, &deck.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(cardsJSON), &deck.Cards); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cards for deck %s: %w", deck.ID, err)
	}
	return &deck, nil
}
