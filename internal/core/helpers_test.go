package core

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gwi.com/study-assistant/internal/logger"
	"gwi.com/study-assistant/internal/objectstore"
	"gwi.com/study-assistant/internal/store"
)

type fakeLLM struct {
	mu sync.Mutex

	reply         string
	replyErr      error
	transcript    string
	transcribeErr error

	prompts         []string
	temperatures    []float32
	transcribeCalls int
	transcribeMIME  string
}

func (f *fakeLLM) GenerateText(_ context.Context, prompt, _ string, temperature float32) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.temperatures = append(f.temperatures, temperature)
	return f.reply, f.replyErr
}

func (f *fakeLLM) TranscribeAudio(_ context.Context, _ []byte, mimeType, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transcribeCalls++
	f.transcribeMIME = mimeType
	return f.transcript, f.transcribeErr
}

func (f *fakeLLM) generateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// flakyObjects wraps a real store and can be told to fail either operation.
type flakyObjects struct {
	objectstore.Store
	putErr    error
	deleteErr error
	deleted   []string
}

func (f *flakyObjects) Put(ctx context.Context, r io.Reader, meta objectstore.Metadata) (*objectstore.Object, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	return f.Store.Put(ctx, r, meta)
}

func (f *flakyObjects) Delete(ctx context.Context, objectID string) error {
	f.deleted = append(f.deleted, objectID)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Store.Delete(ctx, objectID)
}

var errQuota = errors.New("Gemini 429: quota exhausted")

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "core.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestSynthesis(t *testing.T, llm TextGenerator) (*SynthesisService, *store.SQLiteStore) {
	t.Helper()
	db := newTestStore(t)
	return NewSynthesisService(logger.Nop(), llm, db, SynthesisOptions{Model: "test-model"}), db
}
