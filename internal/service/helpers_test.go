package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tecelaria/internal/enrichment"
	"tecelaria/internal/model"
	"tecelaria/internal/repository"
)

// newTestDB opens a throwaway SQLite database with full migrations and seed
// data (15 predefined categories, 150 questions).
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, PasswordHash: "x", Name: "Test User"}
	require.NoError(t, db.Create(user).Error)
	return user
}

// stubAdapter is a canned enrichment.Adapter for pipeline tests.
type stubAdapter struct {
	transcription string
	analysis      *enrichment.Analysis
	transcribeErr error
	analyzeErr    error
	extractText   string
	extractErr    error
}

func (a *stubAdapter) Transcribe(context.Context, []byte, string) (string, error) {
	if a.transcribeErr != nil {
		return "", a.transcribeErr
	}
	return a.transcription, nil
}

func (a *stubAdapter) Analyze(context.Context, string, enrichment.Context) (*enrichment.Analysis, error) {
	if a.analyzeErr != nil {
		return nil, a.analyzeErr
	}
	return a.analysis, nil
}

func (a *stubAdapter) ExtractText(context.Context, []byte, string) (string, error) {
	if a.extractErr != nil {
		return "", a.extractErr
	}
	return a.extractText, nil
}

func defaultStubAnalysis() *enrichment.Analysis {
	period := "anos 1980"
	return &enrichment.Analysis{
		Title:           "A casa da minha avó",
		Summary:         "Uma lembrança da casa da avó nos anos 1980.",
		Themes:          []string{"família", "infância"},
		PeopleMentioned: []string{"Dona Maria"},
		PeriodMentioned: &period,
	}
}

// newMemoryService wires a MemoryService over the test DB with the given stub.
func newMemoryService(t *testing.T, db *gorm.DB, adapter enrichment.Adapter) *MemoryService {
	t.Helper()
	categorySvc := NewCategoryService(repository.NewCategoryRepository(db))
	questionSvc := NewQuestionService(repository.NewQuestionRepository(db))
	return NewMemoryService(repository.NewMemoryRepository(db), categorySvc, questionSvc, adapter, zap.NewNop())
}

// fixedNow pins a service clock for deterministic date math.
func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
