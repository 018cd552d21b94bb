package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tecelaria/internal/apperr"
	"tecelaria/internal/model"
)

func TestProcessTextMemoryEnriches(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "u@example.com")
	svc := newMemoryService(t, db, &stubAdapter{analysis: defaultStubAnalysis()})
	ctx := context.Background()

	var category model.Category
	require.NoError(t, db.Where("name = ?", "Família").First(&category).Error)

	result, err := svc.Process(ctx, user.ID, ProcessInput{
		Type:       model.RecordTypeText,
		Content:    "Minha avó assava pão todo domingo.",
		CategoryID: &category.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Analysis)
	assert.Equal(t, "A casa da minha avó", result.Memory.Title)
	assert.Equal(t, []string{"família", "infância"}, result.Memory.Themes)

	stored, err := svc.Get(ctx, user.ID, result.Memory.ID)
	require.NoError(t, err)
	assert.Equal(t, "A casa da minha avó", stored.Title)
	require.Len(t, stored.Records, 1)
	assert.Equal(t, model.RecordTypeText, stored.Records[0].Type)
}

func TestProcessAudioMemoryTranscribes(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "u@example.com")
	svc := newMemoryService(t, db, &stubAdapter{
		transcription: "Naquele verão fomos todos para a praia.",
		analysis:      defaultStubAnalysis(),
	})
	ctx := context.Background()

	var category model.Category
	require.NoError(t, db.Where("name = ?", "Viagens").First(&category).Error)

	result, err := svc.Process(ctx, user.ID, ProcessInput{
		Type:       model.RecordTypeAudio,
		AudioData:  []byte{0x01, 0x02},
		MimeType:   "audio/ogg",
		FileURL:    "http://localhost:8080/uploads/abc.ogg",
		CategoryID: &category.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Naquele verão fomos todos para a praia.", result.Transcription)

	stored, err := svc.Get(ctx, user.ID, result.Memory.ID)
	require.NoError(t, err)
	require.Len(t, stored.Records, 1)
	require.NotNil(t, stored.Records[0].Content)
	assert.Equal(t, result.Transcription, *stored.Records[0].Content)
}

func TestProcessSurvivesEnrichmentFailure(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "u@example.com")
	svc := newMemoryService(t, db, &stubAdapter{analyzeErr: errors.New("provider down")})
	ctx := context.Background()

	var category model.Category
	require.NoError(t, db.Where("is_predefined = ?", true).First(&category).Error)

	result, err := svc.Process(ctx, user.ID, ProcessInput{
		Type:       model.RecordTypeText,
		Content:    "um relato que o provedor não analisou",
		CategoryID: &category.ID,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.External))

	// The raw content is durable even though enrichment failed.
	require.NotNil(t, result)
	require.NotNil(t, result.Memory)
	stored, getErr := svc.Get(ctx, user.ID, result.Memory.ID)
	require.NoError(t, getErr)
	assert.Empty(t, stored.Title)
	require.Len(t, stored.Records, 1)
	require.NotNil(t, stored.Records[0].Content)
}

func TestProcessTranscriptionFailure(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "u@example.com")
	svc := newMemoryService(t, db, &stubAdapter{transcribeErr: errors.New("whisper down")})
	ctx := context.Background()

	var category model.Category
	require.NoError(t, db.Where("is_predefined = ?", true).First(&category).Error)

	result, err := svc.Process(ctx, user.ID, ProcessInput{
		Type:       model.RecordTypeAudio,
		AudioData:  []byte{0x01},
		MimeType:   "audio/ogg",
		FileURL:    "http://localhost:8080/uploads/x.ogg",
		CategoryID: &category.ID,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.External))
	require.NotNil(t, result.Memory)
}

func TestProcessForcesQuestionCategory(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "u@example.com")
	svc := newMemoryService(t, db, &stubAdapter{analysis: defaultStubAnalysis()})
	ctx := context.Background()

	// Pick a question with a mapped category and try to steer it elsewhere.
	var question model.Question
	require.NoError(t, db.Where("category_id IS NOT NULL").First(&question).Error)
	var other model.Category
	require.NoError(t, db.Where("is_predefined = ? AND id <> ?", true, *question.CategoryID).First(&other).Error)

	result, err := svc.Process(ctx, user.ID, ProcessInput{
		Type:       model.RecordTypeText,
		Content:    "relato guiado",
		CategoryID: &other.ID,
		QuestionID: &question.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, *question.CategoryID, result.Memory.CategoryID)
}

func TestProcessUnmappedQuestionFallsBackToDefault(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "u@example.com")
	svc := newMemoryService(t, db, &stubAdapter{analysis: defaultStubAnalysis()})
	ctx := context.Background()

	var question model.Question
	require.NoError(t, db.Where("category_id IS NULL").First(&question).Error)
	var defaultCat model.Category
	require.NoError(t, db.Where("name = ?", model.DefaultCategoryName).First(&defaultCat).Error)

	result, err := svc.Process(ctx, user.ID, ProcessInput{
		Type:       model.RecordTypeText,
		Content:    "relato de pergunta sem categoria",
		QuestionID: &question.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, defaultCat.ID, result.Memory.CategoryID)
}

func TestProcessValidation(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "u@example.com")
	svc := newMemoryService(t, db, &stubAdapter{analysis: defaultStubAnalysis()})
	ctx := context.Background()

	_, err := svc.Process(ctx, user.ID, ProcessInput{Type: "video"})
	assert.True(t, apperr.IsKind(err, apperr.Validation))

	_, err = svc.Process(ctx, user.ID, ProcessInput{Type: model.RecordTypeText})
	assert.True(t, apperr.IsKind(err, apperr.Validation))

	var category model.Category
	require.NoError(t, db.Where("is_predefined = ?", true).First(&category).Error)
	_, err = svc.Process(ctx, user.ID, ProcessInput{Type: model.RecordTypePhoto, CategoryID: &category.ID})
	assert.True(t, apperr.IsKind(err, apperr.Validation))

	// Free-form memory without a category.
	_, err = svc.Process(ctx, user.ID, ProcessInput{Type: model.RecordTypeText, Content: "x"})
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}

func TestMemoryOwnership(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	intruder := createTestUser(t, db, "intruder@example.com")
	svc := newMemoryService(t, db, &stubAdapter{analysis: defaultStubAnalysis()})
	ctx := context.Background()

	var category model.Category
	require.NoError(t, db.Where("is_predefined = ?", true).First(&category).Error)
	result, err := svc.Process(ctx, owner.ID, ProcessInput{
		Type:       model.RecordTypeText,
		Content:    "só minha",
		CategoryID: &category.ID,
	})
	require.NoError(t, err)

	_, err = svc.Get(ctx, intruder.ID, result.Memory.ID)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))

	err = svc.Delete(ctx, intruder.ID, result.Memory.ID)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestUpdateMemoryEdits(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "u@example.com")
	svc := newMemoryService(t, db, &stubAdapter{analysis: defaultStubAnalysis()})
	ctx := context.Background()

	var category model.Category
	require.NoError(t, db.Where("is_predefined = ?", true).First(&category).Error)
	result, err := svc.Process(ctx, user.ID, ProcessInput{
		Type:       model.RecordTypeText,
		Content:    "original",
		CategoryID: &category.ID,
	})
	require.NoError(t, err)

	title := "Título revisado"
	updated, err := svc.Update(ctx, user.ID, result.Memory.ID, UpdateInput{
		Title:  &title,
		Themes: []string{"revisão"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Título revisado", updated.Title)
	assert.Equal(t, []string{"revisão"}, updated.Themes)
	// Untouched fields survive.
	assert.Equal(t, result.Memory.Summary, updated.Summary)
}

func TestExtractText(t *testing.T) {
	db := newTestDB(t)
	svc := newMemoryService(t, db, &stubAdapter{extractText: "Carta de 1962..."})
	ctx := context.Background()

	text, err := svc.ExtractText(ctx, []byte{0x01}, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "Carta de 1962...", text)

	_, err = svc.ExtractText(ctx, nil, "image/jpeg")
	assert.True(t, apperr.IsKind(err, apperr.Validation))
}
