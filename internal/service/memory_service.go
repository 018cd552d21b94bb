package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tecelaria/internal/apperr"
	"tecelaria/internal/enrichment"
	"tecelaria/internal/model"
	"tecelaria/internal/repository"
)

// MemoryService runs the creation/enrichment pipeline and the remaining memory
// CRUD. Content durability beats enrichment completeness: a memory whose AI
// enrichment fails stays persisted un-enriched, and the caller is told so.
type MemoryService struct {
	memories   *repository.MemoryRepository
	categories *CategoryService
	questions  *QuestionService
	adapter    enrichment.Adapter
	logger     *zap.Logger
}

func NewMemoryService(
	memories *repository.MemoryRepository,
	categories *CategoryService,
	questions *QuestionService,
	adapter enrichment.Adapter,
	logger *zap.Logger,
) *MemoryService {
	return &MemoryService{
		memories:   memories,
		categories: categories,
		questions:  questions,
		adapter:    adapter,
		logger:     logger,
	}
}

// ProcessInput is the memory-creation payload after transport decoding.
type ProcessInput struct {
	Type       string
	Content    string // text memories, or OCR text accompanying a file
	AudioData  []byte // decoded audio payload for transcription
	MimeType   string
	FileURL    string
	FileName   string
	CategoryID *uint
	QuestionID *uint
}

// ProcessResult reports what the pipeline produced. Memory is set as soon as
// the draft row is persisted, even when enrichment later fails.
type ProcessResult struct {
	Memory        *model.Memory        `json:"memory"`
	Analysis      *enrichment.Analysis `json:"analysis,omitempty"`
	Transcription string               `json:"transcription,omitempty"`
}

var validRecordTypes = map[string]bool{
	model.RecordTypeAudio:    true,
	model.RecordTypeText:     true,
	model.RecordTypePhoto:    true,
	model.RecordTypeDocument: true,
}

// Process persists the memory with its first record, then enriches it through
// the AI adapter. On adapter failure the persisted result is returned together
// with an External error so the client can offer a retry.
func (s *MemoryService) Process(ctx context.Context, userID uint, input ProcessInput) (*ProcessResult, error) {
	if !validRecordTypes[input.Type] {
		return nil, apperr.Newf(apperr.Validation, "unknown record type %q", input.Type)
	}
	if input.Type == model.RecordTypeText && strings.TrimSpace(input.Content) == "" {
		return nil, apperr.New(apperr.Validation, "text memory requires content")
	}
	if input.Type == model.RecordTypeAudio && len(input.AudioData) == 0 {
		return nil, apperr.New(apperr.Validation, "audio memory requires an audio payload")
	}
	if (input.Type == model.RecordTypePhoto || input.Type == model.RecordTypeDocument) && input.FileURL == "" {
		return nil, apperr.Newf(apperr.Validation, "%s memory requires a file URL", input.Type)
	}

	category, question, err := s.resolveCategory(ctx, userID, input.CategoryID, input.QuestionID)
	if err != nil {
		return nil, err
	}

	memory := &model.Memory{
		UserID:     userID,
		CategoryID: category.ID,
		QuestionID: input.QuestionID,
	}
	record := &model.MemoryRecord{Type: input.Type}
	if strings.TrimSpace(input.Content) != "" {
		content := input.Content
		record.Content = &content
	}
	if input.FileURL != "" {
		url := input.FileURL
		record.FileURL = &url
	}
	if input.FileName != "" {
		name := input.FileName
		record.FileName = &name
	}

	if err := s.memories.CreateWithRecord(ctx, memory, record); err != nil {
		return nil, err
	}
	result := &ProcessResult{Memory: memory}

	text := input.Content
	if input.Type == model.RecordTypeAudio {
		transcription, err := s.adapter.Transcribe(ctx, input.AudioData, input.MimeType)
		if err != nil {
			s.logger.Warn("transcription failed",
				zap.Uint("memory_id", memory.ID),
				zap.Error(err))
			return result, apperr.Wrap(apperr.External, "enrichment failed", err)
		}
		result.Transcription = transcription
		record.Content = &transcription
		if err := s.memories.UpdateRecordContent(ctx, record); err != nil {
			return result, err
		}
		text = transcription
	}

	if strings.TrimSpace(text) == "" {
		// Nothing to analyze (e.g. photo without extracted text).
		return result, nil
	}

	hints := enrichment.Context{CategoryName: category.Name}
	if question != nil {
		hints.QuestionText = question.Text
	}
	analysis, err := s.adapter.Analyze(ctx, text, hints)
	if err != nil {
		s.logger.Warn("analysis failed",
			zap.Uint("memory_id", memory.ID),
			zap.Error(err))
		return result, apperr.Wrap(apperr.External, "enrichment failed", err)
	}

	memory.Title = analysis.Title
	memory.Summary = analysis.Summary
	memory.Themes = analysis.Themes
	memory.PeopleMentioned = analysis.PeopleMentioned
	memory.PeriodMentioned = analysis.PeriodMentioned
	if err := s.memories.UpdateEnrichment(ctx, memory); err != nil {
		return result, err
	}

	result.Analysis = analysis
	return result, nil
}

// resolveCategory applies the pre-selection rule: a question with a mapped
// category forces it; a question without one falls back to the default
// category; a free-form memory uses the caller's category.
func (s *MemoryService) resolveCategory(ctx context.Context, userID uint, categoryID, questionID *uint) (*model.Category, *model.Question, error) {
	if questionID != nil {
		question, err := s.questions.Get(ctx, *questionID)
		if err != nil {
			return nil, nil, err
		}
		if question.CategoryID != nil {
			category, err := s.categories.Resolve(ctx, userID, *question.CategoryID)
			if err != nil {
				return nil, nil, err
			}
			return category, question, nil
		}
		if categoryID != nil {
			category, err := s.categories.Resolve(ctx, userID, *categoryID)
			if err != nil {
				return nil, nil, err
			}
			return category, question, nil
		}
		category, err := s.categories.Default(ctx)
		if err != nil {
			return nil, nil, err
		}
		return category, question, nil
	}

	if categoryID == nil {
		return nil, nil, apperr.New(apperr.Validation, "category is required for free-form memories")
	}
	category, err := s.categories.Resolve(ctx, userID, *categoryID)
	if err != nil {
		return nil, nil, err
	}
	return category, nil, nil
}

// List returns the user's memories, optionally filtered by category.
func (s *MemoryService) List(ctx context.Context, userID uint, categoryID *uint) ([]model.Memory, error) {
	return s.memories.ListByUser(ctx, userID, categoryID)
}

// Get loads one memory owned by the user.
func (s *MemoryService) Get(ctx context.Context, userID, memoryID uint) (*model.Memory, error) {
	memory, err := s.memories.FindByID(ctx, userID, memoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "memory not found")
		}
		return nil, err
	}
	return memory, nil
}

// UpdateInput carries user edits to the enriched fields.
type UpdateInput struct {
	Title           *string
	Summary         *string
	Themes          []string
	PeopleMentioned []string
	PeriodMentioned *string
	CategoryID      *uint
}

// Update applies manual edits. Owner-only; collaborators edit through their own
// session and the same last-write-wins semantics.
func (s *MemoryService) Update(ctx context.Context, userID, memoryID uint, input UpdateInput) (*model.Memory, error) {
	memory, err := s.Get(ctx, userID, memoryID)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		memory.Title = *input.Title
	}
	if input.Summary != nil {
		memory.Summary = *input.Summary
	}
	if input.Themes != nil {
		memory.Themes = input.Themes
	}
	if input.PeopleMentioned != nil {
		memory.PeopleMentioned = input.PeopleMentioned
	}
	if input.PeriodMentioned != nil {
		memory.PeriodMentioned = input.PeriodMentioned
	}
	if input.CategoryID != nil {
		category, err := s.categories.Resolve(ctx, userID, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		memory.CategoryID = category.ID
	}
	if err := s.memories.Update(ctx, memory); err != nil {
		return nil, err
	}
	return memory, nil
}

// Delete removes the memory and its records; a linked question becomes
// unanswered again because answered status is derived from this table.
func (s *MemoryService) Delete(ctx context.Context, userID, memoryID uint) error {
	if err := s.memories.Delete(ctx, userID, memoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "memory not found")
		}
		return err
	}
	return nil
}

// ExtractText runs OCR over an uploaded image through the AI adapter.
func (s *MemoryService) ExtractText(ctx context.Context, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", apperr.New(apperr.Validation, "empty image payload")
	}
	text, err := s.adapter.ExtractText(ctx, image, mimeType)
	if err != nil {
		s.logger.Warn("text extraction failed", zap.Error(err))
		return "", apperr.Wrap(apperr.External, "enrichment failed", err)
	}
	return text, nil
}
