package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tecelaria/internal/enrichment"
	"tecelaria/internal/repository"
	"tecelaria/internal/service"
	"tecelaria/internal/storage"
)

type fakeAdapter struct {
	fail bool
}

func (a *fakeAdapter) Transcribe(context.Context, []byte, string) (string, error) {
	if a.fail {
		return "", errors.New("provider down")
	}
	return "transcrição de teste", nil
}

func (a *fakeAdapter) Analyze(context.Context, string, enrichment.Context) (*enrichment.Analysis, error) {
	if a.fail {
		return nil, errors.New("provider down")
	}
	return &enrichment.Analysis{
		Title:           "Título",
		Summary:         "Resumo",
		Themes:          []string{"tema"},
		PeopleMentioned: []string{},
	}, nil
}

func (a *fakeAdapter) ExtractText(context.Context, []byte, string) (string, error) {
	if a.fail {
		return "", errors.New("provider down")
	}
	return "texto extraído", nil
}

func newTestRouter(t *testing.T, adapter enrichment.Adapter) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	files, err := storage.NewFileStore(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	logger := zap.NewNop()
	userRepo := repository.NewUserRepository(db)
	categorySvc := service.NewCategoryService(repository.NewCategoryRepository(db))
	questionSvc := service.NewQuestionService(repository.NewQuestionRepository(db))
	memoryRepo := repository.NewMemoryRepository(db)
	memorySvc := service.NewMemoryService(memoryRepo, categorySvc, questionSvc, adapter, logger)
	kitSvc := service.NewKitService(repository.NewKitRepository(db), userRepo)
	dashboardSvc := service.NewDashboardService(kitSvc, questionSvc, memoryRepo)
	authSvc := service.NewAuthService(userRepo, "test-secret", time.Hour)

	srv := New(authSvc, categorySvc, questionSvc, memorySvc, kitSvc, dashboardSvc, files, logger)
	return srv.Router(), db
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func signupAndLogin(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"email":    email,
		"password": "segredo-forte",
		"name":     "Teste",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    email,
		"password": "segredo-forte",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	router, _ := newTestRouter(t, &fakeAdapter{})

	for _, path := range []string{
		"/api/v1/user/profile",
		"/api/v1/memories",
		"/api/v1/questions",
		"/api/v1/kits",
	} {
		rec := doJSON(t, router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/v1/user/profile", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignupLoginSession(t *testing.T) {
	router, _ := newTestRouter(t, &fakeAdapter{})
	token := signupAndLogin(t, router, "maria@example.com")

	rec := doJSON(t, router, http.MethodGet, "/api/v1/auth/session", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "maria@example.com")
	// The hash never leaks.
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestSignupDuplicateEmailHTTP(t *testing.T) {
	router, _ := newTestRouter(t, &fakeAdapter{})
	signupAndLogin(t, router, "dup@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"email":    "dup@example.com",
		"password": "segredo-forte",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestProcessMemoryHTTP(t *testing.T) {
	router, _ := newTestRouter(t, &fakeAdapter{})
	token := signupAndLogin(t, router, "u@example.com")

	// Grab a category id from the catalog endpoint.
	rec := doJSON(t, router, http.MethodGet, "/api/v1/memories/categories", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var catResp struct {
		Categories []struct {
			ID uint `json:"ID"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &catResp))
	require.NotEmpty(t, catResp.Categories)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/memories/process", token, gin.H{
		"type":        "text",
		"content":     "Minha primeira memória de teste.",
		"category_id": catResp.Categories[0].ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Título")
}

func TestProcessMemoryEnrichmentFailureHTTP(t *testing.T) {
	router, db := newTestRouter(t, &fakeAdapter{fail: true})
	token := signupAndLogin(t, router, "u@example.com")

	rec := doJSON(t, router, http.MethodGet, "/api/v1/memories/categories", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var catResp struct {
		Categories []struct {
			ID uint `json:"ID"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &catResp))

	rec = doJSON(t, router, http.MethodPost, "/api/v1/memories/process", token, gin.H{
		"type":        "text",
		"content":     "conteúdo durável",
		"category_id": catResp.Categories[0].ID,
	})
	require.Equal(t, http.StatusBadGateway, rec.Code, rec.Body.String())

	var resp struct {
		Error    string `json:"error"`
		MemoryID uint   `json:"memory_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "external_service_failure", resp.Error)
	require.NotZero(t, resp.MemoryID)

	// The raw memory row survived.
	var count int64
	require.NoError(t, db.Table("memories").Where("id = ?", resp.MemoryID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestQuestionEndpointsHTTP(t *testing.T) {
	router, _ := newTestRouter(t, &fakeAdapter{})
	token := signupAndLogin(t, router, "u@example.com")

	rec := doJSON(t, router, http.MethodGet, "/api/v1/questions/progress", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var progressResp struct {
		Progress []struct {
			Box            int `json:"box"`
			TotalQuestions int `json:"total_questions"`
		} `json:"progress"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &progressResp))
	require.Len(t, progressResp.Progress, 4)
	assert.Equal(t, 15, progressResp.Progress[0].TotalQuestions)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/questions/random?box=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"question":null`)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/questions/random?box=9", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKitMembershipHTTP(t *testing.T) {
	router, _ := newTestRouter(t, &fakeAdapter{})
	ownerToken := signupAndLogin(t, router, "owner@example.com")
	signupAndLogin(t, router, "friend@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/kits", ownerToken, gin.H{
		"name": "Kit da Família",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var kitResp struct {
		Kit struct {
			ID uint `json:"ID"`
		} `json:"kit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &kitResp))

	memberPath := fmt.Sprintf("/api/v1/kits/%d/members", kitResp.Kit.ID)
	rec = doJSON(t, router, http.MethodPost, memberPath, ownerToken, gin.H{
		"email": "friend@example.com",
		"role":  "collaborator",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Second invite of the same member conflicts.
	rec = doJSON(t, router, http.MethodPost, memberPath, ownerToken, gin.H{
		"email": "friend@example.com",
		"role":  "viewer",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestActivateOwnKitHTTP(t *testing.T) {
	router, _ := newTestRouter(t, &fakeAdapter{})
	token := signupAndLogin(t, router, "owner@example.com")

	// No kit yet.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/user/kit/activate", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/kits", token, gin.H{"name": "Meu Kit"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/user/kit/activate", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Re-activation conflicts and keeps the clock.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/user/kit/activate", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUploadHTTP(t *testing.T) {
	router, _ := newTestRouter(t, &fakeAdapter{})
	token := signupAndLogin(t, router, "u@example.com")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/memories/upload", token, gin.H{
		"data_base64":  "b2zDoSBtdW5kbw==",
		"content_type": "text/plain",
		"file_name":    "nota.txt",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "/uploads/")

	rec = doJSON(t, router, http.MethodPost, "/api/v1/memories/upload", token, gin.H{
		"data_base64":  "####",
		"content_type": "text/plain",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardHTTP(t *testing.T) {
	router, _ := newTestRouter(t, &fakeAdapter{})
	token := signupAndLogin(t, router, "u@example.com")

	rec := doJSON(t, router, http.MethodGet, "/api/v1/user/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "total_memories")
	assert.Contains(t, rec.Body.String(), "progress")
}
