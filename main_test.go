package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"art-seeder/config"
	"art-seeder/models"
	"art-seeder/services"
)

// emptyCatalog liefert keine Datensätze; gate blockiert die Anmeldung bis zum Schließen.
type emptyCatalog struct{ gate chan struct{} }

func (c emptyCatalog) Authenticate(ctx context.Context) error {
	if c.gate != nil {
		<-c.gate
	}
	return nil
}
func (emptyCatalog) FetchArtworks(context.Context, int) ([]models.SourceArtwork, error) {
	return nil, nil
}
func (emptyCatalog) FetchArtistsFor(context.Context, models.SourceArtwork) ([]models.SourceArtist, error) {
	return nil, nil
}
func (emptyCatalog) FetchEvents(context.Context, int, string) ([]models.SourceEvent, error) {
	return nil, nil
}
func (emptyCatalog) Name() string { return "empty" }

type nopPlatform struct{}

func (nopPlatform) Login(context.Context) error { return nil }
func (nopPlatform) CreateUser(context.Context, models.TargetUser) (string, error) {
	return "u", nil
}
func (nopPlatform) CreatePublication(context.Context, models.TargetPublication) (string, error) {
	return "p", nil
}
func (nopPlatform) CreateCreationLink(context.Context, models.CreationLink) error { return nil }
func (nopPlatform) BulkSetFollows(context.Context, []models.SocialEdge) error { return nil }
func (nopPlatform) BulkCreateLikes(context.Context, []models.SocialEdge) error { return nil }
func (nopPlatform) BulkCreateComments(context.Context, []models.SocialEdge) error { return nil }
func (nopPlatform) CreateCollabRequest(context.Context, models.CollabRequest) error { return nil }
func (nopPlatform) CreateUpgradeRequest(context.Context, models.UpgradeRequest) error { return nil }

func newTestRouter(t *testing.T, cfg *config.Config, catalog emptyCatalog) (*gin.Engine, *services.Runner) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	svc := services.NewMigrationService(catalog, nopPlatform{}, services.NewFieldNormalizer(logger, services.NormalizerOptions{}),
		services.MigrationOptions{Seed: 1}, logger)
	runner := services.NewRunner(svc, logger)

	router := gin.New()
	router.Use(apiKeyAuthMiddleware(cfg))
	setupRunRoutes(context.Background(), router, runner, nil, logger)
	return router, runner
}

func do(router *gin.Engine, method, path, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if apiKey != "" {
		req.Header.Set("X-API-KEY", apiKey)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAPIKeyMiddleware(t *testing.T) {
	router, _ := newTestRouter(t, &config.Config{APISecretKey: "secret"}, emptyCatalog{})

	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodGet, "/runs", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodGet, "/runs", "wrong").Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/runs", "secret").Code)
}

func TestRunRoutes_StartConflictAndGet(t *testing.T) {
	gate := make(chan struct{})
	router, runner := newTestRouter(t, &config.Config{}, emptyCatalog{gate: gate})

	w := do(router, http.MethodPost, "/runs", "")
	require.Equal(t, http.StatusAccepted, w.Code)
	var started struct {
		RunID string `json:"run_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &started))
	require.NotEmpty(t, started.RunID)

	assert.Equal(t, http.StatusConflict, do(router, http.MethodPost, "/runs", "").Code)

	w = do(router, http.MethodGet, "/runs/"+started.RunID, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"running"`)

	close(gate)
	runner.Wait()

	w = do(router, http.MethodGet, "/runs/"+started.RunID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var report services.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, services.RunSucceeded, report.Status)

	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, "/runs/not-a-run", "").Code)
}
