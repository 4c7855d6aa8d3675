package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/kanban-board/internal/constants"
	"github.com/yukikurage/kanban-board/internal/database"
	apierrors "github.com/yukikurage/kanban-board/internal/errors"
	"github.com/yukikurage/kanban-board/internal/models"
	"github.com/yukikurage/kanban-board/internal/repository"
	"github.com/yukikurage/kanban-board/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeAssistant returns canned answers and records what it was asked
type fakeAssistant struct {
	parsed    *services.ParsedTask
	subTasks  []string
	ids       []string
	briefing  string
	err       error
	lastTasks []models.Task
}

func (f *fakeAssistant) ParseTask(ctx context.Context, text string) (*services.ParsedTask, error) {
	return f.parsed, f.err
}

func (f *fakeAssistant) GenerateSubTasks(ctx context.Context, title, description string) ([]string, error) {
	return f.subTasks, f.err
}

func (f *fakeAssistant) FilterTasks(ctx context.Context, query string, tasks []models.Task) ([]string, error) {
	f.lastTasks = tasks
	return f.ids, f.err
}

func (f *fakeAssistant) DailyBriefing(ctx context.Context, tasks []models.Task) (string, error) {
	f.lastTasks = tasks
	return f.briefing, f.err
}

type testEnv struct {
	db        *gorm.DB
	workspace *services.Workspace
	router    *gin.Engine
	cookies   []*http.Cookie
}

type envOptions struct {
	password  string
	assistant services.Assistant
	skipLoad  bool
	failOpen  bool
}

func setupTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	manager := database.NewManagerWithDialector(sqlite.Open(filepath.Join(t.TempDir(), "board.db")), nil)
	t.Cleanup(func() {
		manager.Close()
	})

	h, err := manager.Open(ctx, database.LatestVersion())
	require.NoError(t, err)

	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	workspace := services.NewWorkspace(func(ctx context.Context) (*repository.Store, error) {
		if opts.failOpen {
			return nil, apierrors.ErrStoreUnavailable
		}
		h, err := manager.Open(ctx, database.LatestVersion())
		if err != nil {
			return nil, err
		}
		return repository.NewStore(h.DB), nil
	}, services.WithClock(func() time.Time { return now }))
	switch {
	case opts.failOpen:
		require.ErrorIs(t, workspace.Load(ctx), apierrors.ErrStoreUnavailable)
	case !opts.skipLoad:
		require.NoError(t, workspace.Load(ctx))
	}

	authService, err := services.NewAuthService(opts.password)
	require.NoError(t, err)

	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	RegisterRoutes(r, Dependencies{
		Workspace: workspace,
		Auth:      authService,
		Assistant: opts.assistant,
	})

	return &testEnv{
		db:        h.DB,
		workspace: workspace,
		router:    r,
	}
}

func (env *testEnv) do(t *testing.T, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, url, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	for _, c := range env.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		env.cookies = cookies
	}
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode[map[string]any](t, w)
	code, _ := body["code"].(string)
	return code
}
