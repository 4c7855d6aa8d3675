package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/kanban-board/internal/dto"
	apierrors "github.com/yukikurage/kanban-board/internal/errors"
	"github.com/yukikurage/kanban-board/internal/models"
)

func TestProjectHandler_ListIncludesInitialProject(t *testing.T) {
	env := setupTestEnv(t, envOptions{})

	w := env.do(t, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[dto.ProjectListResponse](t, w)
	require.Len(t, resp.Projects, 1)
	assert.True(t, resp.Projects[0].Active)
	assert.Equal(t, resp.Projects[0].ID, resp.ActiveProjectID)
}

func TestProjectHandler_CreateBecomesActive(t *testing.T) {
	env := setupTestEnv(t, envOptions{})

	w := env.do(t, http.MethodPost, "/api/projects", map[string]string{"name": "Launch"})
	require.Equal(t, http.StatusCreated, w.Code)

	created := decode[dto.ProjectDTO](t, w)
	assert.Equal(t, "Launch", created.Name)
	assert.True(t, created.Active)

	w = env.do(t, http.MethodGet, "/api/projects", nil)
	resp := decode[dto.ProjectListResponse](t, w)
	assert.Len(t, resp.Projects, 2)
	assert.Equal(t, created.ID, resp.ActiveProjectID)
}

func TestProjectHandler_CreateValidation(t *testing.T) {
	env := setupTestEnv(t, envOptions{})

	w := env.do(t, http.MethodPost, "/api/projects", map[string]string{"name": "   "})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apierrors.ErrCodeInvalidInput, errorCode(t, w))
}

func TestProjectHandler_RenameAndSelect(t *testing.T) {
	env := setupTestEnv(t, envOptions{})
	first := env.workspace.Projects()[0]

	w := env.do(t, http.MethodPost, "/api/projects", map[string]string{"name": "Second"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPatch, "/api/projects/"+first.ID, map[string]string{"name": "Home"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Home", decode[dto.ProjectDTO](t, w).Name)

	w = env.do(t, http.MethodPut, "/api/projects/active", map[string]string{"projectId": first.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, first.ID, decode[dto.ProjectListResponse](t, w).ActiveProjectID)

	w = env.do(t, http.MethodPut, "/api/projects/active", map[string]string{"projectId": "proj-missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPatch, "/api/projects/proj-missing", map[string]string{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectHandler_DeleteCascadesAndReassigns(t *testing.T) {
	env := setupTestEnv(t, envOptions{})
	first := env.workspace.Projects()[0]

	w := env.do(t, http.MethodPost, "/api/projects", map[string]string{"name": "Doomed"})
	require.Equal(t, http.StatusCreated, w.Code)
	doomed := decode[dto.ProjectDTO](t, w)

	w = env.do(t, http.MethodPost, "/api/tasks", map[string]string{"title": "A"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodDelete, "/api/projects/"+doomed.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[dto.ProjectListResponse](t, w)
	require.Len(t, resp.Projects, 1)
	assert.Equal(t, first.ID, resp.ActiveProjectID)

	var count int64
	require.NoError(t, env.db.Model(&models.Task{}).Count(&count).Error)
	assert.Zero(t, count)

	w = env.do(t, http.MethodDelete, "/api/projects/"+doomed.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
