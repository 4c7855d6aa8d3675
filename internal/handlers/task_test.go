package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/kanban-board/internal/dto"
	apierrors "github.com/yukikurage/kanban-board/internal/errors"
	"github.com/yukikurage/kanban-board/internal/models"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	env *testEnv
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	suite.env = setupTestEnv(suite.T(), envOptions{})
}

func (suite *TaskHandlerTestSuite) createTask(body map[string]any) dto.TaskDTO {
	w := suite.env.do(suite.T(), http.MethodPost, "/api/tasks", body)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return decode[dto.TaskDTO](suite.T(), w)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	task := suite.createTask(map[string]any{
		"title":    "Write report",
		"priority": "High",
		"dueDate":  "2024-06-10",
	})

	suite.Equal("Write report", task.Title)
	suite.Equal(models.TaskStatusToDo, task.Status)
	suite.Equal(models.TaskPriorityHigh, task.Priority)
	suite.Require().NotNil(task.DueDate)
	suite.Equal("2024-06-10", *task.DueDate)
	suite.Equal(suite.env.workspace.Projects()[0].ID, task.ProjectID)
	suite.True(task.CreatedAt.Equal(task.UpdatedAt))
}

func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidRequest() {
	w := suite.env.do(suite.T(), http.MethodPost, "/api/tasks", map[string]any{"description": "no title"})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.env.do(suite.T(), http.MethodPost, "/api/tasks", map[string]any{"title": "A", "status": "Blocked"})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal(apierrors.ErrCodeInvalidInput, errorCode(suite.T(), w))

	w = suite.env.do(suite.T(), http.MethodPost, "/api/tasks", map[string]any{"title": "A", "dueDate": "June 10"})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.env.do(suite.T(), http.MethodPost, "/api/tasks", map[string]any{"title": "A", "projectId": "proj-missing"})
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_BindErrorListsFields() {
	w := suite.env.do(suite.T(), http.MethodPost, "/api/tasks", map[string]any{"description": "no title"})
	suite.Require().Equal(http.StatusBadRequest, w.Code)

	var body struct {
		Code    string       `json:"code"`
		Details []FieldError `json:"details"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(apierrors.ErrCodeInvalidInput, body.Code)
	suite.Equal([]FieldError{{Field: "Title", Rule: "required"}}, body.Details)

	w = suite.env.do(suite.T(), http.MethodPost, "/api/tasks", map[string]any{"title": 42})
	suite.Require().Equal(http.StatusBadRequest, w.Code)
	details, _ := decode[map[string]any](suite.T(), w)["details"].(string)
	suite.NotEmpty(details)
}

func (suite *TaskHandlerTestSuite) TestGetTask() {
	task := suite.createTask(map[string]any{"title": "A"})

	w := suite.env.do(suite.T(), http.MethodGet, "/api/tasks/"+task.ID, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal(task.ID, decode[dto.TaskDTO](suite.T(), w).ID)

	w = suite.env.do(suite.T(), http.MethodGet, "/api/tasks/task-missing", nil)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal(apierrors.ErrCodeNotFound, errorCode(suite.T(), w))
}

func (suite *TaskHandlerTestSuite) TestListTasks_OnlyActiveProject() {
	suite.createTask(map[string]any{"title": "first project"})

	w := suite.env.do(suite.T(), http.MethodPost, "/api/projects", map[string]string{"name": "Other"})
	suite.Require().Equal(http.StatusCreated, w.Code)
	suite.createTask(map[string]any{"title": "other project"})

	w = suite.env.do(suite.T(), http.MethodGet, "/api/tasks", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	resp := decode[dto.TaskListResponse](suite.T(), w)
	suite.Require().Len(resp.Tasks, 1)
	suite.Equal("other project", resp.Tasks[0].Title)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_Success() {
	task := suite.createTask(map[string]any{"title": "A", "dueDate": "2024-06-10"})

	w := suite.env.do(suite.T(), http.MethodPatch, "/api/tasks/"+task.ID, map[string]any{
		"title":       "B",
		"description": "more",
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	updated := decode[dto.TaskDTO](suite.T(), w)
	suite.Equal("B", updated.Title)
	suite.Equal("more", updated.Description)
	suite.Require().NotNil(updated.DueDate)
	suite.True(updated.UpdatedAt.After(task.UpdatedAt))
	suite.True(updated.CreatedAt.Equal(task.CreatedAt))
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_ClearDueDate() {
	task := suite.createTask(map[string]any{"title": "A", "dueDate": "2024-06-10"})

	w := suite.env.do(suite.T(), http.MethodPatch, "/api/tasks/"+task.ID, map[string]any{"clearDueDate": true})
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Nil(decode[dto.TaskDTO](suite.T(), w).DueDate)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_ProjectIsImmutable() {
	task := suite.createTask(map[string]any{"title": "A"})

	w := suite.env.do(suite.T(), http.MethodPatch, "/api/tasks/"+task.ID, map[string]any{"projectId": "proj-elsewhere"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateTaskStatus() {
	task := suite.createTask(map[string]any{"title": "A"})

	w := suite.env.do(suite.T(), http.MethodPatch, "/api/tasks/"+task.ID+"/status", map[string]any{"status": "Done"})
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Equal(models.TaskStatusDone, decode[dto.TaskDTO](suite.T(), w).Status)

	w = suite.env.do(suite.T(), http.MethodPatch, "/api/tasks/"+task.ID+"/status", map[string]any{"status": "Archived"})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.env.do(suite.T(), http.MethodPatch, "/api/tasks/task-missing/status", map[string]any{"status": "Done"})
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask() {
	task := suite.createTask(map[string]any{"title": "A"})

	w := suite.env.do(suite.T(), http.MethodDelete, "/api/tasks/"+task.ID, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.env.do(suite.T(), http.MethodDelete, "/api/tasks/"+task.ID, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestGetBoard() {
	suite.createTask(map[string]any{"title": "todo"})
	suite.createTask(map[string]any{"title": "doing", "status": "InProgress"})

	w := suite.env.do(suite.T(), http.MethodGet, "/api/board", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	board := decode[dto.BoardResponse](suite.T(), w)
	suite.Require().Len(board.Columns, 3)
	suite.Equal(models.TaskStatusToDo, board.Columns[0].Status)
	suite.Equal(models.DefaultStatusConfigs()[models.TaskStatusToDo], board.Columns[0].Config)
	suite.Len(board.Columns[0].Tasks, 1)
	suite.Len(board.Columns[1].Tasks, 1)
	suite.NotNil(board.Columns[2].Tasks)
	suite.Empty(board.Columns[2].Tasks)
}

func (suite *TaskHandlerTestSuite) TestListNotifications() {
	suite.createTask(map[string]any{"title": "overdue", "dueDate": "2024-06-09"})
	suite.createTask(map[string]any{"title": "later", "dueDate": "2024-06-12"})
	suite.createTask(map[string]any{"title": "tomorrow", "dueDate": "2024-06-11"})

	w := suite.env.do(suite.T(), http.MethodGet, "/api/notifications", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	resp := decode[map[string][]dto.TaskDTO](suite.T(), w)
	suite.Require().Len(resp["tasks"], 2)
	suite.Equal("overdue", resp["tasks"][0].Title)
	suite.Equal("tomorrow", resp["tasks"][1].Title)
}

func (suite *TaskHandlerTestSuite) TestListQuarantined_Empty() {
	w := suite.env.do(suite.T(), http.MethodGet, "/api/tasks/quarantined", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	resp := decode[map[string][]dto.QuarantinedTaskDTO](suite.T(), w)
	suite.Empty(resp["tasks"])
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
