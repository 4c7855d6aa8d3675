package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/kanban-board/internal/config"
	apierrors "github.com/yukikurage/kanban-board/internal/errors"
	"github.com/yukikurage/kanban-board/internal/models"
)

// fakeOpenAI answers chat completions with a canned reply and records the
// requests it received.
type fakeOpenAI struct {
	mu       sync.Mutex
	reply    string
	status   int
	requests []openai.ChatCompletionRequest
}

func (f *fakeOpenAI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req openai.ChatCompletionRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	f.requests = append(f.requests, req)
	status, reply := f.status, f.reply
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 && status != http.StatusOK {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "upstream exploded", "type": "server_error"},
		})
		return
	}

	_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
		ID:      "chatcmpl-test",
		Object:  "chat.completion",
		Created: 1718000000,
		Model:   req.Model,
		Choices: []openai.ChatCompletionChoice{
			{
				Index:        0,
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply},
				FinishReason: openai.FinishReasonStop,
			},
		},
	})
}

func (f *fakeOpenAI) calls() []openai.ChatCompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]openai.ChatCompletionRequest(nil), f.requests...)
}

func newTestAI(t *testing.T, reply string) (*AIService, *fakeOpenAI) {
	t.Helper()
	fake := &fakeOpenAI{reply: reply}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	svc := NewAIService(AIConfig{
		APIKey:  "test-key",
		Model:   "test-model",
		BaseURL: server.URL + "/v1",
		Now:     func() time.Time { return time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC) },
	})
	return svc, fake
}

func TestAIService_ParseTask(t *testing.T) {
	svc, fake := newTestAI(t, `{"title":"Call the dentist","description":"book a cleaning","priority":"High","dueDate":"2024-06-11"}`)

	parsed, err := svc.ParseTask(context.Background(), "call the dentist tomorrow, urgent")
	require.NoError(t, err)

	assert.Equal(t, "Call the dentist", parsed.Title)
	assert.Equal(t, "book a cleaning", parsed.Description)
	require.NotNil(t, parsed.Priority)
	assert.Equal(t, models.TaskPriorityHigh, *parsed.Priority)
	require.NotNil(t, parsed.DueDate)
	assert.Equal(t, "2024-06-11", *parsed.DueDate)

	calls := fake.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "test-model", calls[0].Model)
	require.NotNil(t, calls[0].ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, calls[0].ResponseFormat.Type)
	assert.Contains(t, calls[0].Messages[0].Content, "Today is 2024-06-10")
}

func TestAIService_ParseTask_DropsInvalidFields(t *testing.T) {
	svc, _ := newTestAI(t, `{"title":"Gym","description":"","priority":"Critical","dueDate":"next week"}`)

	parsed, err := svc.ParseTask(context.Background(), "gym")
	require.NoError(t, err)
	assert.Equal(t, "Gym", parsed.Title)
	assert.Nil(t, parsed.Priority)
	assert.Nil(t, parsed.DueDate)
}

func TestAIService_ParseTask_MissingTitle(t *testing.T) {
	svc, _ := newTestAI(t, `{"title":"  "}`)

	_, err := svc.ParseTask(context.Background(), "something")
	assert.ErrorIs(t, err, apierrors.ErrAIService)
}

func TestAIService_EmptyInputNeverCallsModel(t *testing.T) {
	svc, fake := newTestAI(t, `{}`)
	ctx := context.Background()

	_, err := svc.ParseTask(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyAIInput)
	_, err = svc.GenerateSubTasks(ctx, "", "desc")
	assert.ErrorIs(t, err, ErrEmptyAIInput)
	_, err = svc.FilterTasks(ctx, "", []models.Task{{ID: "task-1"}})
	assert.ErrorIs(t, err, ErrEmptyAIInput)
	_, err = svc.DailyBriefing(ctx, nil)
	assert.ErrorIs(t, err, ErrEmptyAIInput)
	_, err = svc.ParseTask(ctx, strings.Repeat("a", 4001))
	assert.ErrorIs(t, err, ErrAIInputTooLong)

	assert.Empty(t, fake.calls())
}

func TestAIService_GenerateSubTasks(t *testing.T) {
	svc, _ := newTestAI(t, `{"subTasks":["Pick a venue"," ","Send invites"]}`)

	subTasks, err := svc.GenerateSubTasks(context.Background(), "Plan party", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pick a venue", "Send invites"}, subTasks)
}

func TestAIService_FilterTasks(t *testing.T) {
	svc, fake := newTestAI(t, `{"matchingTaskIds":["task-2","task-invented"]}`)
	tasks := []models.Task{
		{ID: "task-1", Title: "Buy milk", Status: models.TaskStatusToDo, Priority: models.TaskPriorityLow},
		{ID: "task-2", Title: "Fix bug", Status: models.TaskStatusInProgress, Priority: models.TaskPriorityHigh},
	}

	ids, err := svc.FilterTasks(context.Background(), "urgent work", tasks)
	require.NoError(t, err)
	assert.Equal(t, []string{"task-2"}, ids)

	calls := fake.calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Messages[0].Content, `"id":"task-1"`)
}

func TestAIService_FilterTasks_EmptyListSkipsCall(t *testing.T) {
	svc, fake := newTestAI(t, `{}`)

	ids, err := svc.FilterTasks(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
	assert.Empty(t, fake.calls())
}

func TestAIService_DailyBriefing(t *testing.T) {
	svc, fake := newTestAI(t, "  Focus on the report today.  ")

	briefing, err := svc.DailyBriefing(context.Background(), []models.Task{{ID: "task-1", Title: "Report"}})
	require.NoError(t, err)
	assert.Equal(t, "Focus on the report today.", briefing)

	calls := fake.calls()
	require.Len(t, calls, 1)
	assert.Nil(t, calls[0].ResponseFormat)
}

func TestAIService_UpstreamFailure(t *testing.T) {
	svc, fake := newTestAI(t, "")
	fake.status = http.StatusInternalServerError

	_, err := svc.GenerateSubTasks(context.Background(), "Plan party", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrAIService)

	var aiErr *apierrors.AIServiceError
	require.ErrorAs(t, err, &aiErr)
	assert.Equal(t, "subtasks", aiErr.Op)
	assert.Equal(t, MessagesFor(config.LocaleEnglish).SubTasksFailed, aiErr.Message)
}

func TestAIService_MalformedJSON(t *testing.T) {
	svc, _ := newTestAI(t, "not json")

	_, err := svc.FilterTasks(context.Background(), "q", []models.Task{{ID: "task-1"}})
	assert.ErrorIs(t, err, apierrors.ErrAIService)
}

func TestAIService_LocalizedFailure(t *testing.T) {
	fake := &fakeOpenAI{status: http.StatusBadGateway}
	server := httptest.NewServer(fake)
	defer server.Close()

	svc := NewAIService(AIConfig{
		APIKey:   "test-key",
		BaseURL:  server.URL + "/v1",
		Messages: MessagesFor(config.LocaleArabic),
	})

	_, err := svc.ParseTask(context.Background(), "مهمة")
	var aiErr *apierrors.AIServiceError
	require.ErrorAs(t, err, &aiErr)
	assert.Equal(t, MessagesFor(config.LocaleArabic).ParseFailed, aiErr.Message)
}

func TestMessagesFor_FallsBackToEnglish(t *testing.T) {
	assert.Equal(t, MessagesFor(config.LocaleEnglish), MessagesFor("fr"))
}
