package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/kanban-board/internal/constants"
	apierrors "github.com/yukikurage/kanban-board/internal/errors"
	"github.com/yukikurage/kanban-board/internal/models"
)

var (
	ErrEmptyAIInput   = errors.New("assistant input is empty")
	ErrAIInputTooLong = errors.New("assistant input is too long")
)

// Assistant is the AI collaborator used by the board.
type Assistant interface {
	ParseTask(ctx context.Context, text string) (*ParsedTask, error)
	GenerateSubTasks(ctx context.Context, title, description string) ([]string, error)
	FilterTasks(ctx context.Context, query string, tasks []models.Task) ([]string, error)
	DailyBriefing(ctx context.Context, tasks []models.Task) (string, error)
}

// ParsedTask is a task draft extracted from free text. Fields the model could
// not fill with a valid value are left empty.
type ParsedTask struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Priority    *models.TaskPriority `json:"priority,omitempty"`
	DueDate     *string              `json:"dueDate,omitempty"`
}

// AIConfig configures the OpenAI-backed assistant
type AIConfig struct {
	APIKey   string
	Model    string
	BaseURL  string
	Messages Messages
	Now      func() time.Time
}

type AIService struct {
	client   *openai.Client
	model    string
	messages Messages
	now      func() time.Time
}

func NewAIService(cfg AIConfig) *AIService {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}
	messages := cfg.Messages
	if messages == (Messages{}) {
		messages = MessagesFor("")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &AIService{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    model,
		messages: messages,
		now:      now,
	}
}

// ParseTask turns a free-text sentence into a task draft
func (s *AIService) ParseTask(ctx context.Context, text string) (*ParsedTask, error) {
	text, err := checkInput(text)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`You extract a single task from the user's text.

Today is %s.

Text:
%s

Return a JSON object with these fields:
{
  "title": "short task title",
  "description": "details from the text, or an empty string",
  "priority": "Low, Medium or High, or null if the text does not say",
  "dueDate": "due date as YYYY-MM-DD, or null if there is none"
}

Notes:
- Convert relative dates such as "tomorrow" or "next Friday" to concrete dates
- Write the title and description in the language of the text
- Return only the JSON object`, s.today(), text)

	var out struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Priority    *string `json:"priority"`
		DueDate     *string `json:"dueDate"`
	}
	if err := s.completeJSON(ctx, prompt, &out); err != nil {
		return nil, s.fail("parse", s.messages.ParseFailed, err)
	}

	title := strings.TrimSpace(out.Title)
	if title == "" {
		return nil, s.fail("parse", s.messages.ParseFailed, errors.New("response has no title"))
	}

	parsed := &ParsedTask{
		Title:       title,
		Description: strings.TrimSpace(out.Description),
	}
	if out.Priority != nil {
		if p := models.TaskPriority(*out.Priority); p.Valid() {
			parsed.Priority = &p
		}
	}
	if out.DueDate != nil && models.ValidDate(*out.DueDate) {
		due := *out.DueDate
		parsed.DueDate = &due
	}

	return parsed, nil
}

// GenerateSubTasks proposes the steps needed to finish a task
func (s *AIService) GenerateSubTasks(ctx context.Context, title, description string) ([]string, error) {
	title, err := checkInput(title)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`Break the following task into 3 to 7 concrete sub-tasks.

Title: %s
Description: %s

Return a JSON object of the form {"subTasks": ["first step", "second step"]}.
Write the sub-tasks in the language of the task and return only the JSON object.`, title, description)

	var out struct {
		SubTasks []string `json:"subTasks"`
	}
	if err := s.completeJSON(ctx, prompt, &out); err != nil {
		return nil, s.fail("subtasks", s.messages.SubTasksFailed, err)
	}

	subTasks := make([]string, 0, len(out.SubTasks))
	for _, st := range out.SubTasks {
		if st = strings.TrimSpace(st); st != "" {
			subTasks = append(subTasks, st)
		}
	}
	return subTasks, nil
}

type taskDigest struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *string             `json:"dueDate,omitempty"`
}

func digest(tasks []models.Task) []taskDigest {
	out := make([]taskDigest, len(tasks))
	for i, t := range tasks {
		out[i] = taskDigest{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Status:      t.Status,
			Priority:    t.Priority,
			DueDate:     t.DueDate,
		}
	}
	return out
}

// FilterTasks returns the ids of the tasks matching a natural-language query.
// Ids the model invents are dropped. With no tasks there is nothing to ask.
func (s *AIService) FilterTasks(ctx context.Context, query string, tasks []models.Task) ([]string, error) {
	query, err := checkInput(query)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return []string{}, nil
	}

	payload, err := json.Marshal(digest(tasks))
	if err != nil {
		return nil, fmt.Errorf("failed to encode tasks: %w", err)
	}

	prompt := fmt.Sprintf(`You filter a task list by a search query.

Today is %s.

Query:
%s

Tasks (JSON):
%s

Return a JSON object of the form {"matchingTaskIds": ["task-1"]} listing the ids of
every task that matches the query. Return {"matchingTaskIds": []} if none match.
Return only the JSON object.`, s.today(), query, payload)

	var out struct {
		MatchingTaskIDs []string `json:"matchingTaskIds"`
	}
	if err := s.completeJSON(ctx, prompt, &out); err != nil {
		return nil, s.fail("search", s.messages.SearchFailed, err)
	}

	known := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		known[t.ID] = true
	}
	ids := make([]string, 0, len(out.MatchingTaskIDs))
	for _, id := range out.MatchingTaskIDs {
		if known[id] {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// DailyBriefing summarizes what deserves attention today
func (s *AIService) DailyBriefing(ctx context.Context, tasks []models.Task) (string, error) {
	if len(tasks) == 0 {
		return "", ErrEmptyAIInput
	}

	payload, err := json.Marshal(digest(tasks))
	if err != nil {
		return "", fmt.Errorf("failed to encode tasks: %w", err)
	}

	prompt := fmt.Sprintf(`You are a productivity assistant. Write a short, encouraging daily briefing
for the user based on their tasks.

Today is %s.

Tasks (JSON):
%s

Mention overdue work and what is due today first, then suggest what to focus on.
Keep it under 150 words, use plain text without markdown, and write it in %s.`, s.today(), payload, s.messages.BriefingLanguage)

	briefing, err := s.complete(ctx, prompt, false)
	if err != nil {
		return "", s.fail("briefing", s.messages.BriefingFailed, err)
	}

	briefing = strings.TrimSpace(briefing)
	if briefing == "" {
		return "", s.fail("briefing", s.messages.BriefingFailed, errors.New("empty response"))
	}
	return briefing, nil
}

func (s *AIService) completeJSON(ctx context.Context, prompt string, dest any) error {
	content, err := s.complete(ctx, prompt, true)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(content), dest); err != nil {
		return fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}
	return nil
}

func (s *AIService) complete(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.3,
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}

func (s *AIService) fail(op, message string, err error) error {
	log.Printf("Assistant %s failed: %v", op, err)
	return &apierrors.AIServiceError{Op: op, Message: message, Err: err}
}

func (s *AIService) today() string {
	return s.now().Format(models.DateLayout)
}

func checkInput(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyAIInput
	}
	if len([]rune(text)) > constants.MaxAITextLength {
		return "", ErrAIInputTooLong
	}
	return text, nil
}
