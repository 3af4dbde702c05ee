package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/datalens-ai/conversational-analytics-be/internal/core/llm"
	"github.com/datalens-ai/conversational-analytics-be/internal/core/nlq"
	"github.com/datalens-ai/conversational-analytics-be/internal/core/record"
	"github.com/datalens-ai/conversational-analytics-be/internal/modules/insights/models"
	"github.com/datalens-ai/conversational-analytics-be/internal/modules/insights/repositories"
)

// AnalyzeService breaks a free-text question into bounded sub-questions,
// delegates each to the text-to-query runner, and condenses the structured
// results into a conversational summary.
type AnalyzeService struct {
	llm      *llm.Service
	runner   nlq.Runner
	history  repositories.HistoryRepo
	recorder *record.Recorder
}

func NewAnalyzeService(llmService *llm.Service, runner nlq.Runner, history repositories.HistoryRepo, recorder *record.Recorder) *AnalyzeService {
	return &AnalyzeService{
		llm:      llmService,
		runner:   runner,
		history:  history,
		recorder: recorder,
	}
}

// AnalyzeResult is the request-level outcome: a summary and its timestamp.
type AnalyzeResult struct {
	Summary   string
	Timestamp string
}

const (
	chatWindowSize  = 5
	maxSubQuestions = 8
	runnerErrorCap  = 200
)

const decomposeSystemPrompt = "You are a data analyst with memory of previous conversation turns. " +
	"Using prior context if relevant, generate 5-8 specific SQL-ready questions " +
	"to answer the user's query. Output ONLY JSON: {\"questions\": [...]}"

const summarySystemPrompt = "You are a helpful data analyst assistant having a conversation. " +
	"Using previous context if relevant, provide a clear, friendly, " +
	"conversational 2-4 sentence summary of the data findings. " +
	"Do not mention SQL or technical details; speak naturally to the user."

func (s *AnalyzeService) Analyze(ctx context.Context, userMessage string) (*AnalyzeResult, error) {
	userMessage = strings.TrimSpace(userMessage)
	if userMessage == "" {
		return nil, ErrEmptyMessage
	}

	memory, err := s.memoryContext()
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	questions, err := s.generateSubQuestions(ctx, memory, userMessage)
	if err != nil {
		return nil, err
	}
	if len(questions) > maxSubQuestions {
		questions = questions[:maxSubQuestions]
	}

	// Run sequentially: each sub-question's error must stay attributable to
	// that sub-question, and a failure never halts the remaining ones.
	results := make([]models.SubQuestionResult, 0, len(questions))
	for i, question := range questions {
		res := models.SubQuestionResult{
			QuestionNumber: i + 1,
			Question:       question,
			Status:         "success",
		}
		answer, err := s.runner.Answer(ctx, question)
		if err != nil {
			res.Result = "Error: " + truncateText(err.Error(), runnerErrorCap)
			res.Status = "error"
		} else {
			res.Result = answer
		}
		results = append(results, res)
	}

	s.recorder.Enqueue("sub-question trace", func() error {
		return s.history.AppendSubQuestions(userMessage, results)
	})

	summary, err := s.summarize(ctx, memory, userMessage, results)
	if err != nil {
		return nil, err
	}

	s.recorder.Enqueue("chat exchange", func() error {
		return s.history.AppendChat(userMessage, summary)
	})

	return &AnalyzeResult{
		Summary:   summary,
		Timestamp: time.Now().Format(time.RFC3339),
	}, nil
}

// memoryContext flattens the most recent exchanges into an ordered
// user/assistant message context, oldest first.
func (s *AnalyzeService) memoryContext() ([]llm.Message, error) {
	exchanges, err := s.history.RecentChats(chatWindowSize)
	if err != nil {
		return nil, err
	}
	messages := make([]llm.Message, 0, len(exchanges)*2)
	for _, e := range exchanges {
		messages = append(messages,
			llm.Message{Role: llm.RoleUser, Content: e.UserMessage},
			llm.Message{Role: llm.RoleAssistant, Content: e.AssistantResponse},
		)
	}
	return messages, nil
}

func (s *AnalyzeService) generateSubQuestions(ctx context.Context, memory []llm.Message, userMessage string) ([]string, error) {
	messages := append([]llm.Message{{Role: llm.RoleSystem, Content: decomposeSystemPrompt}}, memory...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userMessage})

	raw, err := s.llm.GenerateChat(ctx, messages, llm.Options{Temperature: 0.7, MaxTokens: 1000})
	if err != nil {
		return nil, fmt.Errorf("sub-question generation failed: %w", err)
	}

	questions, source := parseSubQuestions(strings.TrimSpace(raw))
	log.Info().Str("parse", source).Int("count", len(questions)).Msg("✅ sub-questions generated")
	return questions, nil
}

// parseSubQuestions tries the strict JSON shape first and falls back to one
// sub-question per non-empty, non-comment line. The decision is made once
// and tagged, never silently re-attempted.
func parseSubQuestions(raw string) ([]string, string) {
	var parsed struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		return parsed.Questions, "json"
	}

	var questions []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimLeft(line, "•-*"))
		if line != "" {
			questions = append(questions, line)
		}
	}
	return questions, "lines"
}

func (s *AnalyzeService) summarize(ctx context.Context, memory []llm.Message, userMessage string, results []models.SubQuestionResult) (string, error) {
	resultsJSON, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize results: %w", err)
	}

	messages := append([]llm.Message{{Role: llm.RoleSystem, Content: summarySystemPrompt}}, memory...)
	messages = append(messages, llm.Message{
		Role: llm.RoleUser,
		Content: fmt.Sprintf("The user asked: %s\n\nData results:\n%s\n\nSummarise the key findings conversationally.",
			userMessage, resultsJSON),
	})

	summary, err := s.llm.GenerateChat(ctx, messages, llm.Options{Temperature: 0.7, MaxTokens: 500})
	if err != nil {
		return "", fmt.Errorf("summary generation failed: %w", err)
	}
	return strings.TrimSpace(summary), nil
}
