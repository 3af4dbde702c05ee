package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/datalens-ai/conversational-analytics-be/internal/core/llm"
	"github.com/datalens-ai/conversational-analytics-be/internal/core/record"
	"github.com/datalens-ai/conversational-analytics-be/internal/modules/insights/models"
)

// queuedProvider plays back scripted responses in call order.
type queuedProvider struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     [][]llm.Message
}

func (p *queuedProvider) GenerateChat(_ context.Context, messages []llm.Message, _ llm.Options) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, messages)
	if p.err != nil {
		return "", p.err
	}
	if len(p.responses) == 0 {
		return "", errors.New("no scripted response left")
	}
	resp := p.responses[0]
	p.responses = p.responses[1:]
	return resp, nil
}

func (p *queuedProvider) GetProviderName() string { return "queued" }

type fakeRunner struct {
	mu        sync.Mutex
	questions []string
	failOn    string
}

func (r *fakeRunner) Answer(_ context.Context, question string) (string, error) {
	r.mu.Lock()
	r.questions = append(r.questions, question)
	r.mu.Unlock()
	if question == r.failOn {
		return "", errors.New("relation does not exist")
	}
	return "answer to " + question, nil
}

type memoryHistory struct {
	mu           sync.Mutex
	chats        []models.ChatExchange
	subQuestions []models.SubQuestionResult
	graphTraces  []models.GraphTrace
	graphDigests []models.GraphDigest
	chatsErr     error
}

func (h *memoryHistory) RecentChats(limit int) ([]models.ChatExchange, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.chatsErr != nil {
		return nil, h.chatsErr
	}
	if len(h.chats) > limit {
		return h.chats[len(h.chats)-limit:], nil
	}
	return h.chats, nil
}

func (h *memoryHistory) AppendChat(userMessage, assistantResponse string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.chats = append(h.chats, models.ChatExchange{
		UserMessage:       userMessage,
		AssistantResponse: assistantResponse,
	})
	return nil
}

func (h *memoryHistory) AppendSubQuestions(_ string, results []models.SubQuestionResult) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subQuestions = append(h.subQuestions, results...)
	return nil
}

func (h *memoryHistory) AppendGraphTrace(question, trace string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.graphTraces = append(h.graphTraces, models.GraphTrace{
		UserInputQuestion: question,
		Queries:           trace,
	})
	return nil
}

func (h *memoryHistory) AppendGraphDigest(question, digest string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.graphDigests = append(h.graphDigests, models.GraphDigest{
		UserInput:    question,
		SubQuestions: digest,
	})
	return nil
}

func (h *memoryHistory) RecentGraphTraces(limit int) ([]models.GraphTrace, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.graphTraces) > limit {
		return h.graphTraces[len(h.graphTraces)-limit:], nil
	}
	return h.graphTraces, nil
}

func (h *memoryHistory) subQuestionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subQuestions)
}

func (h *memoryHistory) chatCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.chats)
}

func TestAnalyze_EmptyMessage(t *testing.T) {
	svc := NewAnalyzeService(llm.NewService(&queuedProvider{}), &fakeRunner{}, &memoryHistory{}, newTestRecorder(t))

	_, err := svc.Analyze(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyMessage)
}

func TestAnalyze_JSONDecomposition(t *testing.T) {
	provider := &queuedProvider{responses: []string{
		`{"questions": ["What was total revenue?", "What was average AOV?"]}`,
		"Revenue was strong and AOV held steady.",
	}}
	runner := &fakeRunner{}
	history := &memoryHistory{}
	svc := NewAnalyzeService(llm.NewService(provider), runner, history, newTestRecorder(t))

	result, err := svc.Analyze(context.Background(), "How is the business doing?")
	require.NoError(t, err)
	require.Equal(t, "Revenue was strong and AOV held steady.", result.Summary)
	require.NotEmpty(t, result.Timestamp)
	require.Equal(t, []string{"What was total revenue?", "What was average AOV?"}, runner.questions)
}

func TestAnalyze_LineFallbackSkipsComments(t *testing.T) {
	provider := &queuedProvider{responses: []string{
		"• What was total revenue?\n" +
			"- What was revenue by region?\n" +
			"* What was revenue by category?\n" +
			"What was the average discount?\n" +
			"# just a comment, not a question\n" +
			"What was CAC overall?\n" +
			"\n" +
			"What was monthly AOV?",
		"Summary of six answers.",
	}}
	runner := &fakeRunner{}
	svc := NewAnalyzeService(llm.NewService(provider), runner, &memoryHistory{}, newTestRecorder(t))

	_, err := svc.Analyze(context.Background(), "Tell me everything")
	require.NoError(t, err)
	require.Len(t, runner.questions, 6)
	require.Equal(t, "What was total revenue?", runner.questions[0])
	require.NotContains(t, runner.questions, "# just a comment, not a question")
}

func TestAnalyze_CapsSubQuestions(t *testing.T) {
	lines := ""
	for i := 0; i < 12; i++ {
		lines += "- question number " + string(rune('a'+i)) + "\n"
	}
	provider := &queuedProvider{responses: []string{lines, "Summary."}}
	runner := &fakeRunner{}
	svc := NewAnalyzeService(llm.NewService(provider), runner, &memoryHistory{}, newTestRecorder(t))

	_, err := svc.Analyze(context.Background(), "Everything, please")
	require.NoError(t, err)
	require.Len(t, runner.questions, 8)
}

func TestAnalyze_SubQuestionErrorIsolated(t *testing.T) {
	provider := &queuedProvider{responses: []string{
		`{"questions": ["good one", "bad one", "another good one"]}`,
		"Summary despite one failure.",
	}}
	runner := &fakeRunner{failOn: "bad one"}
	history := &memoryHistory{}
	recorder := record.NewRecorder(16)
	t.Cleanup(recorder.Close)
	svc := NewAnalyzeService(llm.NewService(provider), runner, history, recorder)

	result, err := svc.Analyze(context.Background(), "Mixed bag")
	require.NoError(t, err)
	require.Equal(t, "Summary despite one failure.", result.Summary)

	require.Eventually(t, func() bool {
		return history.subQuestionCount() == 3
	}, time.Second, 10*time.Millisecond)

	history.mu.Lock()
	defer history.mu.Unlock()
	require.Equal(t, "success", history.subQuestions[0].Status)
	require.Equal(t, "error", history.subQuestions[1].Status)
	require.Contains(t, history.subQuestions[1].Result, "Error: ")
	require.Contains(t, history.subQuestions[1].Result, "relation does not exist")
	require.Equal(t, "success", history.subQuestions[2].Status)
}

func TestAnalyze_PersistsChatExchange(t *testing.T) {
	provider := &queuedProvider{responses: []string{
		`{"questions": ["only one"]}`,
		"The summary.",
	}}
	history := &memoryHistory{}
	recorder := record.NewRecorder(16)
	t.Cleanup(recorder.Close)
	svc := NewAnalyzeService(llm.NewService(provider), &fakeRunner{}, history, recorder)

	_, err := svc.Analyze(context.Background(), "A question")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return history.chatCount() == 1
	}, time.Second, 10*time.Millisecond)

	history.mu.Lock()
	defer history.mu.Unlock()
	require.Equal(t, "A question", history.chats[0].UserMessage)
	require.Equal(t, "The summary.", history.chats[0].AssistantResponse)
}

func TestAnalyze_ReplaysChatMemory(t *testing.T) {
	provider := &queuedProvider{responses: []string{
		`{"questions": ["follow-up"]}`,
		"Follow-up summary.",
	}}
	history := &memoryHistory{chats: []models.ChatExchange{
		{UserMessage: "earlier question", AssistantResponse: "earlier answer"},
	}}
	svc := NewAnalyzeService(llm.NewService(provider), &fakeRunner{}, history, newTestRecorder(t))

	_, err := svc.Analyze(context.Background(), "And now?")
	require.NoError(t, err)

	// First call is decomposition: system, then the replayed exchange, then
	// the new question.
	decomposeCall := provider.calls[0]
	require.Len(t, decomposeCall, 4)
	require.Equal(t, llm.RoleSystem, decomposeCall[0].Role)
	require.Equal(t, "earlier question", decomposeCall[1].Content)
	require.Equal(t, "earlier answer", decomposeCall[2].Content)
	require.Equal(t, "And now?", decomposeCall[3].Content)
}

func TestAnalyze_MemoryReadFailurePropagates(t *testing.T) {
	history := &memoryHistory{chatsErr: errors.New("connection refused")}
	svc := NewAnalyzeService(llm.NewService(&queuedProvider{}), &fakeRunner{}, history, newTestRecorder(t))

	_, err := svc.Analyze(context.Background(), "Anything")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load chat history")
}

func newTestRecorder(t *testing.T) *record.Recorder {
	t.Helper()
	r := record.NewRecorder(16)
	t.Cleanup(r.Close)
	return r
}
