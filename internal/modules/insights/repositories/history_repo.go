package repositories

import (
	"gorm.io/gorm"

	"github.com/datalens-ai/conversational-analytics-be/internal/modules/insights/models"
)

// HistoryRepo is the conversation memory store: bounded recent windows out,
// durable appends in. The three logs share this contract but never
// cross-reference each other.
type HistoryRepo interface {
	RecentChats(limit int) ([]models.ChatExchange, error)
	AppendChat(userMessage, assistantResponse string) error
	AppendSubQuestions(question string, results []models.SubQuestionResult) error
	AppendGraphTrace(question, trace string) error
	AppendGraphDigest(question, digest string) error
	RecentGraphTraces(limit int) ([]models.GraphTrace, error)
}

type historyRepo struct {
	db *gorm.DB
}

func NewHistoryRepo(db *gorm.DB) HistoryRepo {
	return &historyRepo{db: db}
}

// EnsureHistoryTables creates the history tables if they don't exist.
func EnsureHistoryTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.ChatExchange{},
		&models.SubQuestionTrace{},
		&models.GraphTrace{},
		&models.GraphDigest{},
	)
}

const subQuestionResultCap = 2000

// RecentChats returns the most recent N exchanges in chronological order
// (oldest first), which is how they are replayed into the message context.
func (r *historyRepo) RecentChats(limit int) ([]models.ChatExchange, error) {
	var rows []models.ChatExchange
	err := r.db.Order("created_at DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return chronological(rows), nil
}

func (r *historyRepo) AppendChat(userMessage, assistantResponse string) error {
	return r.db.Create(&models.ChatExchange{
		UserMessage:       userMessage,
		AssistantResponse: assistantResponse,
	}).Error
}

func (r *historyRepo) AppendSubQuestions(question string, results []models.SubQuestionResult) error {
	for _, res := range results {
		trace := models.SubQuestionTrace{
			OverarchingQuestion: question,
			SubQuestion:         res.Question,
			SQLResult:           truncate(res.Result, subQuestionResultCap),
			Success:             res.Status == "success",
		}
		if err := r.db.Create(&trace).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *historyRepo) AppendGraphTrace(question, trace string) error {
	return r.db.Create(&models.GraphTrace{
		UserInputQuestion: question,
		Queries:           trace,
	}).Error
}

func (r *historyRepo) AppendGraphDigest(question, digest string) error {
	return r.db.Create(&models.GraphDigest{
		UserInput:    question,
		SubQuestions: digest,
	}).Error
}

func (r *historyRepo) RecentGraphTraces(limit int) ([]models.GraphTrace, error) {
	var rows []models.GraphTrace
	err := r.db.Order("created_at DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]models.GraphTrace, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = row
	}
	return out, nil
}

func chronological(rows []models.ChatExchange) []models.ChatExchange {
	out := make([]models.ChatExchange, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = row
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
