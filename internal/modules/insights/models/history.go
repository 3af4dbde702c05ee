package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// The four history tables are independent append-only logs. Entries are
// never updated or deleted; ordering is by insertion timestamp.

// ChatExchange is one user question and the assistant summary it produced.
type ChatExchange struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserMessage       string    `gorm:"type:text;not null" json:"user_message"`
	AssistantResponse string    `gorm:"type:text;not null" json:"assistant_response"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ChatExchange) TableName() string {
	return "chat_history"
}

func (e *ChatExchange) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// SubQuestionTrace records one decomposed sub-question and its outcome,
// tagged with the question it was derived from.
type SubQuestionTrace struct {
	ID                  uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OverarchingQuestion string    `gorm:"type:text;not null" json:"overarching_question"`
	SubQuestion         string    `gorm:"type:text;not null" json:"sub_question"`
	SQLResult           string    `gorm:"column:sql_result;type:text" json:"sql_result"`
	Success             bool      `gorm:"not null" json:"success"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (SubQuestionTrace) TableName() string {
	return "sql_queries"
}

func (t *SubQuestionTrace) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// GraphTrace is the flattened title+type trace of one visualization request.
type GraphTrace struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserInputQuestion string    `gorm:"type:text;not null" json:"user_input_question"`
	Queries           string    `gorm:"type:text;not null" json:"queries"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (GraphTrace) TableName() string {
	return "graph_queries"
}

func (t *GraphTrace) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// GraphDigest is the capped, disclaimer-prefixed summary of recent traces.
type GraphDigest struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserInput    string    `gorm:"type:text;not null" json:"user_input"`
	SubQuestions string    `gorm:"type:text;not null" json:"sub_questions"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (GraphDigest) TableName() string {
	return "graph_memory"
}

func (d *GraphDigest) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
