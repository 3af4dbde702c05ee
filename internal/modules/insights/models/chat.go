package models

// SubQuestionResult is the transient outcome of one decomposed sub-question.
// A failed sub-question is recorded here and never aborts its siblings.
type SubQuestionResult struct {
	QuestionNumber int    `json:"question_number"`
	Question       string `json:"question"`
	Result         string `json:"result"`
	Status         string `json:"status"` // success or error
}
