package dto

import "time"

type QueryRequest struct {
	Question       string `json:"question" validate:"required,notblank,max=4000"`
	ConversationId string `json:"conversationId" validate:"omitempty,uuid"`
}

// QueryResponse is the body of every /query outcome. Citation fields are
// null when the answer is not backed by an excerpt.
type QueryResponse struct {
	ConversationId   string   `json:"conversationId"`
	ConversationName string   `json:"conversationName"`
	Intent           string   `json:"intent"`
	Title            *string  `json:"title"`
	Year             *string  `json:"year"`
	PageNumber       *string  `json:"pageNumber"`
	Summary          string   `json:"summary"`
	OriginalText     *string  `json:"originalText"`
	PdfUrl           *string  `json:"pdfUrl"`
	MatchScore       *float64 `json:"matchScore"`
}

type CitationResponse struct {
	Title      string `json:"title"`
	Year       string `json:"year"`
	PageNumber string `json:"pageNumber"`
	PdfUrl     string `json:"pdfUrl"`
}

type TurnResponse struct {
	Question   string            `json:"question"`
	Intent     string            `json:"intent"`
	AnswerText string            `json:"answerText"`
	Citation   *CitationResponse `json:"citation"`
	MatchScore *float64          `json:"matchScore"`
	CreatedAt  time.Time         `json:"createdAt"`
}

type ConversationResponse struct {
	Id        string         `json:"id"`
	Name      string         `json:"name"`
	CreatedAt time.Time      `json:"createdAt"`
	Turns     []TurnResponse `json:"turns"`
}
