// Package transport defines the chat API request and response shapes.
package transport

import "insurance_intake_backend/platform/ai/openaichat"

// ChatRequest is the body for POST /chat. The query may be any string,
// including empty; only the thread id is mandatory.
type ChatRequest struct {
	Query    string `json:"query"`
	ThreadID string `json:"thread_id" validate:"required"`
}

// ChatResponse is the reply to a completed conversation turn.
type ChatResponse struct {
	Response  string `json:"response"`
	ThreadID  string `json:"thread_id"`
	Timestamp string `json:"timestamp"`
}

// HistoryResponse is the transcript of a thread.
type HistoryResponse struct {
	ThreadID     string               `json:"thread_id"`
	MessageCount int                  `json:"message_count"`
	Messages     []openaichat.Message `json:"messages"`
}

// DeleteResponse confirms a thread deletion.
type DeleteResponse struct {
	Message string `json:"message"`
}
