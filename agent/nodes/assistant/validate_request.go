package assistantnode

import (
	"errors"
	"strings"
	"time"

	contractx "github.com/pattadon/foodcourt-agent/agent/contract"
	statex "github.com/pattadon/foodcourt-agent/agent/state"
)

var (
	ErrInvalidSession = errors.New("session id is empty")
	ErrInvalidQuery   = errors.New("query is empty")
)

type GraphInput struct {
	SessionID string
	Query     string
}

type GraphOutput struct {
	Reply string
	Voice string
}

type GraphState struct {
	SessionID string
	Query     string
	Now       time.Time

	Conv        *statex.Conversation
	HistoryText string

	Classification contractx.Classification
	Intent         contractx.Intent

	Output contractx.Output
	Reply  string
	Voice  string
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, ErrInvalidQuery
	}

	return &GraphState{
		SessionID: sessionID,
		Query:     query,
		Now:       nowFn().UTC(),
	}, nil
}
