package assistantnode

import (
	"context"
	"errors"
	"fmt"

	statex "github.com/pattadon/foodcourt-agent/agent/state"
)

// LoadSession loads the conversation record or creates a fresh one on
// first contact.
func LoadSession(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	conv, err := store.Load(ctx, in.SessionID)
	if err != nil {
		if !errors.Is(err, statex.ErrConversationNotFound) {
			return nil, fmt.Errorf("load conversation: %w", err)
		}
		conv = statex.NewConversation(in.SessionID, in.Now)
	}

	in.Conv = conv
	return in, nil
}
