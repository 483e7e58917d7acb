package assistantnode

import (
	"context"
	"fmt"

	statex "github.com/pattadon/foodcourt-agent/agent/state"
)

// PersistTurn appends both turn messages and saves the conversation.
func PersistTurn(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	in.Conv.AppendMessage(statex.RoleUser, in.Query, in.Now)
	in.Conv.AppendMessage(statex.RoleAssistant, in.Reply, in.Now)
	in.Conv.Touch(in.Now)

	if err := store.Save(ctx, in.Conv); err != nil {
		return nil, fmt.Errorf("save conversation: %w", err)
	}
	return in, nil
}
