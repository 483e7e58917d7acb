package assistantnode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/pattadon/foodcourt-agent/agent/contract"
	workflowx "github.com/pattadon/foodcourt-agent/agent/workflow"
	"github.com/rs/zerolog/log"
)

const (
	locationPromptReply = "Could you tell me where you are first? A neighborhood or landmark works."
	unhandledReply      = "I'm not sure how to help with that. You can browse nearby vendors, look at a menu, or manage your cart."
)

// Dispatch routes the classified request to a workflow. A missing
// location and an unroutable query both end the turn with a prompt, not
// an error.
func Dispatch(ctx context.Context, in *GraphState, router *workflowx.Router) (*GraphState, error) {
	req := contractx.Request{
		SessionID: in.SessionID,
		Query:     in.Query,
		Intent:    in.Intent,
		Conv:      in.Conv,
		Now:       in.Now,
	}

	out, err := router.Dispatch(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, contractx.ErrLocationRequired):
			in.Output = contractx.Output{Reply: locationPromptReply}
			return in, nil
		case errors.Is(err, contractx.ErrUnhandled):
			log.Warn().
				Str("session_id", in.SessionID).
				Str("query", in.Query).
				Msg("no workflow accepted the request")
			in.Output = contractx.Output{Reply: unhandledReply}
			return in, nil
		default:
			return nil, fmt.Errorf("dispatch workflow: %w", err)
		}
	}

	in.Output = out
	return in, nil
}
