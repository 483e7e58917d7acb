package assistantnode

import (
	"context"

	contractx "github.com/pattadon/foodcourt-agent/agent/contract"
	llmx "github.com/pattadon/foodcourt-agent/agent/llm"
	"github.com/rs/zerolog/log"
)

const narratorHistoryLimit = 10

// Narrate renders a structured workflow payload into user-facing text.
// When the narrator is down the deterministic fallback answers from the
// same data, so a collaborator outage never loses the turn.
func Narrate(ctx context.Context, in *GraphState, narrator contractx.Narrator) (*GraphState, error) {
	if !in.Output.NeedsNarration {
		in.Reply = in.Output.Reply
		in.Voice = in.Output.Reply
		return in, nil
	}

	req := contractx.NarrationRequest{
		Query:       in.Query,
		Data:        in.Output.Data,
		Location:    in.Conv.Location,
		HistoryText: in.Conv.HistoryText(narratorHistoryLimit),
		Cart:        in.Conv.Cart.Snapshot(),
		Intent:      in.Intent,
	}

	narration, err := narrator.Render(ctx, req)
	if err != nil {
		log.Warn().
			Err(err).
			Str("session_id", in.SessionID).
			Msg("narrator failed, using deterministic fallback")
		narration = llmx.FallbackRender(req)
	}

	in.Reply = narration.RichText
	in.Voice = narration.VoiceText
	return in, nil
}
