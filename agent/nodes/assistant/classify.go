package assistantnode

import (
	"context"
	"strings"

	contractx "github.com/pattadon/foodcourt-agent/agent/contract"
	"github.com/rs/zerolog/log"
)

const classifierHistoryLimit = 10

// Classify runs the external classifier over the query and recent
// history. A failed classifier degrades to the safe default rather than
// failing the turn; the intent sum is fixed here and never revisited.
func Classify(ctx context.Context, in *GraphState, classifier contractx.Classifier) (*GraphState, error) {
	in.HistoryText = in.Conv.HistoryText(classifierHistoryLimit)

	cls, err := classifier.Classify(ctx, in.Query, in.HistoryText)
	if err != nil {
		log.Warn().
			Err(err).
			Str("session_id", in.SessionID).
			Msg("classifier failed, using safe default")
		cls = contractx.SafeDefaultClassification()
	}

	query := in.Query
	if corrected := strings.TrimSpace(cls.CorrectedQuery); corrected != "" {
		query = corrected
	}

	in.Classification = cls
	in.Query = query
	in.Intent = contractx.IntentFrom(cls, query)
	return in, nil
}
