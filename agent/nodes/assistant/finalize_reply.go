package assistantnode

import (
	"fmt"
	"strings"

	contractx "github.com/pattadon/foodcourt-agent/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: empty reply produced", contractx.ErrValidation)
	}

	voice := strings.TrimSpace(in.Voice)
	if voice == "" {
		voice = reply
	}

	return GraphOutput{Reply: reply, Voice: voice}, nil
}
