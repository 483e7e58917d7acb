package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	contractx "github.com/pattadon/foodcourt-agent/agent/contract"
	retryx "github.com/pattadon/foodcourt-agent/pkg/retryx"
)

type narratorImpl struct {
	runner compose.Runnable[map[string]any, narratorLLMOutput]
}

type narratorLLMOutput struct {
	VoiceText string `json:"voice_text"`
	RichText  string `json:"rich_text"`
}

func newNarrator(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*narratorImpl, error) {
	runner, err := compileNarratorGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile narrator graph: %v", contractx.ErrModelInvoke, err)
	}
	return &narratorImpl{runner: runner}, nil
}

func (n *narratorImpl) Render(ctx context.Context, req contractx.NarrationRequest) (contractx.Narration, error) {
	payload := map[string]any{
		"query":   req.Query,
		"intent":  intentLabel(req.Intent),
		"data":    req.Data,
		"history": req.HistoryText,
	}
	if req.Location != nil {
		payload["location"] = req.Location.Name
	}
	if len(req.Cart) > 0 {
		payload["cart"] = req.Cart
	}

	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return contractx.Narration{}, fmt.Errorf("%w: marshal narration payload: %v", contractx.ErrValidation, err)
	}

	out, err := n.runner.Invoke(ctx, map[string]any{
		"input": string(inputBytes),
	})
	if err != nil {
		return contractx.Narration{}, retryx.Transient(fmt.Errorf("%w: narrator invoke: %v", contractx.ErrModelInvoke, err))
	}

	rich := strings.TrimSpace(out.RichText)
	if rich == "" {
		return contractx.Narration{}, fmt.Errorf("%w: narrator returned empty rich_text", contractx.ErrSchemaViolation)
	}

	voice := strings.TrimSpace(out.VoiceText)
	if voice == "" {
		voice = rich
	}

	return contractx.Narration{VoiceText: voice, RichText: rich}, nil
}

func intentLabel(intent contractx.Intent) string {
	switch intent.(type) {
	case contractx.CartIntent:
		return "cart"
	case contractx.ExploreIntent:
		return "explore"
	default:
		return "unknown"
	}
}
