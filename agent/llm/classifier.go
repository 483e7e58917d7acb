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

type classifierImpl struct {
	runner compose.Runnable[map[string]any, classifierLLMOutput]
}

type classifierLLMOutput struct {
	CorrectedQuery      string   `json:"corrected_query"`
	NeedsLocation       bool     `json:"needs_location"`
	LocationName        string   `json:"location_name"`
	QueryType           string   `json:"query_type"`
	IsCartOperation     bool     `json:"is_cart_operation"`
	CartAction          string   `json:"cart_action"`
	ServiceNames        []string `json:"service_names"`
	Quantities          []int    `json:"quantities"`
	VendorName          string   `json:"vendor_name"`
	WantsServices       bool     `json:"wants_services"`
	IsPaginationRequest bool     `json:"is_pagination_request"`
}

func newClassifier(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*classifierImpl, error) {
	runner, err := compileClassifierGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile classifier graph: %v", contractx.ErrModelInvoke, err)
	}
	return &classifierImpl{runner: runner}, nil
}

func (c *classifierImpl) Classify(ctx context.Context, query string, historyText string) (contractx.Classification, error) {
	if strings.TrimSpace(query) == "" {
		return contractx.Classification{}, fmt.Errorf("%w: query is required", contractx.ErrValidation)
	}

	payload := map[string]any{
		"query":   query,
		"history": historyText,
	}
	inputBytes, err := json.Marshal(payload)
	if err != nil {
		return contractx.Classification{}, fmt.Errorf("%w: marshal classifier payload: %v", contractx.ErrValidation, err)
	}

	out, err := c.runner.Invoke(ctx, map[string]any{
		"input": string(inputBytes),
	})
	if err != nil {
		// Invoke failures (timeouts, rate limits, upstream 5xx) are worth
		// retrying; malformed output below is not.
		return contractx.Classification{}, retryx.Transient(fmt.Errorf("%w: classifier invoke: %v", contractx.ErrModelInvoke, err))
	}

	cls := contractx.Classification{
		CorrectedQuery:      strings.TrimSpace(out.CorrectedQuery),
		NeedsLocation:       out.NeedsLocation,
		LocationName:        strings.TrimSpace(out.LocationName),
		QueryType:           strings.ToLower(strings.TrimSpace(out.QueryType)),
		IsCartOperation:     out.IsCartOperation,
		CartAction:          contractx.CartAction(strings.ToLower(strings.TrimSpace(out.CartAction))),
		ServiceNames:        trimmedNames(out.ServiceNames),
		Quantities:          out.Quantities,
		VendorName:          strings.TrimSpace(out.VendorName),
		WantsServices:       out.WantsServices,
		IsPaginationRequest: out.IsPaginationRequest,
	}

	if err := validateClassification(cls); err != nil {
		return contractx.Classification{}, err
	}

	return cls, nil
}

func validateClassification(cls contractx.Classification) error {
	if !cls.IsCartOperation {
		return nil
	}
	switch cls.CartAction {
	case "", contractx.CartActionView, contractx.CartActionAdd, contractx.CartActionRemove,
		contractx.CartActionUpdate, contractx.CartActionClear:
		return nil
	default:
		return fmt.Errorf("%w: unsupported cart_action=%q", contractx.ErrSchemaViolation, cls.CartAction)
	}
}

func trimmedNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if trimmed := strings.TrimSpace(n); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
