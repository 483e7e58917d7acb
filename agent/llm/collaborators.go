package llm

import (
	"context"
	"fmt"

	contractx "github.com/pattadon/foodcourt-agent/agent/contract"
	promptx "github.com/pattadon/foodcourt-agent/agent/prompt"
)

// Collaborators bundles the model-backed externals built from one config.
type Collaborators struct {
	Classifier contractx.Classifier
	Narrator   contractx.Narrator
}

func NewCollaborators(ctx context.Context, cfg Config) (*Collaborators, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts := promptx.LoadPromptSet()

	classifierModelCfg := cfg.OpenRouterFor(RoleClassifier)
	classifierModel, err := classifierModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create classifier model: %v", contractx.ErrModelInvoke, err)
	}
	narratorModelCfg := cfg.OpenRouterFor(RoleNarrator)
	narratorModel, err := narratorModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create narrator model: %v", contractx.ErrModelInvoke, err)
	}

	classifier, err := newClassifier(ctx, classifierModel, prompts.Classifier)
	if err != nil {
		return nil, err
	}
	narrator, err := newNarrator(ctx, narratorModel, prompts.Narrator)
	if err != nil {
		return nil, err
	}

	return &Collaborators{
		Classifier: classifier,
		Narrator:   narrator,
	}, nil
}
