package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	assistantx "github.com/pattadon/foodcourt-agent/agent/agents/assistant"
	catalogx "github.com/pattadon/foodcourt-agent/agent/catalog"
	geocodex "github.com/pattadon/foodcourt-agent/agent/geocode"
	llmx "github.com/pattadon/foodcourt-agent/agent/llm"
	statex "github.com/pattadon/foodcourt-agent/agent/state"
	configx "github.com/pattadon/foodcourt-agent/pkg/config"
	_ "github.com/pattadon/foodcourt-agent/pkg/logger/autoload"
	retryx "github.com/pattadon/foodcourt-agent/pkg/retryx"
	"github.com/rs/zerolog/log"
)

type AppConfig struct {
	SessionID    string `envconfig:"SESSION_ID" split_words:"true" default:"local-dev"`
	StoreBackend string `envconfig:"STORE_BACKEND" split_words:"true" default:"memory"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("APP")

	store, err := newStore(ctx, appCfg.StoreBackend)
	if err != nil {
		log.Fatal().Err(err).Str("backend", appCfg.StoreBackend).Msg("create conversation store")
	}

	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	collaborators, err := llmx.NewCollaborators(ctx, *llmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("create model collaborators")
	}

	catalogCfg := configx.MustNew[catalogx.Config]("CATALOG")
	catalogStore, err := catalogx.New(*catalogCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("create catalog")
	}
	defer catalogStore.Close()

	geocodeCfg := configx.MustNew[geocodex.Config]("GEOCODE")
	geocoder, err := geocodex.New(*geocodeCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("create geocoder")
	}

	retryPolicy := configx.MustNew[retryx.Policy]("RETRY")

	agent, err := assistantx.New(store, collaborators.Classifier, geocoder, catalogStore, collaborators.Narrator, *retryPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("create assistant")
	}

	runREPL(ctx, agent, appCfg.SessionID)
}

func newStore(ctx context.Context, backend string) (statex.Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "memory":
		return statex.NewMemoryStore(), nil
	case "redis":
		cfg := configx.MustNew[statex.RedisConfig]("REDIS")
		return statex.NewRedisStore(ctx, *cfg)
	case "upstash":
		cfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		return statex.NewUpstashRedisStore(*cfg)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

func runREPL(ctx context.Context, agent *assistantx.Assistant, sessionID string) {
	fmt.Println("foodcourt-agent ready. Type a message, or /quit to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			break
		}

		reply, err := agent.HandleMessage(ctx, sessionID, line)
		if err != nil {
			log.Error().Err(err).Msg("turn failed")
			fmt.Println("Sorry, something went wrong. Please try again.")
			continue
		}
		fmt.Println(reply.Text)
	}

	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("read stdin")
	}
}
