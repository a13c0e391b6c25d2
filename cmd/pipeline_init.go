package main

import (
	"github.com/shopsmart/shopsmart-cli/internal/extract"
	"github.com/shopsmart/shopsmart-cli/internal/fetch"
	"github.com/shopsmart/shopsmart-cli/internal/pipeline"
	"github.com/shopsmart/shopsmart-cli/internal/source"
	"github.com/shopsmart/shopsmart-cli/pkg/llm"
	"github.com/shopsmart/shopsmart-cli/pkg/tavily"
)

// pipelineEnv holds the initialized clients and the pipeline shared by the
// research and serve commands.
type pipelineEnv struct {
	Router   *source.Router
	Pipeline *pipeline.Pipeline
}

func initPipeline() (*pipelineEnv, error) {
	fetcher := fetch.NewClient(cfg.Fetch)
	router := source.NewRouter(fetcher, extract.DefaultChain())

	searchClient := tavily.NewClient(cfg.Tavily.Key, tavily.WithBaseURL(cfg.Tavily.BaseURL))
	llmClient := llm.NewClient(cfg.Anthropic.Key, llm.Config{
		Model:     cfg.Anthropic.Model,
		MaxTokens: cfg.Anthropic.MaxTokens,
	})

	p := pipeline.New(cfg, searchClient, llmClient, router)

	return &pipelineEnv{
		Router:   router,
		Pipeline: p,
	}, nil
}
