// persona-chat serves a two-persona local chat with persistent
// conversational memory: Ollama for generation, chromem-go for recall.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/dinadyno/persona-chat/chat"
	"github.com/dinadyno/persona-chat/core"
	"github.com/dinadyno/persona-chat/llm"
	"github.com/dinadyno/persona-chat/memory"
	"github.com/dinadyno/persona-chat/memory/embedder/cached"
	chromemstore "github.com/dinadyno/persona-chat/memory/store/chromem"
	"github.com/dinadyno/persona-chat/server"
	"github.com/dinadyno/persona-chat/session"
)

func main() {
	_ = godotenv.Load()

	if err := run(context.Background(), os.Args); err != nil {
		log.Fatalf("persona-chat: %v", err)
	}
}

func run(ctx context.Context, args []string) error {
	var (
		addr           string
		dbPath         string
		ollamaURL      string
		provider       string
		anthropicKey   string
		anthropicModel string
		onnxModel      string
		onnxTokenizer  string
	)

	cmd := &cli.Command{
		Name:  "persona-chat",
		Usage: "Chat with Dina & Dyno, two local personas with persistent memory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "HTTP server address",
				Value:       ":8080",
				Sources:     cli.EnvVars("PERSONA_CHAT_ADDR"),
				Destination: &addr,
			},
			&cli.StringFlag{
				Name:        "db-path",
				Usage:       "Directory for the persistent memory database",
				Value:       "./multi_persona_db",
				Sources:     cli.EnvVars("PERSONA_CHAT_DB_PATH"),
				Destination: &dbPath,
			},
			&cli.StringFlag{
				Name:        "ollama-url",
				Usage:       "Ollama chat endpoint",
				Value:       llm.DefaultOllamaURL,
				Sources:     cli.EnvVars("PERSONA_CHAT_OLLAMA_URL"),
				Destination: &ollamaURL,
			},
			&cli.StringFlag{
				Name:        "provider",
				Usage:       "Model provider: ollama or anthropic",
				Value:       "ollama",
				Sources:     cli.EnvVars("PERSONA_CHAT_PROVIDER"),
				Destination: &provider,
			},
			&cli.StringFlag{
				Name:        "anthropic-api-key",
				Usage:       "Anthropic API key (provider=anthropic)",
				Sources:     cli.EnvVars("ANTHROPIC_API_KEY"),
				Destination: &anthropicKey,
			},
			&cli.StringFlag{
				Name:        "anthropic-model",
				Usage:       "Claude model serving both personas (provider=anthropic)",
				Sources:     cli.EnvVars("PERSONA_CHAT_ANTHROPIC_MODEL"),
				Destination: &anthropicModel,
			},
			&cli.StringFlag{
				Name:        "onnx-model",
				Usage:       "Path to all-MiniLM-L6-v2 model.onnx (requires the onnx build tag)",
				Sources:     cli.EnvVars("PERSONA_CHAT_ONNX_MODEL"),
				Destination: &onnxModel,
			},
			&cli.StringFlag{
				Name:        "onnx-tokenizer",
				Usage:       "Path to the matching tokenizer.json",
				Sources:     cli.EnvVars("PERSONA_CHAT_ONNX_TOKENIZER"),
				Destination: &onnxTokenizer,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			// A store that cannot initialize aborts startup; nothing is
			// usable without it.
			store, err := chromemstore.New(dbPath)
			if err != nil {
				return goerr.Wrap(err, "initialize memory store")
			}
			defer store.Close()

			embedder, err := buildEmbedder(onnxModel, onnxTokenizer)
			if err != nil {
				return goerr.Wrap(err, "initialize embedder")
			}
			cachedEmbedder, err := cached.New(embedder)
			if err != nil {
				return goerr.Wrap(err, "initialize embedding cache")
			}

			recall := memory.NewRecall(store, cachedEmbedder)

			var prov llm.Provider
			switch provider {
			case "ollama":
				prov = llm.NewOllama(llm.OllamaConfig{URL: ollamaURL})
			case "anthropic":
				prov, err = llm.NewAnthropic(llm.AnthropicConfig{
					APIKey: anthropicKey,
					Model:  anthropicModel,
				})
				if err != nil {
					return goerr.Wrap(err, "initialize anthropic provider")
				}
			default:
				return fmt.Errorf("unknown provider: %q", provider)
			}

			orch := chat.New(prov, recall, session.NewManager())
			srv := server.New(orch)

			log.Printf("[MAIN] Personas: %v", core.Personas())
			log.Printf("[MAIN] Provider: %s, memory at %s", provider, dbPath)
			return srv.Run(addr)
		},
	}

	return cmd.Run(ctx, args)
}
