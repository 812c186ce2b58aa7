package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/counselgate/counselgate/internal/api"
	"github.com/counselgate/counselgate/internal/config"
	"github.com/counselgate/counselgate/internal/intake"
	"github.com/counselgate/counselgate/internal/knowledge"
	"github.com/counselgate/counselgate/internal/llm"
	"github.com/counselgate/counselgate/internal/pipeline"
	"github.com/counselgate/counselgate/internal/storage"
	"github.com/counselgate/counselgate/internal/triage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the counselgate server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		withMCP, _ := cmd.Flags().GetBool("mcp")
		return runServer(withMCP)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show counselgate system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().Bool("mcp", false, "also serve MCP tools over stdio")
}

func openStore(cfg config.Config) (storage.Store, error) {
	if cfg.Storage.Driver == "memory" {
		return storage.NewMemStore(), nil
	}
	return storage.Open(cfg.Storage.DataDir)
}

func runServer(withMCP bool) error {
	fmt.Fprintf(os.Stderr, "counselgate version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	if err := storage.Seed(store); err != nil {
		return fmt.Errorf("seeding storage: %w", err)
	}

	client := llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)

	// Build the triage pipeline.
	embedder := knowledge.NewEmbedder(client, cfg.OpenAI.EmbedModel)
	orchestrator := pipeline.NewOrchestrator(
		store,
		embedder,
		triage.NewGate(client, cfg.OpenAI.FastModel, logger),
		triage.NewResponder(client, cfg.OpenAI.ChatModel, logger),
		triage.NewAssessor(client, cfg.OpenAI.ChatModel, logger),
		pipeline.Options{
			SimilarityThreshold: cfg.Triage.SimilarityThreshold,
			MinConfidence:       cfg.Triage.MinConfidence,
			SearchLimit:         cfg.Triage.SearchLimit,
			AssessAfterTurns:    cfg.Triage.AssessAfterTurns,
		},
		logger,
	)
	intakeSvc := intake.NewService(store, client, cfg.OpenAI.FastModel, logger)

	handler := api.NewAppHandler(api.AppDeps{
		Store:        store,
		Orchestrator: orchestrator,
		Intake:       intakeSvc,
		Token:        cfg.Server.AuthToken,
		Logger:       logger,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Start the article embedding worker.
	worker := knowledge.NewWorker(store, embedder, 500*time.Millisecond, logger)
	go worker.Run(ctx)

	// Optionally expose the workflow as MCP tools over stdio.
	if withMCP {
		mcpSrv := api.NewMCPServer(api.MCPDeps{
			Store:        store,
			Orchestrator: orchestrator,
			Intake:       intakeSvc,
		})
		stdioSrv := server.NewStdioServer(mcpSrv)
		go func() {
			if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("MCP stdio server error", "error", err)
			}
		}()
		logger.Info("MCP server started (stdio transport)")
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "counselgate listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func showStatus(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/api/health")
	running := false
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			running = true
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	printStatus("Chat model", "%s", cfg.OpenAI.ChatModel)
	printStatus("Fast model", "%s", cfg.OpenAI.FastModel)
	printStatus("Embed model", "%s", cfg.OpenAI.EmbedModel)
	printStatus("Storage", "%s (%s)", cfg.Storage.Driver, cfg.Storage.DataDir)

	if running {
		apiCli, err := newAPIClient()
		if err != nil {
			return nil
		}
		if resp, err := apiCli.get(ctx, "/api/requests"); err == nil {
			var requests []json.RawMessage
			if decodeJSON(resp, &requests) == nil {
				printStatus("Requests", "%d", len(requests))
			}
		}
		if resp, err := apiCli.get(ctx, "/api/knowledge"); err == nil {
			var articles []json.RawMessage
			if decodeJSON(resp, &articles) == nil {
				printStatus("Articles", "%d", len(articles))
			}
		}
	}
	return nil
}
