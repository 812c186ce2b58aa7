package main

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/counselgate/counselgate/internal/config"
	"github.com/counselgate/counselgate/internal/knowledge"
	"github.com/counselgate/counselgate/internal/llm"
	"github.com/counselgate/counselgate/internal/storage"
)

// --- seed ---

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the starter attorneys and knowledge articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		if err := storage.Seed(store); err != nil {
			return fmt.Errorf("seeding: %w", err)
		}

		printSuccess("Seed data loaded")
		return nil
	},
}

// --- embed ---

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Backfill embeddings for articles that do not have one",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		client := llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
		embedder := knowledge.NewEmbedder(client, cfg.OpenAI.EmbedModel)

		n, err := embedder.EmbedMissing(cmd.Context(), store, slog.Default())
		if err != nil {
			return err
		}

		printSuccess("Embedded %d article(s)", n)
		return nil
	},
}

// --- requests ---

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "List legal requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/api/requests")
		if err != nil {
			return err
		}

		var requests []struct {
			ReferenceNumber string `json:"referenceNumber"`
			Title           string `json:"title"`
			Category        string `json:"category"`
			Urgency         string `json:"urgency"`
			Status          string `json:"status"`
			Attorney        *struct {
				Name string `json:"name"`
			} `json:"attorney"`
		}
		if err := decodeJSON(resp, &requests); err != nil {
			return err
		}

		if len(requests) == 0 {
			fmt.Println("No requests found.")
			return nil
		}

		for _, r := range requests {
			title := r.Title
			if len(title) > 50 {
				title = title[:50] + "..."
			}
			attorney := "-"
			if r.Attorney != nil {
				attorney = r.Attorney.Name
			}
			fmt.Printf("%s  %-12s %-8s %-20s %s\n",
				colorize(colorCyan, r.ReferenceNumber),
				r.Status,
				r.Urgency,
				attorney,
				title,
			)
		}
		return nil
	},
}

// --- knowledge ---

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge <query>",
	Short: "Search the knowledge base",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/api/knowledge?search="+url.QueryEscape(query))
		if err != nil {
			return err
		}

		var articles []struct {
			Slug     string `json:"slug"`
			Title    string `json:"title"`
			Excerpt  string `json:"excerpt"`
			Category string `json:"category"`
		}
		if err := decodeJSON(resp, &articles); err != nil {
			return err
		}

		if len(articles) == 0 {
			fmt.Println("No articles found.")
			return nil
		}

		for _, a := range articles {
			fmt.Printf("\n%s  (%s)\n", colorize(colorBold, a.Title), a.Category)
			fmt.Printf("  %s\n", a.Excerpt)
			fmt.Printf("  %s\n", colorize(colorCyan, a.Slug))
		}
		return nil
	},
}

// --- triage ---

var triageCmd = &cobra.Command{
	Use:   "triage <request-id>",
	Short: "Run a full triage assessment over a request's conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/api/triage", map[string]string{"requestId": args[0]})
		if err != nil {
			return err
		}

		var assessment struct {
			Outcome           string   `json:"outcome"`
			Reasoning         string   `json:"reasoning"`
			Recommendations   []string `json:"recommendations"`
			SuggestedArticles []string `json:"suggestedArticles"`
		}
		if err := decodeJSON(resp, &assessment); err != nil {
			return err
		}

		printStatus("Outcome", "%s", colorize(colorBold, assessment.Outcome))
		printStatus("Reasoning", "%s", assessment.Reasoning)
		for _, rec := range assessment.Recommendations {
			fmt.Printf("  - %s\n", rec)
		}
		for _, slug := range assessment.SuggestedArticles {
			fmt.Printf("  see: %s\n", colorize(colorCyan, slug))
		}
		return nil
	},
}
