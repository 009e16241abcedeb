package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/model"
)

var (
	searchLocation string
	searchOnsite   bool
	searchSkills   []string
	searchMax      int
	searchJSON     bool
	searchFixtures string
)

var searchCmd = &cobra.Command{
	Use:   "search ROLE",
	Short: "Run one search and print the results",
	Long:  "One-shot search: fetches postings for ROLE, scores them against --skill and prints them grouped by age. Run `jobscout roles` for role keys.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchLocation, "location", "l", "", "location to search (default: default_location from config)")
	searchCmd.Flags().BoolVar(&searchOnsite, "onsite", false, "exclude remote postings")
	searchCmd.Flags().StringSliceVarP(&searchSkills, "skill", "s", nil, "skill to score postings against (repeatable or comma separated)")
	searchCmd.Flags().IntVarP(&searchMax, "max", "n", 0, "results wanted per search term (default: max_results from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print the raw JSON response")
	searchCmd.Flags().StringVar(&searchFixtures, "fixtures", "", "read postings from a JSON file instead of the configured source")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		setupLogger(os.Stderr, nil, debug).Error("failed to load config", "error", err)
		os.Exit(1)
	}
	// Logs go to stderr so --json output stays clean.
	logger := setupLogger(os.Stderr, cfg, debug)

	if searchFixtures != "" {
		cfg.Source.Type = "fixture"
		cfg.Source.FixturesPath = searchFixtures
		cfg.Source.Retries = 0
		cfg.Source.MinDelay = 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build search service", "error", err)
		os.Exit(1)
	}
	defer a.close()

	req := model.SearchRequest{Role: args[0], Skills: searchSkills}
	if searchLocation != "" {
		req.Location = &searchLocation
	}
	if searchOnsite {
		remote := false
		req.IncludeRemote = &remote
	}
	if searchMax > 0 {
		req.MaxResults = &searchMax
	}

	resp, err := a.service.Search(ctx, req)
	if err != nil {
		logger.Error("search failed", "role", req.Role, "error", err)
		os.Exit(1)
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	renderResponse(os.Stdout, resp)
	return nil
}
