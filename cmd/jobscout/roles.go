package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the role profiles a search can target",
	RunE:  runRoles,
}

func init() {
	rootCmd.AddCommand(rolesCmd)
}

func runRoles(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load roles: %v\n", err)
		os.Exit(1)
	}

	all := catalog.All()
	fmt.Println(headingStyle.Render(fmt.Sprintf("%-20s %-30s %-10s", "Key", "Label", "Level")))
	fmt.Println(strings.Repeat("─", 62))
	for _, r := range all {
		fmt.Printf("%-20s %-30s %-10s\n", r.Key, r.Label, r.ExperienceLevel)
		fmt.Println(mutedStyle.Render("  " + strings.Join(r.SearchTerms, " · ")))
	}

	fmt.Printf("\nTotal: %d roles\n", len(all))
	return nil
}

var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)
