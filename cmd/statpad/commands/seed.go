package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Chrisc1124/statpad/internal/logger"
	"github.com/Chrisc1124/statpad/internal/statstore"
)

// SeedCmd prepares a database with the schema and reference data.
var SeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the schema and seed seasons and teams",
	Long: `Create the statpad schema if it does not exist and load the reference
data: the league years and the thirty franchises with their aliases.

Seeding is idempotent; running it against a populated database changes
nothing. Player stats come separately through 'statpad import'.

Example:
  statpad seed`,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := initRuntime(cfg); err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signalContext()
	defer stop()

	spinner, _ := pterm.DefaultSpinner.Start("Opening database...")
	store, err := statstore.NewStore(storeConfig(cfg))
	if err != nil {
		spinner.Fail("Failed to open database")
		return err
	}
	defer store.Close()

	spinner.UpdateText("Seeding seasons...")
	seasons, err := store.SeedSeasons(ctx)
	if err != nil {
		spinner.Fail("Failed to seed seasons")
		return err
	}
	spinner.UpdateText("Seeding teams...")
	teams, err := store.SeedTeams(ctx)
	if err != nil {
		spinner.Fail("Failed to seed teams")
		return err
	}
	spinner.Stop()

	pterm.Success.Println("Database ready")
	pterm.Printf("  Database: %s\n", cfg.Database.URL)
	pterm.Printf("  Seasons:  %d\n", seasons)
	pterm.Printf("  Teams:    %d\n", teams)
	return nil
}
