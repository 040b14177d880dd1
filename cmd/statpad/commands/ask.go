package commands

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Chrisc1124/statpad/internal/logger"
	"github.com/Chrisc1124/statpad/pkg/statpad"
)

// AskCmd answers one question from the terminal.
var AskCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Run one query and print the result envelope",
	Long: `Interpret one natural-language question and print the result envelope
as indented JSON. Unanswerable questions still produce an envelope, with
type "error" and a message saying what to fix.

Examples:
  statpad ask how many points did Steph average in 2023-24
  statpad ask compare Lakers and Warriors in 2023-24
  statpad ask "LeBron vs Curry last 5 games"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	svc, err := statpad.New(ctx, statpad.FromAppConfig(cfg))
	if err != nil {
		return err
	}
	defer svc.Close()

	env := svc.ProcessQuery(ctx, strings.Join(args, " "))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}
