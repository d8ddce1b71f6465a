package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/simon020286/go-wizard/internal/logging"
	"github.com/spf13/cobra"
)

func main() {
	var (
		debug  bool
		dbPath string
	)
	if err := logging.Configure(logging.LevelWarn); err != nil {
		_, _ = os.Stderr.WriteString("configure logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:           "credwizard",
		Short:         "Walk through creating credentials for an API",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelWarn
			if debug {
				level = logging.LevelDebug
			}
			return logging.Configure(level)
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&dbPath, "db", defaultDBPath(), "Approval database path")

	root.AddCommand(runCmd(&dbPath))
	root.AddCommand(approvalsCmd(&dbPath))
	root.AddCommand(apiConfigCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "approvals.db"
	}
	return filepath.Join(home, ".go-wizard", "approvals.db")
}
