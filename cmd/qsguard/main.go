package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"quicksave-guard/internal/app"
	"quicksave-guard/internal/config"
	"quicksave-guard/internal/guard"
)

const (
	exitError = 1
	exitFatal = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	os.Exit(exitCode(err))
}

// exitCode maps a command error onto the process exit status and prints it.
func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return 0
	case errors.Is(err, guard.ErrFatal):
		fmt.Fprintf(os.Stderr, "qsguard: fatal: %v\n", err)
		return exitFatal
	default:
		fmt.Fprintf(os.Stderr, "qsguard: %v\n", err)
		return exitError
	}
}

// loadConfig reads the config file, falling back to defaults when there is none.
func loadConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"], defaults["base_dir"])
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(defaults["base_dir"]), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp reads the config and creates a GuardApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "run", "restore").
func newApp(operation string) (*app.GuardApp, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewGuardApp(cfg, operation, app.Options{})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:           "qsguard",
	Short:         "Rotating quicksave backups while the game runs",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Back up quicksaves until the game exits",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("run")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Run(cmd.Context())
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.Default(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		m := &config.Manager{}
		return m.Write(cmd.OutOrStdout(), cfg)
	},
}

// backups command
var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List backups, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("backups")
		if err != nil {
			return err
		}
		defer a.Close()

		backups, err := a.ListBackups(cmd.Context())
		if err != nil {
			return err
		}

		if len(backups) == 0 {
			fmt.Println("No backups.")
			return nil
		}
		for _, b := range backups {
			fmt.Printf("%s  %s\n", b.ModTime.Local().Format("2006-01-02 15:04:05"), b.Name)
		}
		return nil
	},
}

// historyRow is one CSV line of `history --csv`.
type historyRow struct {
	At     string `csv:"at"`
	RunID  string `csv:"run_id"`
	Kind   string `csv:"kind"`
	Target string `csv:"target"`
	Detail string `csv:"detail"`
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View guard history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		asCSV, _ := cmd.Flags().GetBool("csv")

		a, err := newApp("history")
		if err != nil {
			return err
		}
		defer a.Close()

		events, err := a.History(cmd.Context(), limit)
		if err != nil {
			return err
		}

		if asCSV {
			rows := make([]historyRow, 0, len(events))
			for _, e := range events {
				rows = append(rows, historyRow{
					At:     e.At.UTC().Format(time.RFC3339),
					RunID:  e.RunID,
					Kind:   string(e.Kind),
					Target: e.Target,
					Detail: e.Detail,
				})
			}
			return gocsv.Marshal(rows, cmd.OutOrStdout())
		}

		if len(events) == 0 {
			fmt.Println("No history recorded.")
			return nil
		}
		for _, e := range events {
			fmt.Printf("%s  %s  %-16s  %s  %s\n",
				e.At.Local().Format("2006-01-02 15:04:05"),
				shortID(e.RunID),
				e.Kind,
				e.Target,
				e.Detail,
			)
		}
		return nil
	},
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore BACKUP",
	Short: "Copy a backup back over its quicksave",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("restore")
		if err != nil {
			return err
		}
		defer a.Close()

		path, err := a.Restore(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Restored %s to %s\n", args[0], path)
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage export keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the export key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("keys-init")
		if err != nil {
			return err
		}
		defer a.Close()

		pass, err := app.ReadPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := app.ReadPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if pass != confirm {
			return errors.New("passphrases do not match")
		}

		if err := a.InitKeys(pass); err != nil {
			return err
		}
		fmt.Println("Keys created.")
		return nil
	},
}

// export command
var exportCmd = &cobra.Command{
	Use:   "export BACKUP OUT",
	Short: "Encrypt a backup to a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("export")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Export(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Exported %s to %s\n", args[0], args[1])
		return nil
	},
}

// import command
var importCmd = &cobra.Command{
	Use:   "import IN BACKUP",
	Short: "Decrypt an exported file into the save directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("import")
		if err != nil {
			return err
		}
		defer a.Close()

		pass, err := app.ReadPassphrase("Passphrase: ")
		if err != nil {
			return err
		}

		path, err := a.Import(cmd.Context(), args[0], args[1], pass)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %s to %s\n", args[0], path)
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// keys subcommands
	keysCmd.AddCommand(keysInitCmd)

	// root commands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(backupsCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of events to show")
	historyCmd.Flags().Bool("csv", false, "Write events as CSV")
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
