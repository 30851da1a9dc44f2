package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"keepmoney/internal/cli"
	"keepmoney/internal/config"
	"keepmoney/internal/core"
	applog "keepmoney/internal/log"
	"keepmoney/internal/services"
	"keepmoney/internal/storage"
)

const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// errUsage marks bad flags or arguments.
var errUsage = errors.New("usage")

// app carries what every subcommand needs. The ledger is opened lazily by
// the root PersistentPreRunE.
type app struct {
	out     io.Writer
	cfg     *config.Config
	ledger  *services.LedgerService
	dbPath  string
	user    string
	json    bool
	verbose bool
}

func run(args []string, stdout, stderr io.Writer) int {
	a := &app{out: stdout}
	root := a.rootCmd(stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	a.close()
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
	}
	return exitCode(err)
}

// exitCode is 1 for mistakes the user can fix and 2 for everything else.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, errUsage),
		strings.HasPrefix(err.Error(), "unknown command"),
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, storage.ErrConflict),
		errors.Is(err, storage.ErrUnknownTable),
		errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrEmptyWishList),
		isValidation(err):
		return exitUserError
	default:
		return exitSysError
	}
}

func isValidation(err error) bool {
	for _, target := range []error{
		core.ErrInvalidDay, core.ErrInvalidMonth, core.ErrInvalidAmount, core.ErrInvalidQuantity,
		core.ErrEmptyUsername, core.ErrEmptyPassword, core.ErrEmptyName, core.ErrEmptySurname,
		core.ErrInvalidEmail, core.ErrEmptyCategory, core.ErrInvalidCategoryID,
		core.ErrDescriptionTooLong, core.ErrNameTooLong, core.ErrInvalidReference,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (a *app) rootCmd(stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "keepmoneyctl",
		Short:         "Manage a keepmoney ledger",
		Long:          `keepmoneyctl records incomes, purchases and wishlists in the local ledger database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(stderr)
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})

	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "database file (default: SQLITE_DB_PATH)")
	root.PersistentFlags().StringVarP(&a.user, "user", "u", "", "username the command acts for")
	root.PersistentFlags().BoolVar(&a.json, "json", false, "print JSON instead of tables")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log storage activity to stderr")

	root.AddCommand(
		a.migrateCmd(),
		a.userCmd(),
		a.loginCmd(),
		a.categoryCmd(),
		a.incomeCmd(),
		a.purchaseCmd(),
		a.wishListCmd(),
		a.balanceCmd(),
		a.countCmd(),
	)
	return root
}

func (a *app) open(stderr io.Writer) error {
	cli.LoadEnvFile()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.SQLiteDBPath = a.dbPath
	}
	a.cfg = cfg

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelInfo
	}
	applog.SetDefault(applog.New(applog.Config{
		Level:     level,
		Component: applog.ComponentCLI,
		Format:    cfg.LogFormat,
		Output:    stderr,
	}))

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return fmt.Errorf("open database %s: %w", cfg.SQLiteDBPath, err)
	}
	a.ledger = services.NewLedgerService(repo, nil)
	return nil
}

func (a *app) close() {
	if a.ledger != nil {
		_ = a.ledger.Close()
		a.ledger = nil
	}
}

// username returns --user or a usage error.
func (a *app) username() (string, error) {
	if a.user == "" {
		return "", fmt.Errorf("%w: --user is required", errUsage)
	}
	return a.user, nil
}

func (a *app) printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(a.out, string(output))
	return err
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("%w: %s takes %d argument(s), got %d", errUsage, cmd.Name(), n, len(args))
		}
		return nil
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", errUsage, raw)
	}
	return id, nil
}
