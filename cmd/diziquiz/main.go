// Package main provides the CLI entrypoint for diziquiz.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/okalkan/diziquiz/internal/bank"
	"github.com/okalkan/diziquiz/internal/boardui"
	"github.com/okalkan/diziquiz/internal/config"
	"github.com/okalkan/diziquiz/internal/history"
	"github.com/okalkan/diziquiz/internal/identity"
	"github.com/okalkan/diziquiz/internal/kv"
	"github.com/okalkan/diziquiz/internal/model"
	"github.com/okalkan/diziquiz/internal/report"
	"github.com/okalkan/diziquiz/internal/tui"
)

const (
	defaultTimer   = 30
	defaultBackend = kv.BackendFile
)

var (
	playTimer     int
	playQuestions string
	playBackend   string
	playUser      string

	loginBackend  string
	logoutBackend string
	whoamiBackend string

	statsBackend       string
	historyBackend     string
	leaderboardBackend string

	clearBackend     string
	clearLeaderboard bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "diziquiz",
		Short:         "TUI trivia quiz for the series Yaprak Dökümü",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().IntVar(&playTimer, "timer", defaultTimer, "seconds per question")
	rootCmd.Flags().StringVar(&playQuestions, "questions", "", "path to a question JSON file (default: built-in set)")
	rootCmd.Flags().StringVar(&playBackend, "backend", defaultBackend, "storage backend (file or sqlite)")
	rootCmd.Flags().StringVar(&playUser, "user", "", "play as this username without changing the saved login")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newClearCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "timer", &playTimer, fileCfg.Quiz.Timer)
	applyStringConfig(cmd, "questions", &playQuestions, fileCfg.Quiz.Questions)
	applyStringConfig(cmd, "backend", &playBackend, fileCfg.Quiz.Backend)

	cfg := model.Config{
		TimerSeconds:  playTimer,
		QuestionsPath: playQuestions,
		Backend:       playBackend,
		Username:      playUser,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	questionBank, err := bank.Load(cfg.QuestionsPath)
	if err != nil {
		return err
	}

	store, err := openStore(cfg.Backend)
	if err != nil {
		return err
	}
	defer closeStore(store)

	identities := identity.New(store)
	attempts := history.New(store)

	user, err := resolveUser(identities, cfg.Username)
	if err != nil {
		return err
	}

	m, err := tui.NewModel(cfg, questionBank, identities, attempts, user)
	if err != nil {
		return err
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// resolveUser prefers the --user override, then the persisted identity.
// A nil identity sends the TUI to the login screen.
func resolveUser(identities *identity.Store, override string) (*model.Identity, error) {
	if override != "" {
		username, err := identity.ValidateUsername(override)
		if err != nil {
			return nil, fmt.Errorf("invalid --user value: %w", err)
		}
		return &model.Identity{Username: username}, nil
	}
	id, ok, err := identities.Current(context.Background())
	if err != nil {
		logErrf("failed to load identity: %v\n", err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	return &id, nil
}

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Save the active username",
		Args:  cobra.ExactArgs(1),
		RunE:  runLoginCmd,
	}
	cmd.Flags().StringVar(&loginBackend, "backend", defaultBackend, "storage backend (file or sqlite)")
	return cmd
}

func runLoginCmd(cmd *cobra.Command, args []string) error {
	store, err := openConfiguredStore(cmd, &loginBackend)
	if err != nil {
		return err
	}
	defer closeStore(store)

	id, err := identity.New(store).Login(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Giriş yapıldı: %s\n", id.Username); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved username",
		Args:  cobra.NoArgs,
		RunE:  runLogoutCmd,
	}
	cmd.Flags().StringVar(&logoutBackend, "backend", defaultBackend, "storage backend (file or sqlite)")
	return cmd
}

func runLogoutCmd(cmd *cobra.Command, _ []string) error {
	store, err := openConfiguredStore(cmd, &logoutBackend)
	if err != nil {
		return err
	}
	defer closeStore(store)

	if err := identity.New(store).Logout(context.Background()); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	return nil
}

func newWhoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the saved username",
		Args:  cobra.NoArgs,
		RunE:  runWhoamiCmd,
	}
	cmd.Flags().StringVar(&whoamiBackend, "backend", defaultBackend, "storage backend (file or sqlite)")
	return cmd
}

func runWhoamiCmd(cmd *cobra.Command, _ []string) error {
	store, err := openConfiguredStore(cmd, &whoamiBackend)
	if err != nil {
		return err
	}
	defer closeStore(store)

	id, ok, err := identity.New(store).Current(context.Background())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("not logged in")
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), id.Username); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Browse stats, history, and the leaderboard",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsBackend, "backend", defaultBackend, "storage backend (file or sqlite)")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	store, err := openConfiguredStore(cmd, &statsBackend)
	if err != nil {
		return err
	}
	defer closeStore(store)

	m := boardui.NewModel(history.New(store))
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the attempt history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyBackend, "backend", defaultBackend, "storage backend (file or sqlite)")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	store, err := openConfiguredStore(cmd, &historyBackend)
	if err != nil {
		return err
	}
	defer closeStore(store)

	attempts, err := history.New(store).History(context.Background())
	if err != nil {
		return err
	}
	return report.RenderHistory(cmd.OutOrStdout(), attempts)
}

func newLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the leaderboard",
		Args:  cobra.NoArgs,
		RunE:  runLeaderboardCmd,
	}
	cmd.Flags().StringVar(&leaderboardBackend, "backend", defaultBackend, "storage backend (file or sqlite)")
	return cmd
}

func runLeaderboardCmd(cmd *cobra.Command, _ []string) error {
	store, err := openConfiguredStore(cmd, &leaderboardBackend)
	if err != nil {
		return err
	}
	defer closeStore(store)

	entries, err := history.New(store).Leaderboard(context.Background())
	if err != nil {
		return err
	}
	return report.RenderLeaderboard(cmd.OutOrStdout(), entries)
}

func newClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the attempt history",
		Args:  cobra.NoArgs,
		RunE:  runClearCmd,
	}
	cmd.Flags().StringVar(&clearBackend, "backend", defaultBackend, "storage backend (file or sqlite)")
	cmd.Flags().BoolVar(&clearLeaderboard, "leaderboard", false, "also delete the leaderboard")
	return cmd
}

func runClearCmd(cmd *cobra.Command, _ []string) error {
	store, err := openConfiguredStore(cmd, &clearBackend)
	if err != nil {
		return err
	}
	defer closeStore(store)

	attempts := history.New(store)
	ctx := context.Background()
	if err := attempts.ClearHistory(ctx); err != nil {
		return err
	}
	if clearLeaderboard {
		if err := attempts.ClearLeaderboard(ctx); err != nil {
			return err
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// openConfiguredStore loads the config file, overlays the command's
// --backend flag, and opens the selected backend.
func openConfiguredStore(cmd *cobra.Command, backend *string) (kv.Store, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "backend", backend, fileCfg.Quiz.Backend)
	if err := validateBackend(*backend); err != nil {
		return nil, err
	}
	return openStore(*backend)
}

func openStore(backend string) (kv.Store, error) {
	store, err := kv.Open(backend, config.DefaultStoreDir(), config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

func closeStore(store kv.Store) {
	if cerr := store.Close(); cerr != nil {
		logErrf("failed to close store: %v\n", cerr)
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# diziquiz configuration
# Uncomment a value to enable it. CLI flags override config values.

[quiz]
# timer = %d              # Seconds per question
# questions = ""          # Path to a question JSON file (default: built-in set)
# backend = %q            # Storage backend: file or sqlite
`,
		defaultTimer,
		defaultBackend,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.TimerSeconds <= 0 {
		return fmt.Errorf("--timer must be > 0")
	}
	return validateBackend(cfg.Backend)
}

func validateBackend(backend string) error {
	if backend != kv.BackendFile && backend != kv.BackendSQLite {
		return fmt.Errorf("--backend must be %q or %q", kv.BackendFile, kv.BackendSQLite)
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
