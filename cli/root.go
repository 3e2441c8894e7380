// Package cli implements the venture-core commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nstehr/venture/venture-core/catalog"
	"github.com/nstehr/venture/venture-core/decisionlog"
	"github.com/nstehr/venture/venture-core/rules"
)

var (
	dbPath     string
	contentDir string
	logLevel   string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "venture-core",
	Short: "Progression and AI decision sidecar for the business sim",
	Long: "Resolves product unlocks and upgrade trees per niche and picks one " +
		"intent per AI company each tick. Runs as a socket sidecar or one-shot from the shell.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd.ErrOrStderr())
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Decision log path (default: $VENTURE_DB or ~/.venture/decisions.db)")
	RootCmd.PersistentFlags().StringVarP(&contentDir, "content", "c", "", "Niche content directory (default: $VENTURE_CONTENT or the embedded niches)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func setupLogging(w io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return nil
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("VENTURE_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".venture", "decisions.db")
}

func getContentDir() string {
	if contentDir != "" {
		return contentDir
	}
	return os.Getenv("VENTURE_CONTENT")
}

// loadNiches reads the content directory when one is configured, else the
// embedded niches.
func loadNiches() ([]rules.Niche, error) {
	if dir := getContentDir(); dir != "" {
		slog.Debug("loading niche content", "dir", dir)
		return catalog.LoadDir(dir)
	}
	return catalog.Embedded()
}

func loadRegistry() (*rules.Registry, error) {
	niches, err := loadNiches()
	if err != nil {
		return nil, err
	}
	return rules.NewRegistry(niches)
}

func openStore() (*decisionlog.Store, error) {
	return decisionlog.Open(getDBPath())
}

// readInput decodes JSON from the named file, or stdin for "" and "-".
func readInput(cmd *cobra.Command, name string, v any) error {
	var r io.Reader = cmd.InOrStdin()
	if name != "" && name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", inputName(name), err)
	}
	return nil
}

func inputName(name string) string {
	if name == "" || name == "-" {
		return "stdin"
	}
	return name
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

func textFormat() bool { return strings.EqualFold(formatFlag, "text") }

func optionalArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}
