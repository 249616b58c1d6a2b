// SocialStudio is a terminal studio for planning AI-generated social
// media campaigns: brand profiles, per-platform content calendars,
// image synthesis, and a marketing consultant chat.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"socialstudio/cmd/studio/ui"
	"socialstudio/internal/app"
	"socialstudio/internal/config"
	"socialstudio/internal/export"
	"socialstudio/internal/gateway"
	"socialstudio/internal/logging"
	"socialstudio/internal/store"
)

var version = "0.3.0"

var (
	verbose   bool
	exportDir string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "studio",
	Short: "SocialStudio - AI social media campaign planner",
	Long: `SocialStudio plans social media campaigns with Gemini.

Define brand profiles, generate per-platform content calendars,
synthesize and edit post visuals, and consult a marketing expert,
all from the terminal. Data stays in a local SQLite database under
~/.socialstudio.

Run without arguments to start the interactive studio.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The interactive studio has its own logging; zap is for the
		// one-shot subcommands.
		if cmd.Use == "studio" && cmd.CalledAs() == "studio" {
			return nil
		}
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStudio()
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [company-name]",
	Short: "Export a campaign's content calendar to CSV",
	Long: `Writes the saved calendar of the named campaign as CSV:
one row per post with date, platform, status, caption, hashtags,
visual prompt, and visual URL.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the studio version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("socialstudio %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", ".", "directory to write the CSV into")
	rootCmd.AddCommand(exportCmd, versionCmd)
}

// bootstrap loads configuration and opens the store.
func bootstrap() (*config.Config, *store.Store, error) {
	config.LoadDotEnv()
	home := config.HomeDir()

	cfg, err := config.Load(config.ConfigPath(home))
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	if err := logging.Initialize(home); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	logging.Boot("SocialStudio %s starting, home=%s", version, home)

	st, err := store.Open(cfg.DatabasePath(home))
	if err != nil {
		return nil, nil, err
	}
	return cfg, st, nil
}

// runStudio launches the interactive interface.
func runStudio() error {
	cfg, st, err := bootstrap()
	if err != nil {
		return err
	}
	defer st.Close()
	defer logging.Close()

	state, err := app.Load(st)
	if err != nil {
		return err
	}

	client := gateway.NewClient(gateway.Config{
		APIKey:       cfg.Gemini.APIKey,
		BaseURL:      cfg.Gemini.BaseURL,
		PlanModel:    cfg.Gemini.PlanModel,
		ImageModel:   cfg.Gemini.ImageModel,
		ConsultModel: cfg.Gemini.ConsultModel,
		Timeout:      cfg.GetGeminiTimeout(),
	})

	p := tea.NewProgram(
		ui.NewModel(state, client, "."),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err = p.Run()
	return err
}

// runExport writes one campaign's calendar without entering the TUI.
func runExport(cmd *cobra.Command, args []string) error {
	_, st, err := bootstrap()
	if err != nil {
		return err
	}
	defer st.Close()
	defer logging.Close()

	state, err := app.Load(st)
	if err != nil {
		return err
	}

	name := args[0]
	for _, c := range state.Campaigns() {
		if c.CompanyName == name {
			path, err := export.WriteCSV(exportDir, c, state.Posts(c.ID))
			if err != nil {
				return err
			}
			logger.Info("calendar exported", zap.String("campaign", name), zap.String("path", path))
			fmt.Println(path)
			return nil
		}
	}
	return fmt.Errorf("no campaign named %q", name)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
