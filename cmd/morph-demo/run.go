package main

import (
	"fmt"
	"os"

	"github.com/phanxgames/morph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath   string
	startAt      string
	scriptPath   string
	screenWidth  int
	screenHeight int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the gallery window",
	Long: `Opens the gallery. Click a thumbnail to open it; click the backdrop or
press Escape to close. With --script the walkthrough is played and the
window exits when it ends, failing if an expectation did not hold.`,
	RunE: runGallery,
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	runCmd.Flags().StringVar(&startAt, "location", "/gallery", "Location to load at start")
	runCmd.Flags().StringVar(&scriptPath, "script", "", "JSON walkthrough script to play")
	runCmd.Flags().IntVar(&screenWidth, "width", 0, "Window width (overrides config)")
	runCmd.Flags().IntVar(&screenHeight, "height", 0, "Window height (overrides config)")
	rootCmd.AddCommand(runCmd)
}

func runGallery(cmd *cobra.Command, args []string) error {
	cfg := morph.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = morph.LoadConfigFile(configPath)
		if err != nil {
			return err
		}
	}
	if screenWidth > 0 {
		cfg.Viewport.Width = screenWidth
	}
	if screenHeight > 0 {
		cfg.Viewport.Height = screenHeight
	}

	start, err := morph.ParseLocation(startAt)
	if err != nil {
		return err
	}

	var runner *morph.ScriptRunner
	if scriptPath != "" {
		data, err := os.ReadFile(scriptPath)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		runner, err = morph.LoadScript(data)
		if err != nil {
			return err
		}
		runner.SetLogger(logger.Named("script"))
	}

	host := buildGallery(cfg, start, logger)
	if runner != nil {
		host.SetScript(runner)
	}
	logger.Info("gallery ready",
		zap.Stringer("location", start),
		zap.Int("width", cfg.Viewport.Width),
		zap.Int("height", cfg.Viewport.Height))

	if err := morph.Run(host, morph.RunConfig{
		Title:              "morph gallery",
		Width:              cfg.Viewport.Width,
		Height:             cfg.Viewport.Height,
		ShowFPS:            debug || cfg.Debug,
		ExitWhenScriptDone: runner != nil,
	}); err != nil {
		return err
	}
	if runner != nil {
		if err := runner.Err(); err != nil {
			return fmt.Errorf("script failed: %w", err)
		}
		logger.Info("script passed")
	}
	return nil
}
