package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"constructboq/config"
	"constructboq/services"
)

// App holds what the commands share.
type App struct {
	Settings services.Settings
	Now      func() time.Time
	// Styled enables colored output; off when stdout is not a terminal.
	Styled bool
}

// NewRootCmd creates the top-level "takeoff" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var configPath string
	var noColor bool

	root := &cobra.Command{
		Use:           "takeoff",
		Short:         "Price quantity takeoffs and prepare payment certificates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			app.Settings = cfg.Defaults
			if noColor {
				app.Styled = false
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv(config.EnvPrefix+"CONFIG"), "YAML config file")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		newBOQCmd(app),
		newCertificateCmd(app),
		newWordsCmd(app),
		newExportCmd(app),
		newDemoCmd(app),
	)
	return root
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// sessionFlags are the inputs shared by the commands that price a takeoff.
type sessionFlags struct {
	mode  string
	rates []string
}

func (f *sessionFlags) register(cmd *cobra.Command, defaultMode string) {
	cmd.Flags().StringVar(&f.mode, "mode", defaultMode, "estimation or payment")
	cmd.Flags().StringArrayVar(&f.rates, "rate", nil, `Manual unit rate as "Bill name=rate" (repeatable)`)
}

// loadSession reads an extraction JSON file and applies the manual rates.
func (a *App) loadSession(path string, f sessionFlags) (*services.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading takeoff: %w", err)
	}
	var t services.TakeoffResult
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing takeoff %s: %w", path, err)
	}

	s := services.NewSession(t, services.ParseMode(f.mode), a.Settings, a.now())
	if err := services.ValidateTakeoff(s.Takeoff); err != nil {
		return nil, err
	}
	for _, r := range f.rates {
		bill, rate, err := parseRate(r)
		if err != nil {
			return nil, err
		}
		s.SetRate(bill, rate)
	}
	return s, nil
}

func parseRate(s string) (string, float64, error) {
	bill, raw, ok := strings.Cut(s, "=")
	bill = strings.TrimSpace(bill)
	if !ok || bill == "" {
		return "", 0, fmt.Errorf("rate %q: want \"Bill name=rate\"", s)
	}
	rate, err := cast.ToFloat64E(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""))
	if err != nil {
		return "", 0, fmt.Errorf("rate %q: %w", s, err)
	}
	if !services.IsFinite(rate) {
		return "", 0, fmt.Errorf("rate %q: not a finite number", s)
	}
	return bill, rate, nil
}
