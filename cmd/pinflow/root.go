package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/agentstation/pinflow"
	"github.com/agentstation/pinflow/builtin"
	"github.com/agentstation/pinflow/builtin/script"
	"github.com/agentstation/pinflow/internal/config"
)

// app holds state shared by every command of one invocation.
type app struct {
	// Global flags.
	verbose    bool
	output     string
	logLevel   string
	logFormat  string
	scriptsDir string
	envFile    string
	noSchema   bool

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "pinflow",
		Short: "Run visual node graphs",
		Long: `pinflow loads graphs of typed nodes connected through pins from JSON or
YAML description documents, validates them and executes them.

Flow pins push control from the Begin node through the graph; data pins are
pulled on demand from pure nodes.`,
		Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVarP(&a.output, "output", "o", textFormat, "Output format (text, json, yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format (text, json)")
	flags.StringVar(&a.scriptsDir, "scripts", "", "Directory of Lua scripts to register as nodes")
	flags.StringVar(&a.envFile, "env-file", ".env", "Environment file to load")
	flags.BoolVar(&a.noSchema, "no-schema", false, "Skip JSON-schema validation of documents")

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		newRunCmd(a),
		newValidateCmd(a),
		newConvertCmd(a),
		newNodesCmd(a),
		newScriptsCmd(a),
		newServeCmd(a),
		newVersionCmd(a),
	)
	return rootCmd
}

// setup resolves configuration: defaults, then the env file and environment,
// then flags.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	switch a.output {
	case textFormat, jsonFormat, yamlFormat:
	default:
		return fmt.Errorf("unknown output format %q", a.output)
	}

	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.verbose {
		cfg.LogLevel = "debug"
	}
	if a.logFormat != "" {
		cfg.LogFormat = a.logFormat
	}
	if a.scriptsDir != "" {
		cfg.ScriptsDir = a.scriptsDir
	}
	if a.noSchema {
		cfg.SchemaValidation = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = cfg.NewLogger(cmd.ErrOrStderr())
	return nil
}

// registry builds the node catalog plus any scripts found in the configured
// scripts directory. Console Log nodes write to cmd's output.
func (a *app) registry(cmd *cobra.Command) (*pinflow.Registry, error) {
	reg, err := builtin.NewRegistry(builtin.WithConsole(cmd.OutOrStdout()))
	if err != nil {
		return nil, err
	}
	if a.cfg.ScriptsDir == "" {
		return reg, nil
	}

	manager := script.NewManager(a.cfg.ScriptsDir, a.logger)
	if err := manager.Discover(); err != nil {
		return nil, err
	}
	if err := manager.Register(reg); err != nil {
		return nil, fmt.Errorf("register scripts: %w", err)
	}
	a.logger.Debug("registered scripts", "dir", a.cfg.ScriptsDir, "count", len(manager.List()))
	return reg, nil
}
