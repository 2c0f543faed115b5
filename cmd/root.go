package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/icco/chromachord/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	envFile    string
	logLevel   string
	logFile    string

	cfg       *config.Config
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "chromachord",
	Short: "Play chord progressions as colour and sound",
	Long: `chromachord plays chord progressions through a built-in synthesizer or a MIDI port
while painting each chord in a colour derived from its harmonic function in the key.

Tonic chords stay close to the key colour, subdominants drift and dominants pull away.
Sevenths tint the colour, tensions and alterations add particles.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "file of CHROMACHORD_* variables to load")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log destination: stdout, stderr or a file path (overrides config)")
}

// setup loads configuration in order: defaults, file, env, flags.
func setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}

	c, err := config.Load(configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	if err := c.ApplyEnv(); err != nil {
		return fmt.Errorf("invalid environment: %w", err)
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if logFile != "" {
		c.LogFile = logFile
	}
	applyPlayFlags(cmd, c)

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	closer, err := config.SetLogger(logrus.StandardLogger(), c.LogLevel, c.LogFile)
	if err != nil {
		return err
	}
	cfg, logCloser = c, closer

	logrus.WithFields(logrus.Fields{
		"config": configPath,
		"bpm":    c.BPM,
		"output": c.Output,
	}).Debug("config loaded")
	return nil
}

func teardown(*cobra.Command, []string) error {
	if logCloser != nil {
		return logCloser.Close()
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
