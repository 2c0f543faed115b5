package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/icco/chromachord/internal/color"
	"github.com/icco/chromachord/internal/theory"
	"github.com/spf13/cobra"
)

var diatonicCmd = &cobra.Command{
	Use:   "diatonic KEY",
	Short: "List the diatonic triads of a key",
	Long: `List the seven diatonic triads of a key with their numerals and colours.
Minor keys use the scale chosen with --scale or the config.

Examples:
  chromachord diatonic G
  chromachord diatonic "C# minor" --scale harmonic
`,
	Args: cobra.ExactArgs(1),
	RunE: runDiatonic,
}

func init() {
	addColorFlags(diatonicCmd)
	rootCmd.AddCommand(diatonicCmd)
}

func runDiatonic(cmd *cobra.Command, args []string) error {
	key, err := theory.ParseKey(args[0])
	if err != nil {
		return err
	}
	scale := cfg.ScaleType()
	chords := theory.Diatonic(key, scale)
	numerals := theory.DiatonicNumerals(key, scale)
	palettes := color.DeriveAll(chords, key, cfg.Rotation())

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Numeral", "Chord", "Function", "Colour")
	for i, c := range chords {
		t.Row(numerals[i], c.Symbol(), palettes[i].Analysis.Function.String(), swatch(palettes[i].ChordColor))
	}

	title := key.String()
	if key.Mode == theory.Minor {
		title += " (" + scale.String() + ")"
	}
	fmt.Fprintln(cmd.OutOrStdout(), lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Render(title), t.String()))
	return nil
}
