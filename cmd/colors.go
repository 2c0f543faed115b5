package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/icco/chromachord/internal/color"
	"github.com/icco/chromachord/internal/progression"
	"github.com/spf13/cobra"
)

var colorsCmd = &cobra.Command{
	Use:   "colors [chords...]",
	Short: "Print the colour analysis of a progression",
	Long: `Print each chord of a progression with its roman numeral, harmonic function,
key colour, chord colour, blend and particles.

Example:
  chromachord colors --key Am Am7 Dm7 E7(b9) Am
`,
	RunE: runColors,
}

func init() {
	addProgressionFlags(colorsCmd)
	addColorFlags(colorsCmd)
	rootCmd.AddCommand(colorsCmd)
}

func runColors(cmd *cobra.Command, args []string) error {
	p, err := loadProgression(cmd, args)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderAnalysis(p, color.DeriveAll(p.Chords, p.Key, cfg.Rotation())))
	return nil
}

// renderAnalysis lays out one row per chord.
func renderAnalysis(p progression.Progression, palettes []color.Palette) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("#", "Chord", "Numeral", "Function", "Key colour", "Chord colour", "Blend", "Marble", "Particles")

	for i, c := range p.Chords {
		pal := palettes[i]
		numeral := pal.Analysis.RomanNumeral
		if !pal.Analysis.IsDiatonic {
			numeral = "(" + numeral + ")"
		}
		t.Row(
			fmt.Sprint(i+1),
			c.Symbol(),
			numeral,
			pal.Analysis.Function.String(),
			swatch(pal.KeyColor),
			swatch(pal.ChordColor),
			swatch(pal.Blend()),
			fmt.Sprintf("%.0f%%", pal.MarbleRatio*100),
			particleList(pal.Particles),
		)
	}

	title := p.Key.String()
	if p.Name != "" {
		title = p.Name + " in " + title
	}
	return lipgloss.JoinVertical(lipgloss.Left, lipgloss.NewStyle().Bold(true).Render(title), t.String())
}

func swatch(c color.ColorHSL) string {
	hex := c.Hex()
	block := lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("  ")
	return block + " " + hex
}

func particleList(ps []color.ParticleConfig) string {
	if len(ps) == 0 {
		return "-"
	}
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = string(p.Kind)
	}
	return strings.Join(names, " ")
}
