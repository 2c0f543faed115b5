package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/icco/chromachord/internal/color"
	"github.com/icco/chromachord/internal/theory"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)
)

// maxClockCells caps the clock bar for long progressions.
const maxClockCells = 32

// Swatch renders a solid block of c.
func Swatch(c color.ColorHSL, width, height int) string {
	row := lipgloss.NewStyle().
		Foreground(lipgloss.Color(c.Hex())).
		Render(strings.Repeat("█", width))
	rows := make([]string, height)
	for i := range rows {
		rows[i] = row
	}
	return strings.Join(rows, "\n")
}

// renderMarble draws one bar split between the key and chord colours. The
// key share is the marble ratio.
func renderMarble(key, chord color.ColorHSL, ratio float64, width int) string {
	keyCells := int(math.Round(clampUnit(ratio) * float64(width)))
	keyPart := lipgloss.NewStyle().Foreground(lipgloss.Color(key.Hex())).Render(strings.Repeat("█", keyCells))
	chordPart := lipgloss.NewStyle().Foreground(lipgloss.Color(chord.Hex())).Render(strings.Repeat("█", width-keyCells))
	return keyPart + chordPart + subtleStyle.Render(fmt.Sprintf(" %3.0f%% key", clampUnit(ratio)*100))
}

// renderBars draws the key and chord colours as separate bars sized by
// their share of the blend.
func renderBars(key, chord color.ColorHSL, ratio float64, width int) string {
	r := clampUnit(ratio)
	keyCells := int(math.Round(r * float64(width)))
	keyBar := lipgloss.NewStyle().Foreground(lipgloss.Color(key.Hex())).Render(strings.Repeat("▆", keyCells))
	chordBar := lipgloss.NewStyle().Foreground(lipgloss.Color(chord.Hex())).Render(strings.Repeat("▆", width-keyCells))
	return fmt.Sprintf("key   %s %s\nchord %s %s",
		keyBar, subtleStyle.Render(key.Hex()),
		chordBar, subtleStyle.Render(chord.Hex()))
}

// renderParticles shows one dot per ten particles in each particle colour.
func renderParticles(particles []color.ParticleConfig) string {
	if len(particles) == 0 {
		return subtleStyle.Render("·")
	}
	parts := make([]string, 0, len(particles))
	for _, p := range particles {
		glyph := "•"
		if p.Size > 3 {
			glyph = "●"
		}
		dots := strings.Repeat(glyph, max(1, p.Count/10))
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color.Hex())).Render(dots)+
			subtleStyle.Render(" "+string(p.Kind)))
	}
	return strings.Join(parts, "  ")
}

// renderChordStrip lays out every chord on its colour with the roman
// numeral beneath. The sounding chord is underlined.
func renderChordStrip(chords []theory.Chord, palettes []color.Palette, current int) string {
	if len(chords) == 0 {
		return subtleStyle.Render("(no chords)")
	}
	cells := make([]string, 0, len(chords))
	for i, c := range chords {
		p := palettes[i]
		style := lipgloss.NewStyle().
			Width(10).
			Align(lipgloss.Center).
			Foreground(lipgloss.Color(textColor(p.ChordColor))).
			Background(lipgloss.Color(p.ChordColor.Hex()))
		if i == current {
			style = style.Bold(true).Underline(true)
		}
		numeral := p.Analysis.RomanNumeral
		if !p.Analysis.IsDiatonic {
			numeral = "(" + numeral + ")"
		}
		cells = append(cells, lipgloss.JoinVertical(lipgloss.Center,
			style.Render(c.Symbol()),
			subtleStyle.Width(10).Align(lipgloss.Center).Render(numeral),
		))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// renderDiatonic lists the seven degree chords of key with their colours.
func renderDiatonic(key theory.Key, scale theory.MinorScaleType, rotation color.HueRotation) string {
	chords := theory.Diatonic(key, scale)
	numerals := theory.DiatonicNumerals(key, scale)
	palettes := color.DeriveAll(chords, key, rotation)

	label := fmt.Sprintf("Diatonic chords of %s", key)
	if key.Mode == theory.Minor {
		label += fmt.Sprintf(" (%s minor)", scale)
	}
	cells := make([]string, 0, len(chords))
	for i, c := range chords {
		style := lipgloss.NewStyle().
			Width(8).
			Align(lipgloss.Center).
			Foreground(lipgloss.Color(textColor(palettes[i].ChordColor))).
			Background(lipgloss.Color(palettes[i].ChordColor.Hex()))
		cells = append(cells, lipgloss.JoinVertical(lipgloss.Center,
			style.Render(c.Symbol()),
			subtleStyle.Width(8).Align(lipgloss.Center).Render(numerals[i]),
		))
	}
	return subtleStyle.Render(label) + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// renderClockBar draws one cell per beat, marking downbeats, with the
// played part filled in a cyan to magenta gradient.
func renderClockBar(position, totalBeats float64, timeSignature int, isPlaying bool) string {
	// Colors for the clock bar - gradient from cyan to magenta
	colors := []string{
		"#00FFFF", "#00E5FF", "#00CCFF", "#00B2FF",
		"#0099FF", "#0080FF", "#0066FF", "#1A4DFF",
		"#3333FF", "#4D1AFF", "#6600FF", "#8000FF",
		"#9900FF", "#B300FF", "#CC00FF", "#FF00FF",
	}

	cells := int(math.Ceil(totalBeats))
	scale := 1.0
	if cells > maxClockCells {
		scale = totalBeats / maxClockCells
		cells = maxClockCells
	}
	if timeSignature <= 0 {
		timeSignature = 4
	}
	currentCell := int(position / scale)

	bar := strings.Builder{}
	bar.WriteString("Clock ")

	for i := 0; i < cells; i++ {
		var cell string
		var cellStyle lipgloss.Style
		c := colors[i*len(colors)/cells]

		if isPlaying && i == currentCell {
			// Current playing position - bright indicator
			cell = "▶"
			cellStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(lipgloss.Color(c)).
				Bold(true)
		} else if isPlaying && i < currentCell {
			cell = "█"
			cellStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(c))
		} else {
			cell = "·"
			if scale == 1 && i%timeSignature == 0 {
				cell = "•"
			}
			cellStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#444444"))
		}

		bar.WriteString(cellStyle.Render(cell))
	}

	status := " Stopped"
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	if isPlaying {
		status = fmt.Sprintf(" Playing %.1f/%.0f", position, totalBeats)
		statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	}
	bar.WriteString(statusStyle.Render(status))

	return bar.String()
}

// textColor picks black or white text for legibility on bg.
func textColor(bg color.ColorHSL) string {
	if bg.L > 55 {
		return "#000000"
	}
	return "#FFFFFF"
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
