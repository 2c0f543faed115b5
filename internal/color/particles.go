package color

import (
	"github.com/icco/chromachord/internal/theory"
)

// ParticleKind tags the chord tone a particle stream represents.
type ParticleKind string

const (
	ParticleNinth          ParticleKind = "tension-9"
	ParticleEleventh       ParticleKind = "tension-11"
	ParticleThirteenth     ParticleKind = "tension-13"
	ParticleFlatNinth      ParticleKind = "alteration-b9"
	ParticleSharpNinth     ParticleKind = "alteration-#9"
	ParticleSharpEleventh  ParticleKind = "alteration-#11"
	ParticleFlatThirteenth ParticleKind = "alteration-b13"
)

// ParticleConfig describes one particle stream for the renderer.
type ParticleConfig struct {
	Kind  ParticleKind
	Color ColorHSL
	Count int
	Size  int
}

// Alterations are denser and larger than tensions.
const (
	tensionCount    = 30
	tensionSize     = 3
	alterationCount = 70
	alterationSize  = 6
)

var tensionParticles = map[theory.Tension]ParticleConfig{
	theory.Ninth:      {Kind: ParticleNinth, Color: ColorHSL{H: 200, S: 80, L: 70}},
	theory.Eleventh:   {Kind: ParticleEleventh, Color: ColorHSL{H: 140, S: 70, L: 65}},
	theory.Thirteenth: {Kind: ParticleThirteenth, Color: ColorHSL{H: 280, S: 70, L: 72}},
}

var alterationParticles = map[theory.Alteration]ParticleConfig{
	theory.FlatNinth:      {Kind: ParticleFlatNinth, Color: ColorHSL{H: 0, S: 90, L: 55}},
	theory.SharpNinth:     {Kind: ParticleSharpNinth, Color: ColorHSL{H: 20, S: 95, L: 55}},
	theory.SharpEleventh:  {Kind: ParticleSharpEleventh, Color: ColorHSL{H: 50, S: 95, L: 55}},
	theory.FlatThirteenth: {Kind: ParticleFlatThirteenth, Color: ColorHSL{H: 320, S: 90, L: 55}},
}

// Particles returns one stream per tension and alteration. Sevenths never
// produce particles.
func Particles(chord theory.Chord) []ParticleConfig {
	var out []ParticleConfig
	for _, t := range chord.Tensions.List() {
		p := tensionParticles[t]
		p.Count = tensionCount
		p.Size = tensionSize
		out = append(out, p)
	}
	for _, a := range chord.Alterations.List() {
		p := alterationParticles[a]
		p.Count = alterationCount
		p.Size = alterationSize
		out = append(out, p)
	}
	return out
}
