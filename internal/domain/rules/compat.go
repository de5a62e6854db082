package rules

import (
	"github.com/ivanmatek/ember/internal/domain/enums"
	"github.com/ivanmatek/ember/internal/domain/model"
)

// Score weights: shared interests dominate, then communication style, then
// vibe.
const (
	SharedInterestWeight = 3
	StyleWeight          = 2
	VibeWeight           = 1
)

// Compatibility is stored as a directed adjacency so both directions are
// spelled out explicitly. Tests verify the tables are symmetric; the scorer
// itself never assumes it.
var vibeCompat = map[enums.Vibe][]enums.Vibe{
	enums.VibeDeep:         {enums.VibeDeep, enums.VibeSupportive},
	enums.VibeLighthearted: {enums.VibeLighthearted, enums.VibeCreative},
	enums.VibeSupportive:   {enums.VibeSupportive, enums.VibeDeep},
	enums.VibeCreative:     {enums.VibeCreative, enums.VibeLighthearted},
}

var styleCompat = map[enums.CommStyle][]enums.CommStyle{
	enums.StyleDirect:     {enums.StyleDirect, enums.StyleEnergetic},
	enums.StyleThoughtful: {enums.StyleThoughtful, enums.StyleCalm},
	enums.StyleEnergetic:  {enums.StyleEnergetic, enums.StyleDirect},
	enums.StyleCalm:       {enums.StyleCalm, enums.StyleThoughtful},
}

func VibesCompatible(a, b enums.Vibe) bool {
	for _, v := range vibeCompat[a] {
		if v == b {
			return true
		}
	}
	return false
}

func StylesCompatible(a, b enums.CommStyle) bool {
	for _, s := range styleCompat[a] {
		if s == b {
			return true
		}
	}
	return false
}

// SharedInterests counts exact case-sensitive overlap between two interest
// lists, treating each list as a set.
func SharedInterests(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	seen := make(map[string]struct{}, len(a))
	for _, interest := range a {
		seen[interest] = struct{}{}
	}

	shared := 0
	counted := make(map[string]struct{}, len(b))
	for _, interest := range b {
		if _, dup := counted[interest]; dup {
			continue
		}
		counted[interest] = struct{}{}
		if _, ok := seen[interest]; ok {
			shared++
		}
	}
	return shared
}

// Score computes the compatibility score between two profiles. Pure: no I/O,
// no state, always >= 0.
func Score(self, candidate model.Profile) int {
	score := SharedInterestWeight * SharedInterests(self.Interests, candidate.Interests)
	if StylesCompatible(self.CommStyle, candidate.CommStyle) {
		score += StyleWeight
	}
	if VibesCompatible(self.Vibe, candidate.Vibe) {
		score += VibeWeight
	}
	return score
}
