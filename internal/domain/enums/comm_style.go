package enums

import "strings"

type CommStyle string

const (
	StyleDirect     CommStyle = "direct"
	StyleThoughtful CommStyle = "thoughtful"
	StyleEnergetic  CommStyle = "energetic"
	StyleCalm       CommStyle = "calm"
)

func ParseCommStyle(raw string) (CommStyle, bool) {
	switch CommStyle(strings.ToLower(strings.TrimSpace(raw))) {
	case StyleDirect:
		return StyleDirect, true
	case StyleThoughtful:
		return StyleThoughtful, true
	case StyleEnergetic:
		return StyleEnergetic, true
	case StyleCalm:
		return StyleCalm, true
	default:
		return "", false
	}
}
