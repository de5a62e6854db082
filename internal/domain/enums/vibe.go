package enums

import "strings"

type Vibe string

const (
	VibeDeep         Vibe = "deep"
	VibeLighthearted Vibe = "lighthearted"
	VibeSupportive   Vibe = "supportive"
	VibeCreative     Vibe = "creative"
)

func ParseVibe(raw string) (Vibe, bool) {
	switch Vibe(strings.ToLower(strings.TrimSpace(raw))) {
	case VibeDeep:
		return VibeDeep, true
	case VibeLighthearted:
		return VibeLighthearted, true
	case VibeSupportive:
		return VibeSupportive, true
	case VibeCreative:
		return VibeCreative, true
	default:
		return "", false
	}
}
