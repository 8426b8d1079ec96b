package main

import "math/rand"

// Theme is a named pool of candidate secret words. Every entry matches
// the [A-Z]{5} word contract.
type Theme struct {
	Name  string   `json:"name"`
	Words []string `json:"words"`
}

var themes = []Theme{
	{
		Name: "Medieval",
		Words: []string{
			"SWORD", "LANCE", "ARMOR", "CROWN", "QUEEN",
			"TOWER", "SIEGE", "JOUST", "BLADE", "STEED",
			"KNAVE", "FEAST", "REALM", "NOBLE", "CREST",
			"FORGE", "ANVIL", "GUARD", "HONOR", "TORCH",
			"HORSE", "ARROW", "QUEST", "ROYAL", "CHAIN",
			"PLATE", "MOUNT", "GRAIL", "SERFS", "DUCHY",
		},
	},
	{
		Name: "Sci-Fi",
		Words: []string{
			"ALIEN", "LASER", "ROBOT", "CYBER", "SPACE",
			"DRONE", "CLOAK", "ORBIT", "COMET", "PROBE",
			"TITAN", "PLUTO", "CLONE", "MECHA", "PHASE",
			"RADAR", "SONIC", "VIRUS", "HYPER", "PULSE",
			"PLASM", "QUANT", "STARS", "CRAFT", "LUNAR",
			"SOLAR", "GAMMA", "IONIC", "ROVER", "WARPS",
		},
	},
	{
		Name: "Standard",
		Words: []string{
			"ABOUT", "ABOVE", "ACTOR", "ACUTE", "ADMIT",
			"ADOPT", "ADULT", "AFTER", "AGAIN", "AGENT",
			"AGREE", "AHEAD", "ALARM", "ALBUM", "ALERT",
			"ALIKE", "ALIVE", "ALLOW", "ALONE", "ALONG",
			"ALTER", "ANGER", "ANGLE", "APART", "APPLE",
			"APPLY", "ARENA", "ARGUE", "ARISE", "ARRAY",
			"ASIDE", "ASSET", "AUDIO", "AUDIT", "AVOID",
			"AWARD", "AWARE", "BASIC", "BEACH", "BEGIN",
		},
	},
}

const wordOptionCount = 5

// themeByIndex falls back to the first theme for out-of-range indexes,
// treating them as stale client input.
func themeByIndex(index int) (Theme, int) {
	if index < 0 || index >= len(themes) {
		return themes[0], 0
	}
	return themes[index], index
}

// pickWordOptions samples wordOptionCount distinct words from the
// theme's pool.
func pickWordOptions(theme Theme) []string {
	shuffled := make([]string, len(theme.Words))
	copy(shuffled, theme.Words)

	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if len(shuffled) > wordOptionCount {
		shuffled = shuffled[:wordOptionCount]
	}
	return shuffled
}
