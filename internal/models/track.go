package models

import "strings"

// TrackDNA captures the fixed character of a circuit used by the simulators.
type TrackDNA struct {
	Type       string
	Overtaking int // 1 (processional) .. 10 (slipstream festival)
}

// trackDNA maps circuit name fragments to their character. Unknown circuits
// fall back to a balanced mid-field profile.
var trackDNA = map[string]TrackDNA{
	"Bahrain":     {Type: "Balanced", Overtaking: 8},
	"Saudi":       {Type: "Street_Fast", Overtaking: 7},
	"Australia":   {Type: "Street_Fast", Overtaking: 6},
	"Japan":       {Type: "Technical", Overtaking: 4},
	"China":       {Type: "Balanced", Overtaking: 7},
	"Miami":       {Type: "Street_Fast", Overtaking: 6},
	"Emilia":      {Type: "Technical", Overtaking: 3},
	"Monaco":      {Type: "Street_Slow", Overtaking: 1},
	"Canada":      {Type: "Street_Fast", Overtaking: 7},
	"Spain":       {Type: "Technical", Overtaking: 5},
	"Austria":     {Type: "Power", Overtaking: 8},
	"Britain":     {Type: "High_Speed", Overtaking: 7},
	"Hungary":     {Type: "Technical", Overtaking: 3},
	"Belgium":     {Type: "High_Speed", Overtaking: 9},
	"Netherlands": {Type: "Technical", Overtaking: 4},
	"Italy":       {Type: "Power", Overtaking: 8},
	"Azerbaijan":  {Type: "Street_Fast", Overtaking: 8},
	"Singapore":   {Type: "Street_Slow", Overtaking: 2},
	"Austin":      {Type: "Balanced", Overtaking: 7},
	"Mexico":      {Type: "High_Altitude", Overtaking: 6},
	"Brazil":      {Type: "Balanced", Overtaking: 9},
	"Las Vegas":   {Type: "Street_Fast", Overtaking: 8},
	"Qatar":       {Type: "High_Speed", Overtaking: 6},
	"Abu Dhabi":   {Type: "Balanced", Overtaking: 5},
}

// LookupTrackDNA resolves a circuit name to its DNA by substring match.
func LookupTrackDNA(circuit string) TrackDNA {
	for key, dna := range trackDNA {
		if strings.Contains(circuit, key) {
			return dna
		}
	}
	return TrackDNA{Type: "Balanced", Overtaking: 5}
}
