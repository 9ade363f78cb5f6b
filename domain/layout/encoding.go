// Package layout positions the people of a network for rendering and
// derives the visual encoding shared by every view.
package layout

import (
	"peoplenet/domain/config"
	"peoplenet/domain/core/valueobjects"
)

// Palette runs from cool to warm, one color per strength rank
var Palette = [valueobjects.MaxStrengthRank]string{
	"#94a3b8", // fleeting
	"#60a5fa", // acquaintance
	"#34d399", // casual
	"#facc15", // working
	"#fb923c", // strong
	"#ef4444", // core
}

const (
	RootColor  = "#6366f1"
	GroupColor = "#cbd5e1"
)

// NodeRadius grows linearly with strength rank
func NodeRadius(s valueobjects.Strength, cfg *config.DomainConfig) float64 {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return cfg.BaseNodeRadius + float64(valueobjects.Rank(s))*cfg.NodeRadiusPerRank
}

// NodeColor picks the palette entry for a strength; warmer is stronger
func NodeColor(s valueobjects.Strength) string {
	return Palette[ColorIndex(s)]
}

// ColorIndex is the palette position of a strength, 0 for the coolest
func ColorIndex(s valueobjects.Strength) int {
	return valueobjects.Rank(s) - 1
}
