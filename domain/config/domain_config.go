package config

import (
	"errors"
	"fmt"
)

// DomainConfig holds all configurable business rules and layout constants.
// Field tags name the keys of the domain rules YAML file.
type DomainConfig struct {
	// Network constraints
	RootName            string `yaml:"root_name"`
	MaxPeoplePerNetwork int    `yaml:"max_people_per_network"`
	MaxNameLength       int    `yaml:"max_name_length"`
	MaxTagsPerPerson    int    `yaml:"max_tags_per_person"`
	MaxInteractions     int    `yaml:"max_interactions"`

	// Edge rendering
	BaseStrokeWidth     float64 `yaml:"base_stroke_width"`
	StrokeWidthPerRank  float64 `yaml:"stroke_width_per_rank"`
	ExternalUnknownName string  `yaml:"external_unknown_name"`

	// Node encoding
	BaseNodeRadius    float64 `yaml:"base_node_radius"`
	NodeRadiusPerRank float64 `yaml:"node_radius_per_rank"`
	RootNodeRadius    float64 `yaml:"root_node_radius"`
	GroupNodeRadius   float64 `yaml:"group_node_radius"`

	// Static circular layout
	CircleRadius float64 `yaml:"circle_radius"`

	// Force simulation
	ChargeStrength  float64 `yaml:"charge_strength"`
	LinkDistance    float64 `yaml:"link_distance"`
	LinkStrength    float64 `yaml:"link_strength"`
	CenterStrength  float64 `yaml:"center_strength"`
	CollisionMargin float64 `yaml:"collision_margin"`
	AlphaMin        float64 `yaml:"alpha_min"`
	AlphaDecay      float64 `yaml:"alpha_decay"`
	VelocityDecay   float64 `yaml:"velocity_decay"`
	DefaultTicks    int     `yaml:"default_ticks"`
	MaxTicks        int     `yaml:"max_ticks"`

	// Camera
	MinZoom    float64 `yaml:"min_zoom"`
	MaxZoom    float64 `yaml:"max_zoom"`
	FitPadding float64 `yaml:"fit_padding"`

	// Validation settings
	AllowSelfIntroduction bool `yaml:"allow_self_introduction"`
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		RootName:            "You",
		MaxPeoplePerNetwork: 5000,
		MaxNameLength:       200,
		MaxTagsPerPerson:    20,
		MaxInteractions:     500,

		BaseStrokeWidth:     1,
		StrokeWidthPerRank:  0.5,
		ExternalUnknownName: "Unknown",

		BaseNodeRadius:    6,
		NodeRadiusPerRank: 2,
		RootNodeRadius:    22,
		GroupNodeRadius:   16,

		CircleRadius: 200,

		// alpha decay matches a 300-tick cooling from 1 to 0.001
		ChargeStrength:  -180,
		LinkDistance:    80,
		LinkStrength:    0.3,
		CenterStrength:  0.05,
		CollisionMargin: 3,
		AlphaMin:        0.001,
		AlphaDecay:      0.0228,
		VelocityDecay:   0.4,
		DefaultTicks:    300,
		MaxTicks:        2000,

		MinZoom:    0.1,
		MaxZoom:    8,
		FitPadding: 40,

		AllowSelfIntroduction: false,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()
	config.MaxPeoplePerNetwork = 2000
	config.MaxTicks = 1000
	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()
	config.MaxPeoplePerNetwork = 100000
	config.MaxTicks = 5000
	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks that the rules are internally consistent
func (c *DomainConfig) Validate() error {
	var errs []error
	if c.RootName == "" {
		errs = append(errs, errors.New("root_name cannot be empty"))
	}
	if c.DefaultTicks <= 0 || c.MaxTicks < c.DefaultTicks {
		errs = append(errs, fmt.Errorf("ticks: need 0 < default_ticks (%d) <= max_ticks (%d)", c.DefaultTicks, c.MaxTicks))
	}
	if c.AlphaDecay <= 0 || c.AlphaDecay >= 1 {
		errs = append(errs, fmt.Errorf("alpha_decay must be in (0,1), got %v", c.AlphaDecay))
	}
	if c.VelocityDecay < 0 || c.VelocityDecay > 1 {
		errs = append(errs, fmt.Errorf("velocity_decay must be in [0,1], got %v", c.VelocityDecay))
	}
	if c.MinZoom <= 0 || c.MaxZoom < c.MinZoom {
		errs = append(errs, fmt.Errorf("zoom: need 0 < min_zoom (%v) <= max_zoom (%v)", c.MinZoom, c.MaxZoom))
	}
	if c.BaseNodeRadius <= 0 || c.NodeRadiusPerRank < 0 || c.StrokeWidthPerRank < 0 {
		errs = append(errs, errors.New("node radius and stroke width must grow with strength"))
	}
	return errors.Join(errs...)
}

// Clone returns a copy that can be modified independently
func (c *DomainConfig) Clone() *DomainConfig {
	out := *c
	return &out
}

// Provider hands out the domain rules in effect. Implementations may swap
// the rules at runtime, so callers fetch them per operation.
type Provider interface {
	Current() *DomainConfig
}

// Static is a Provider whose rules never change
type Static struct {
	cfg *DomainConfig
}

// NewStatic wraps cfg; nil means the defaults
func NewStatic(cfg *DomainConfig) *Static {
	if cfg == nil {
		cfg = DefaultDomainConfig()
	}
	return &Static{cfg: cfg}
}

// Current implements Provider
func (s *Static) Current() *DomainConfig { return s.cfg }
