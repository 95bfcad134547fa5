package config

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Note constraints
	MaxTitleLength   int
	MaxContentLength int
	MaxTasksPerNote  int
	UntitledLabel    string

	// XP reward constraints
	MinXPValue     int
	MaxXPValue     int
	DefaultXPValue int

	// Progression
	MaxLevel   int
	XPPerLevel int

	// Connection constraints
	MaxLabelLength       int
	AllowSelfConnections bool
	AllowDuplicateEdges  bool

	// Storage
	SaveRetryLimit int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// Note constraints
		MaxTitleLength:   200,
		MaxContentLength: 50000,
		MaxTasksPerNote:  100,
		UntitledLabel:    "Untitled note",

		// XP reward constraints
		MinXPValue:     1,
		MaxXPValue:     10,
		DefaultXPValue: 5,

		// Progression: level*XPPerLevel experience needed for the next level
		MaxLevel:   20,
		XPPerLevel: 100,

		// Connection constraints
		MaxLabelLength:       100,
		AllowSelfConnections: false,
		AllowDuplicateEdges:  false,

		// Storage
		SaveRetryLimit: 3,
	}
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// More permissive for development
	config.MaxContentLength = 500000
	config.MaxTasksPerNote = 1000

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}
