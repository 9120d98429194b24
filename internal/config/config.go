package config

import (
	"atlas.citydata.org/internal/models"
)

// Config holds all the configuration settings for our application.
// It is fully populated before the server starts listening and is never
// reassigned afterwards: dataset sources are read exactly once at startup.
type Config struct {
	Port           int
	Env            string
	AllowedOrigins []string
	Sources        []models.DatasetSource
}

// NewConfig creates a new instance of a Config struct.
func NewConfig(port int, env string, sources []models.DatasetSource) *Config {
	return &Config{
		Port:    port,
		Env:     env,
		Sources: sources,
	}
}

// FlatSources returns the sources that decode as a plain city list.
func (cfg *Config) FlatSources() []models.DatasetSource {
	return cfg.filterSources(false)
}

// GroupedSources returns the sources that decode as a group-key mapping.
func (cfg *Config) GroupedSources() []models.DatasetSource {
	return cfg.filterSources(true)
}

func (cfg *Config) filterSources(grouped bool) []models.DatasetSource {
	sources := make([]models.DatasetSource, 0, len(cfg.Sources))
	for _, source := range cfg.Sources {
		if source.Grouped == grouped {
			sources = append(sources, source)
		}
	}
	return sources
}
