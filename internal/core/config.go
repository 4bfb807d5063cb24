package core

import (
	"fmt"
	"os"

	"github.com/jo-hoe/foodspots/internal/backend/database"
	"github.com/jo-hoe/foodspots/internal/common"
	"gopkg.in/yaml.v3"
)

type Database struct {
	Type             string `yaml:"type" validate:"oneof=file sqlite redis"`
	ConnectionString string `yaml:"connectionString" validate:"required"`
}

type Uploads struct {
	Directory string `yaml:"directory" validate:"required"`
	URLPrefix string `yaml:"urlPrefix" validate:"required"`
}

// CORSConfig holds the values sent unconditionally with every response.
type CORSConfig struct {
	AllowOrigin  string `yaml:"allowOrigin"`
	AllowMethods string `yaml:"allowMethods"`
	AllowHeaders string `yaml:"allowHeaders"`
}

type ServiceConfig struct {
	Port        int        `yaml:"port" validate:"min=1,max=65535"`
	Database    Database   `yaml:"database"`
	Collections []string   `yaml:"collections" validate:"required,min=1,dive,required,alphanum"`
	Uploads     Uploads    `yaml:"uploads"`
	CORS        CORSConfig `yaml:"cors"`
}

// DefaultConfig serves food and spots on port 5000, with data_<collection>.json
// files in the working directory and uploads in ./uploads.
func DefaultConfig() *ServiceConfig {
	return &ServiceConfig{
		Port: 5000,
		Database: Database{
			Type:             database.TypeFile,
			ConnectionString: ".",
		},
		Collections: []string{"food", "spots"},
		Uploads: Uploads{
			Directory: "uploads",
			URLPrefix: "/uploads",
		},
		CORS: CORSConfig{
			AllowOrigin:  "*",
			AllowMethods: "GET, POST, PUT, DELETE",
			AllowHeaders: "Content-Type",
		},
	}
}

// LoadConfig loads configuration from the specified YAML file.
// Keys missing from the file keep their default value.
func LoadConfig(configPath string) (*ServiceConfig, error) {
	// Read the config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	// Parse YAML
	config := DefaultConfig()
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", configPath, err)
	}

	return config, nil
}

func (config *ServiceConfig) Validate() error {
	if err := common.ValidateStruct(config); err != nil {
		return err
	}
	return validateCollections(config.Collections)
}

// validateCollections ensures collection names are unique
func validateCollections(collections []string) error {
	seenNames := make(map[string]bool)

	for _, name := range collections {
		if seenNames[name] {
			return fmt.Errorf("duplicate collection name: %s", name)
		}
		seenNames[name] = true
	}

	return nil
}
