package entity

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// tablesFile is the structure of an entities YAML file
type tablesFile struct {
	Entities Factory `yaml:"entities"`
}

// LoadFactoryFromYAML reads entity tables from a YAML file. Tables the file
// leaves out keep their defaults.
func LoadFactoryFromYAML(filename string) (*Factory, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read entities file: %w", err)
	}
	return ParseFactory(data)
}

// ParseFactory decodes entity tables from YAML data.
func ParseFactory(data []byte) (*Factory, error) {
	file := tablesFile{Entities: *DefaultFactory()}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse entities YAML: %w", err)
	}
	if err := file.Entities.Validate(); err != nil {
		return nil, err
	}
	return &file.Entities, nil
}
