// Package config loads and saves the persistable subset of Options as
// YAML, the way SirVenger-s3_demo's internal/config package loads service
// configuration: a plain struct with yaml tags, read with yaml.Unmarshal.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML-serializable subset of partfile.Options. Callback
// fields (lifecycle events) and handles (Logger, Metrics) have no YAML
// representation and are left to the caller to set after loading.
type FileConfig struct {
	Folder              string `yaml:"folder"`
	PartFolder          string `yaml:"part_folder"`
	PartExtension       string `yaml:"part_extension"`
	Overwrite           bool   `yaml:"overwrite"`
	PartOverwrite       bool   `yaml:"part_overwrite"`
	AutoCreate          bool   `yaml:"auto_create"`
	DeleteOnDispose     bool   `yaml:"delete_on_dispose"`
	DeletePartOnDispose bool   `yaml:"delete_part_on_dispose"`
	DeletePartOnCreate  bool   `yaml:"delete_part_on_create"`
	StayAlive           bool   `yaml:"stay_alive"`
	FirstChunksize      int32  `yaml:"first_chunksize"`
	LastChunksize       int32  `yaml:"last_chunksize"`
	FlushOnEveryChunk   bool   `yaml:"flush_on_every_chunk"`
}

// Load reads and parses a YAML config file.
func Load(path string) (FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var c FileConfig
	if err := yaml.Unmarshal(b, &c); err != nil {
		return FileConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return c, nil
}

// Save marshals c as YAML and writes it to path.
func Save(path string, c FileConfig) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
