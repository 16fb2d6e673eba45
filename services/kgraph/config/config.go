// Package config loads kgraph.config.yaml, the optional build-time
// configuration file for the edge extractors: the linkable-field
// allow-list, the namespace-prefix table for bare class-name
// normalisation, per-Def structural-reference tags, the extraction mode,
// and the worker count.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

// ExtractionMode selects the Phase 1 code->code strategy (§4.1).
type ExtractionMode string

const (
	ModeSyntactic ExtractionMode = "syntactic"
	ModeSemantic  ExtractionMode = "semantic"
)

// Config is the parsed form of kgraph.config.yaml. All fields have
// defaults baked into default_config.yaml; a project-level config file
// only needs to set the fields it wants to override, since Load merges
// the parsed project file's non-zero fields over the embedded defaults.
type Config struct {
	Extraction       ExtractionConfig    `yaml:"extraction"`
	LinkableFields   LinkableFieldConfig `yaml:"linkable_fields"`
	Namespaces       NamespaceConfig     `yaml:"namespaces"`
	ClassNameHeuristics ClassNameHeuristics `yaml:"class_name_heuristics"`
	DefReferences    map[string][]string `yaml:"def_references"`
}

// ClassNameHeuristics backstops the "does this text look like a class
// name" check in Phase 2 when a value isn't dotted (§4.1 Phase 2).
type ClassNameHeuristics struct {
	KnownPrefixes []string `yaml:"known_prefixes"`
	KnownSuffixes []string `yaml:"known_suffixes"`
}

// ExtractionConfig controls Phase 1 and build concurrency.
type ExtractionConfig struct {
	Mode        ExtractionMode `yaml:"mode"`
	WorkerCount int            `yaml:"worker_count"`
}

// LinkableFieldConfig is the static set of linkable field names Phase 2
// reads (§4.1 Phase 2). It is the whole set: no field names are
// discovered from the Def type schema.
type LinkableFieldConfig struct {
	Seed []string `yaml:"seed"`
}

// NamespaceConfig maps bare-class-name prefixes/suffixes to fully
// qualified namespaces (§4.1 Phase 2), plus a default namespace used when
// nothing else matches.
type NamespaceConfig struct {
	Prefixes map[string]string `yaml:"prefixes"`
	Suffixes map[string]string `yaml:"suffixes"`
	Default  string            `yaml:"default"`
}

// Default returns the embedded baseline configuration.
func Default() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing embedded defaults: %w", err)
	}
	return &cfg, nil
}

// Load reads kgraph.config.yaml from projectRoot, merging it over the
// embedded defaults. A missing config file is not an error — zero-config
// works out of the box, the same contract this codebase's trace.config.yaml
// loader uses. Only a config file that exists but fails to parse is an
// error.
func Load(projectRoot string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if projectRoot == "" {
		return cfg, nil
	}

	path := filepath.Join(projectRoot, "kgraph.config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	mergeInto(cfg, &override)
	return cfg, nil
}

func mergeInto(base, override *Config) {
	if override.Extraction.Mode != "" {
		base.Extraction.Mode = override.Extraction.Mode
	}
	if override.Extraction.WorkerCount != 0 {
		base.Extraction.WorkerCount = override.Extraction.WorkerCount
	}
	if len(override.LinkableFields.Seed) > 0 {
		base.LinkableFields.Seed = append(base.LinkableFields.Seed, override.LinkableFields.Seed...)
	}
	for k, v := range override.Namespaces.Prefixes {
		if base.Namespaces.Prefixes == nil {
			base.Namespaces.Prefixes = map[string]string{}
		}
		base.Namespaces.Prefixes[k] = v
	}
	for k, v := range override.Namespaces.Suffixes {
		if base.Namespaces.Suffixes == nil {
			base.Namespaces.Suffixes = map[string]string{}
		}
		base.Namespaces.Suffixes[k] = v
	}
	if override.Namespaces.Default != "" {
		base.Namespaces.Default = override.Namespaces.Default
	}
	if len(override.ClassNameHeuristics.KnownPrefixes) > 0 {
		base.ClassNameHeuristics.KnownPrefixes = append(base.ClassNameHeuristics.KnownPrefixes, override.ClassNameHeuristics.KnownPrefixes...)
	}
	if len(override.ClassNameHeuristics.KnownSuffixes) > 0 {
		base.ClassNameHeuristics.KnownSuffixes = append(base.ClassNameHeuristics.KnownSuffixes, override.ClassNameHeuristics.KnownSuffixes...)
	}
	for k, v := range override.DefReferences {
		if base.DefReferences == nil {
			base.DefReferences = map[string][]string{}
		}
		base.DefReferences[k] = v
	}
}
