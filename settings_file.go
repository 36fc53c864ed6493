package datacontract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/marius-klimantavicius/data-contracts-sub001/contract"
)

// settingsFile is the on-disk form of Settings. Names are written as
// {namespace}local.
type settingsFile struct {
	MaxItems                 *int     `toml:"max_items" yaml:"max_items"`
	RootName                 string   `toml:"root_name" yaml:"root_name"`
	KnownTypes               []string `toml:"known_types" yaml:"known_types"`
	IgnoreExtensionData      bool     `toml:"ignore_extension_data" yaml:"ignore_extension_data"`
	PreserveObjectReferences bool     `toml:"preserve_object_references" yaml:"preserve_object_references"`
	SerializeReadOnlyTypes   bool     `toml:"serialize_read_only_types" yaml:"serialize_read_only_types"`
}

// LoadSettingsFile reads settings from a TOML (.toml) or YAML (.yaml, .yml)
// file. Known types are looked up by name in resolver.
func LoadSettingsFile(path string, resolver contract.Resolver) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings file: %w", err)
	}
	var format string
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		format = "toml"
	case ".yaml", ".yml":
		format = "yaml"
	default:
		return Settings{}, fmt.Errorf("settings file %s: unsupported extension %q", path, ext)
	}
	s, err := ParseSettings(data, format, resolver)
	if err != nil {
		return Settings{}, fmt.Errorf("settings file %s: %w", path, err)
	}
	return s, nil
}

// ParseSettings decodes settings in format "toml" or "yaml".
func ParseSettings(data []byte, format string, resolver contract.Resolver) (Settings, error) {
	var f settingsFile
	switch format {
	case "toml":
		if _, err := toml.Decode(string(data), &f); err != nil {
			return Settings{}, fmt.Errorf("parse toml: %w", err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return Settings{}, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return Settings{}, fmt.Errorf("unsupported settings format %q", format)
	}
	return f.settings(resolver)
}

func (f *settingsFile) settings(resolver contract.Resolver) (Settings, error) {
	s := NewSettings().
		WithIgnoreExtensionData(f.IgnoreExtensionData).
		WithPreserveObjectReferences(f.PreserveObjectReferences).
		WithSerializeReadOnlyTypes(f.SerializeReadOnlyTypes)
	if f.MaxItems != nil {
		s = s.WithMaxItems(*f.MaxItems)
	}
	if f.RootName != "" {
		name, err := contract.ParseQName(f.RootName)
		if err != nil {
			return Settings{}, fmt.Errorf("root_name: %w", err)
		}
		s = s.WithRootName(name)
	}
	if len(f.KnownTypes) > 0 && resolver == nil {
		return Settings{}, fmt.Errorf("known_types requires a resolver")
	}
	for _, text := range f.KnownTypes {
		name, err := contract.ParseQName(text)
		if err != nil {
			return Settings{}, fmt.Errorf("known_types: %w", err)
		}
		c, ok := resolver.DataContractByName(name)
		if !ok {
			return Settings{}, fmt.Errorf("known_types: no contract named %s", name)
		}
		s = s.WithKnownTypes(c)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}
