package expanel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads and parses a config file from the given path.
// Supported formats: JSON (.json), YAML (.yaml, .yml).
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q: use .json, .yaml, or .yml", ext)
	}

	return &cfg, nil
}

// configSchema is the JSON Schema every loaded config must satisfy.
const configSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["site_title", "apps"],
  "properties": {
    "listen": {"type": "string"},
    "site_title": {"type": "string", "minLength": 1},
    "app_name": {"type": "string", "pattern": "^[a-z][a-z0-9_-]*$"},
    "static_prefix": {"type": "string"},
    "database": {
      "type": "object",
      "properties": {
        "driver": {"enum": ["", "sqlite", "postgres"]},
        "dsn": {"type": "string"}
      }
    },
    "apps": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["label", "models"],
        "properties": {
          "label": {"type": "string", "minLength": 1},
          "models": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["name"],
              "properties": {
                "name": {"type": "string", "minLength": 1},
                "verbose_plural": {"type": "string"},
                "icon": {"type": "string"}
              }
            }
          }
        }
      }
    },
    "plugins": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "enabled": {"type": "boolean"},
          "config": {"type": "object"}
        }
      }
    },
    "site_menu": {
      "type": "array",
      "items": {"$ref": "#/$defs/menu_item"}
    }
  },
  "$defs": {
    "menu_item": {
      "type": "object",
      "required": ["title"],
      "properties": {
        "title": {"type": "string", "minLength": 1},
        "url": {"type": "string"},
        "icon": {"type": "string"},
        "perm": {"type": "string"},
        "menus": {"type": "array", "items": {"$ref": "#/$defs/menu_item"}}
      }
    }
  }
}`

// ValidateConfig validates a Config against the embedded schema and the
// cross-field rules the schema cannot express.
func ValidateConfig(cfg Config) error {
	sch, err := jsonschema.CompileString("config.schema.json", configSchema)
	if err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Database.Driver == "postgres" && cfg.Database.DSN == "" {
		return fmt.Errorf("postgres database requires a dsn")
	}
	seen := map[string]bool{}
	for _, p := range cfg.Plugins {
		if seen[p.Name] {
			return fmt.Errorf("duplicate plugin %q", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}
