package fundconfig

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML or TOML fund definition and returns it with the raw bytes.
// Unknown fields fail the load, so typos never pass silently.
// A relative spreadsheet path is resolved against the definition's directory.
func Load(path string) (*Fund, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var f Fund
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, data, fmt.Errorf("%s: %w", path, err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, data, fmt.Errorf("%s: %s", path, strict.String())
			}
			return nil, data, fmt.Errorf("%s: %w", path, err)
		}
	default:
		return nil, data, ValidationError{Field: "path", Message: fmt.Sprintf("unsupported definition format %q (use .yaml or .toml)", ext)}
	}

	if f.File != "" && !filepath.IsAbs(f.File) {
		f.File = filepath.Join(filepath.Dir(path), f.File)
	}

	if err := Validate(&f); err != nil {
		return nil, data, err
	}
	return &f, data, nil
}
