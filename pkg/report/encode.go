package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/pacelog/pkg/analysis"
)

const yamlIndent = 2

// WriteJSON encodes st as indented JSON. Undefined quantities are null.
func WriteJSON(w io.Writer, st *analysis.Statistics) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(st)
	if err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}

	return nil
}

// WriteYAML encodes st as YAML. Undefined quantities are null.
func WriteYAML(w io.Writer, st *analysis.Statistics) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(yamlIndent)

	err := enc.Encode(st)
	if err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("flush yaml report: %w", err)
	}

	return nil
}
