package report

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Sumatoshi-tech/pacelog/pkg/analysis"
)

//go:embed schema.json
var schemaBytes []byte

// ErrInvalidReport is returned when a JSON report does not match the schema.
var ErrInvalidReport = errors.New("invalid report")

// SchemaError lists the schema violations of a report.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidReport, strings.Join(e.Violations, "; "))
}

func (e *SchemaError) Unwrap() error { return ErrInvalidReport }

// Schema returns the JSON schema of the JSON report format.
func Schema() []byte {
	return bytes.Clone(schemaBytes)
}

// ValidateJSON checks data against the report schema.
func ValidateJSON(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("validate report: %w", err)
	}

	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		violations = append(violations, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
	}

	return &SchemaError{Violations: violations}
}

// ReadJSON validates and decodes a persisted JSON report.
func ReadJSON(r io.Reader) (*analysis.Statistics, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	err = ValidateJSON(data)
	if err != nil {
		return nil, err
	}

	var st analysis.Statistics

	err = json.Unmarshal(data, &st)
	if err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}

	return &st, nil
}
