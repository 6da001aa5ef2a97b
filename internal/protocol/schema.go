package protocol

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"substrates.ai/internal/sim/substrate"
)

//go:embed schemas/document.schema.json
var documentSchema string

// ErrSchema wraps every schema violation.
var ErrSchema = errors.New("document schema")

var compiledDocumentSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("document.schema.json", documentSchema)
})

// DocumentSchema returns the embedded JSON schema source.
func DocumentSchema() string { return documentSchema }

// ValidateDocument checks the engine-facing JSON form of doc.
func ValidateDocument(doc substrate.Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return ValidateDocumentJSON(b)
}

// ValidateDocumentJSON checks raw document JSON.
func ValidateDocumentJSON(b []byte) error {
	s, err := compiledDocumentSchema()
	if err != nil {
		return fmt.Errorf("compile document schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return nil
}
