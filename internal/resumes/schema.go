package resumes

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/sections.json
var sectionSchemaJSON []byte

const sectionSchemaURL = "mem://resumes/sections.json"

var (
	sectionSchemasOnce sync.Once
	sectionSchemas     map[string]*jsonschema.Schema
	sectionSchemasErr  error
)

func compileSectionSchemas() {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(sectionSchemaURL, bytes.NewReader(sectionSchemaJSON)); err != nil {
		sectionSchemasErr = fmt.Errorf("add section schema: %w", err)
		return
	}
	compiled := make(map[string]*jsonschema.Schema, len(sections))
	for _, name := range sections {
		s, err := compiler.Compile(sectionSchemaURL + "#/definitions/" + name)
		if err != nil {
			sectionSchemasErr = fmt.Errorf("compile %s schema: %w", name, err)
			return
		}
		compiled[name] = s
	}
	sectionSchemas = compiled
}

// validateSection checks a section payload against its JSON schema. The
// returned error names the first offending location.
func validateSection(section string, payload []byte) error {
	sectionSchemasOnce.Do(compileSectionSchemas)
	if sectionSchemasErr != nil {
		return sectionSchemasErr
	}
	schema, ok := sectionSchemas[section]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}

	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidInput, section, err)
	}
	err := schema.Validate(doc)
	var ve *jsonschema.ValidationError
	if errors.As(err, &ve) {
		leaf := ve
		for len(leaf.Causes) > 0 {
			leaf = leaf.Causes[0]
		}
		at := leaf.InstanceLocation
		if at == "" {
			at = "/"
		}
		return fmt.Errorf("%w: %s%s: %s", ErrInvalidInput, section, at, leaf.Message)
	}
	return err
}
