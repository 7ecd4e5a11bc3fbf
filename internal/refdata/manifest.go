package refdata

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// manifestSchema constrains dataset manifests: a list of entries naming a
// repo-relative file and its exact size.
const manifestSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["filepath", "sizeinbytes"],
		"properties": {
			"filepath": {"type": "string", "minLength": 1},
			"sizeinbytes": {"type": "integer", "minimum": 0}
		}
	}
}`

// ManifestEntry describes one dataset file a prepared benchmark must contain.
type ManifestEntry struct {
	Filepath    string `json:"filepath"`
	SizeInBytes int64  `json:"sizeinbytes"`
}

// ParseManifest validates raw manifest JSON against the manifest schema and
// decodes it. Schema violations (wrong top-level shape, missing fields,
// negative sizes) are hard errors.
func ParseManifest(data []byte) ([]ManifestEntry, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid manifest JSON: %w", err)
	}

	schema, err := compileManifestSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("manifest does not match expected shape: %w", err)
	}

	var entries []ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid manifest JSON: %w", err)
	}
	return entries, nil
}

func compileManifestSchema() (*jsonschema.Schema, error) {
	schemaDoc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(manifestSchema)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("manifest.schema.json", schemaDoc); err != nil {
		return nil, fmt.Errorf("failed to add manifest schema resource: %w", err)
	}
	schema, err := compiler.Compile("manifest.schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile manifest schema: %w", err)
	}
	return schema, nil
}
