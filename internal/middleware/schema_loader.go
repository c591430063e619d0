package middleware

import (
	"embed"
	"path"
	"sort"
	"strings"

	contextutils "feedbackapp/internal/utils"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Request body schema names
const (
	SchemaSubmissionRequest   = "submission_request"
	SchemaStatusUpdateRequest = "status_update_request"
	SchemaRegisterRequest     = "register_request"
	SchemaLoginRequest        = "login_request"
)

// requestSchemas maps "METHOD route-pattern" to the schema its body must satisfy.
var requestSchemas = map[string]string{
	"POST /api/customer/feedback":            SchemaSubmissionRequest,
	"PATCH /api/manager/feedback/:id/status": SchemaStatusUpdateRequest,
	"POST /api/auth/register":                SchemaRegisterRequest,
	"POST /api/auth/login":                   SchemaLoginRequest,
}

// SchemaLoader holds compiled JSON schemas for request bodies
type SchemaLoader struct {
	schemas map[string]*gojsonschema.Schema
}

// NewSchemaLoader creates a new schema loader
func NewSchemaLoader() *SchemaLoader {
	return &SchemaLoader{
		schemas: make(map[string]*gojsonschema.Schema),
	}
}

// LoadEmbeddedSchemas compiles every schema shipped in schemas/. The schema name is the
// file name without its extension.
func (sl *SchemaLoader) LoadEmbeddedSchemas() error {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return contextutils.WrapError(err, "failed to read embedded schemas")
	}
	for _, entry := range entries {
		data, err := schemaFS.ReadFile(path.Join("schemas", entry.Name()))
		if err != nil {
			return contextutils.WrapErrorf(err, "failed to read schema %s", entry.Name())
		}
		if err := sl.AddSchema(strings.TrimSuffix(entry.Name(), ".json"), data); err != nil {
			return err
		}
	}
	return nil
}

// AddSchema compiles a JSON schema document under name.
func (sl *SchemaLoader) AddSchema(name string, document []byte) error {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return contextutils.WrapErrorf(err, "failed to compile schema %s", name)
	}
	sl.schemas[name] = schema
	return nil
}

// SchemaNames lists loaded schemas in sorted order.
func (sl *SchemaLoader) SchemaNames() []string {
	names := make([]string, 0, len(sl.schemas))
	for name := range sl.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DetermineRequestSchema returns the schema name for a route, or "" if the body is unchecked.
func (sl *SchemaLoader) DetermineRequestSchema(method, routePattern string) string {
	return requestSchemas[method+" "+routePattern]
}

// ValidateJSON validates a raw JSON document against the named schema. Malformed JSON
// yields INVALID_FORMAT; a schema mismatch yields VALIDATION_FAILED with every violation
// in the details.
func (sl *SchemaLoader) ValidateJSON(document []byte, schemaName string) error {
	schema, ok := sl.schemas[schemaName]
	if !ok {
		return contextutils.ErrorWithContextf("schema %s not found", schemaName)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return contextutils.NewAppErrorWithCause(contextutils.ErrorCodeInvalidFormat, contextutils.SeverityWarn,
			"Request body is not valid JSON", err.Error(), err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return contextutils.NewValidationError("Invalid request data", strings.Join(violations, "; "))
}
