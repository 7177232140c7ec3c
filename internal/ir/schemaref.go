package ir

// SchemaType classifies the origin system a schema description came from.
type SchemaType string

const (
	SchemaValidatedModel   SchemaType = "validated_model"   // runtime-validated backend model
	SchemaRuntimeValidator SchemaType = "runtime_validator" // frontend runtime schema validator
	SchemaStructuralType   SchemaType = "structural_type"   // structural (interface/alias) type
	SchemaAPISpec          SchemaType = "api_spec"          // API description document component
	SchemaRawJSON          SchemaType = "raw_json_schema"   // JSON-Schema-shaped blob
	SchemaRecordMapping    SchemaType = "record_mapping"    // persisted-record column mapping
)

// Metadata keys carried by SchemaReference. The metadata map is how five
// unrelated native representations share one reference type: extractors
// serialize whatever auxiliary facts they have under these keys and the
// normalizer picks the richest one available.
const (
	// MetaJSONSchema holds a full JSON-Schema-shaped blob.
	MetaJSONSchema = "json_schema"
	// MetaFields holds a flattened field list. Format depends on origin:
	// "name:type" pairs for validated models and runtime validators,
	// "name:type:required|optional" triples for structural types and
	// record mappings. Entries are comma-separated.
	MetaFields = "fields"
	// MetaRequired holds a comma-separated list of required field names
	// (pair-format fallback only).
	MetaRequired = "required"
	// MetaTypeAlias holds the aliased type token for structural type
	// aliases that have no properties of their own.
	MetaTypeAlias = "type"
	// MetaMissingSchema is set to "true" when a handler parameter or
	// return type degraded to an untyped map or "any".
	MetaMissingSchema = "missing_schema"
	// MetaAttributeMapping marks record mappings that support
	// attribute-name remapping between columns and model fields.
	MetaAttributeMapping = "supports_attribute_mapping"
	// MetaUsagePath / MetaUsageMethod record the API call site a frontend
	// validator schema was observed at, used to link it to a declared
	// endpoint when no call edge exists.
	MetaUsagePath   = "usage_path"
	MetaUsageMethod = "usage_method"
)

// SchemaReference names a schema without owning its native representation.
type SchemaReference struct {
	Name     string            `json:"name"`
	Type     SchemaType        `json:"type"`
	Location Location          `json:"location"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Meta returns the metadata value for key, or "" when absent.
func (r SchemaReference) Meta(key string) string {
	if r.Metadata == nil {
		return ""
	}
	return r.Metadata[key]
}

// MissingSchema reports whether the reference was flagged as degraded
// (untyped map / any) by the extractor.
func (r SchemaReference) MissingSchema() bool {
	return r.Meta(MetaMissingSchema) == "true"
}

// UnknownSchema returns the placeholder reference used when a chain link
// has no extractable schema at all.
func UnknownSchema(loc Location) SchemaReference {
	return SchemaReference{
		Name:     "unknown",
		Type:     SchemaRawJSON,
		Location: loc,
		Metadata: map[string]string{MetaMissingSchema: "true"},
	}
}
