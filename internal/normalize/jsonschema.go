package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/seamcheck/seamcheck/internal/ir"
)

// schemaDoc is the JSON-Schema-shaped document layout accepted from
// api_spec / raw_json_schema metadata blobs. The "type" value is treated as
// a free-text token (so origin tokens like "str" survive a round trip) and
// classified through ir.InferBaseType.
type schemaDoc struct {
	Type       string                `json:"type,omitempty"`
	Properties map[string]*schemaDoc `json:"properties,omitempty"`
	Required   []string              `json:"required,omitempty"`
	Items      *schemaDoc            `json:"items,omitempty"`
	Minimum    *float64              `json:"minimum,omitempty"`
	Maximum    *float64              `json:"maximum,omitempty"`
	MinLength  *int                  `json:"minLength,omitempty"`
	MaxLength  *int                  `json:"maxLength,omitempty"`
	Pattern    string                `json:"pattern,omitempty"`
	Enum       []any                 `json:"enum,omitempty"`
	Format     string                `json:"format,omitempty"`
}

// parseJSONSchema reduces a structural-schema blob to canonical form.
func parseJSONSchema(blob string) (*CanonicalSchema, error) {
	var doc schemaDoc
	if err := json.Unmarshal([]byte(blob), &doc); err != nil {
		return nil, fmt.Errorf("parse structural schema: %w", err)
	}
	return docToCanonical(&doc).finalize(), nil
}

func docToCanonical(doc *schemaDoc) *CanonicalSchema {
	c := &CanonicalSchema{
		SchemaType:  doc.Type,
		Constraints: constraintsOf(doc),
	}
	if doc.Type == "" && len(doc.Properties) > 0 {
		c.SchemaType = "object"
	}

	if len(doc.Properties) > 0 {
		c.Properties = make(map[string]FieldInfo, len(doc.Properties))
		for name, prop := range doc.Properties {
			if prop == nil {
				prop = &schemaDoc{}
			}
			c.Properties[name] = docToField(prop)
		}
		c.Required = append(c.Required, doc.Required...)
	}

	if doc.Items != nil {
		c.Items = docToCanonical(doc.Items).finalize()
	}

	return c
}

func docToField(prop *schemaDoc) FieldInfo {
	token := prop.Type

	switch {
	case len(prop.Properties) > 0:
		// Object-valued field: constraints live on the nested schema.
		if token == "" {
			token = "object"
		}
		return FieldInfo{
			FieldType: token,
			Base:      ir.InferBaseType(token),
			Nested:    docToCanonical(prop).finalize(),
		}
	case prop.Items != nil:
		if token == "" {
			token = "array"
		}
		return FieldInfo{
			FieldType:   token,
			Base:        ir.InferBaseType(token),
			Nested:      docToCanonical(prop.Items).finalize(),
			Constraints: constraintsOf(prop),
		}
	default:
		return FieldInfo{
			FieldType:   token,
			Base:        ir.InferBaseType(token),
			Constraints: constraintsOf(prop),
		}
	}
}

// constraintsOf translates JSON-schema validation keywords into Constraint
// values in a fixed order so reconstructed schemas compare equal.
func constraintsOf(doc *schemaDoc) []ir.Constraint {
	var cs []ir.Constraint
	if doc.Minimum != nil {
		cs = append(cs, ir.Constraint{Kind: ir.ConstraintMinimum, Value: formatFloat(*doc.Minimum)})
	}
	if doc.Maximum != nil {
		cs = append(cs, ir.Constraint{Kind: ir.ConstraintMaximum, Value: formatFloat(*doc.Maximum)})
	}
	if doc.MinLength != nil {
		cs = append(cs, ir.Constraint{Kind: ir.ConstraintMinLength, Value: strconv.Itoa(*doc.MinLength)})
	}
	if doc.MaxLength != nil {
		cs = append(cs, ir.Constraint{Kind: ir.ConstraintMaxLength, Value: strconv.Itoa(*doc.MaxLength)})
	}
	if doc.Pattern != "" {
		cs = append(cs, ir.Constraint{Kind: ir.ConstraintPattern, Value: doc.Pattern})
	}
	if len(doc.Enum) > 0 {
		members := make([]string, len(doc.Enum))
		for i, m := range doc.Enum {
			members[i] = fmt.Sprint(m)
		}
		cs = append(cs, ir.Constraint{Kind: ir.ConstraintEnum, Value: strings.Join(members, ",")})
	}
	switch doc.Format {
	case "email":
		cs = append(cs, ir.Constraint{Kind: ir.ConstraintEmail})
	case "uri":
		cs = append(cs, ir.Constraint{Kind: ir.ConstraintURI})
	}
	return cs
}

// MarshalJSONSchema renders a canonical schema back into the structural
// blob format accepted by parseJSONSchema. Parsing the output yields the
// identical CanonicalSchema (normalization idempotence).
func MarshalJSONSchema(c *CanonicalSchema) (string, error) {
	doc := canonicalToDoc(c)
	out, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal structural schema: %w", err)
	}
	return string(out), nil
}

func canonicalToDoc(c *CanonicalSchema) *schemaDoc {
	doc := &schemaDoc{Type: c.SchemaType}
	applyConstraints(doc, c.Constraints)

	if len(c.Properties) > 0 {
		doc.Properties = make(map[string]*schemaDoc, len(c.Properties))
		for name, f := range c.Properties {
			doc.Properties[name] = fieldToDoc(f)
		}
		doc.Required = append(doc.Required, c.Required...)
	}

	if c.Items != nil {
		doc.Items = canonicalToDoc(c.Items)
	}
	return doc
}

func fieldToDoc(f FieldInfo) *schemaDoc {
	if f.Nested != nil && f.Base == ir.BaseArray {
		doc := &schemaDoc{Type: f.FieldType, Items: canonicalToDoc(f.Nested)}
		applyConstraints(doc, f.Constraints)
		return doc
	}
	if f.Nested != nil {
		doc := canonicalToDoc(f.Nested)
		if doc.Type == "" {
			doc.Type = f.FieldType
		}
		return doc
	}
	doc := &schemaDoc{Type: f.FieldType}
	applyConstraints(doc, f.Constraints)
	return doc
}

func applyConstraints(doc *schemaDoc, cs []ir.Constraint) {
	for _, con := range cs {
		switch con.Kind {
		case ir.ConstraintMinimum:
			if v, err := strconv.ParseFloat(con.Value, 64); err == nil {
				doc.Minimum = &v
			}
		case ir.ConstraintMaximum:
			if v, err := strconv.ParseFloat(con.Value, 64); err == nil {
				doc.Maximum = &v
			}
		case ir.ConstraintMinLength:
			if v, err := strconv.Atoi(con.Value); err == nil {
				doc.MinLength = &v
			}
		case ir.ConstraintMaxLength:
			if v, err := strconv.Atoi(con.Value); err == nil {
				doc.MaxLength = &v
			}
		case ir.ConstraintPattern:
			doc.Pattern = con.Value
		case ir.ConstraintEnum:
			for _, m := range strings.Split(con.Value, ",") {
				doc.Enum = append(doc.Enum, m)
			}
		case ir.ConstraintEmail:
			doc.Format = "email"
		case ir.ConstraintURI:
			doc.Format = "uri"
		}
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
