package normalize

import (
	"strings"

	"github.com/seamcheck/seamcheck/internal/ir"
)

// parsePairFields handles the "name:type" fallback format produced by
// extractors that could not emit a full structural schema for a validated
// model or runtime validator. requiredList is comma-separated; when it is
// empty every field is optional, otherwise the listed fields are required
// and the rest optional.
func parsePairFields(fields, requiredList string) *CanonicalSchema {
	c := &CanonicalSchema{
		SchemaType: "object",
		Properties: make(map[string]FieldInfo),
	}

	for _, entry := range splitEntries(fields) {
		name, token, _ := cutField(entry)
		if name == "" {
			continue
		}
		c.Properties[name] = FieldInfo{
			FieldType: token,
			Base:      ir.InferBaseType(token),
		}
	}

	for _, name := range splitEntries(requiredList) {
		if _, ok := c.Properties[name]; ok {
			c.Required = append(c.Required, name)
		}
	}

	return c.finalize()
}

// parseTripleFields handles the "name:type:required|optional" format used
// for structural types and record mappings. Record mappings additionally
// use "nullable", which maps to optional.
func parseTripleFields(fields string) *CanonicalSchema {
	c := &CanonicalSchema{
		SchemaType: "object",
		Properties: make(map[string]FieldInfo),
	}

	for _, entry := range splitEntries(fields) {
		name, token, marker := cutField(entry)
		if name == "" {
			continue
		}
		c.Properties[name] = FieldInfo{
			FieldType: token,
			Base:      ir.InferBaseType(token),
		}
		if strings.EqualFold(marker, "required") {
			c.Required = append(c.Required, name)
		}
	}

	return c.finalize()
}

func splitEntries(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// cutField splits "name:type:marker" into its components; missing segments
// come back empty.
func cutField(entry string) (name, token, marker string) {
	parts := strings.SplitN(entry, ":", 3)
	name = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		token = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		marker = strings.TrimSpace(parts[2])
	}
	return name, token, marker
}
