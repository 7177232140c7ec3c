// Package normalize reduces every origin-specific schema representation to
// one canonical structural form so schemas from unrelated ecosystems can be
// diffed against each other.
package normalize

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/seamcheck/seamcheck/internal/ir"
)

// ErrNoStructuralSchema is returned when a schema kind that requires a
// structural blob (api_spec, raw_json_schema) carries none. Callers treat
// this as "cannot compare", not as a run-aborting failure.
var ErrNoStructuralSchema = errors.New("no structural schema available")

// defaultCacheSize bounds the per-run memo cache. Schema counts are small
// in practice; the bound only guards against pathological inputs.
const defaultCacheSize = 1024

// Normalizer converts SchemaReferences to canonical schemas, memoizing by
// reference identity. One Normalizer is scoped to one analysis run and
// passed through the call chain explicitly, never held in a package global.
type Normalizer struct {
	cache *lru.Cache[string, *CanonicalSchema]
}

// New returns a Normalizer with an empty memo cache.
func New() *Normalizer {
	cache, _ := lru.New[string, *CanonicalSchema](defaultCacheSize)
	return &Normalizer{cache: cache}
}

// Normalize reduces ref to canonical form. Results are memoized: two
// references with the same name, origin kind, and metadata fingerprint
// share one canonical schema.
func (n *Normalizer) Normalize(ref ir.SchemaReference) (*CanonicalSchema, error) {
	key := cacheKey(ref)
	if c, ok := n.cache.Get(key); ok {
		return c, nil
	}

	c, err := normalizeRef(ref)
	if err != nil {
		return nil, err
	}

	n.cache.Add(key, c)
	return c, nil
}

func cacheKey(ref ir.SchemaReference) string {
	return string(ref.Type) + "|" + ref.Name + "|" +
		ref.Meta(ir.MetaJSONSchema) + "|" + ref.Meta(ir.MetaFields) + "|" +
		ref.Meta(ir.MetaRequired) + "|" + ref.Meta(ir.MetaTypeAlias)
}

// normalizeRef is the pure dispatch on the origin kind.
func normalizeRef(ref ir.SchemaReference) (*CanonicalSchema, error) {
	switch ref.Type {
	case ir.SchemaAPISpec, ir.SchemaRawJSON:
		blob := ref.Meta(ir.MetaJSONSchema)
		if blob == "" {
			return nil, fmt.Errorf("%w: %s schema %q", ErrNoStructuralSchema, ref.Type, ref.Name)
		}
		return parseJSONSchema(blob)

	case ir.SchemaValidatedModel, ir.SchemaRuntimeValidator:
		// Prefer the full structural blob; fall back to the flattened
		// pair list for extractors that could not produce one.
		if blob := ref.Meta(ir.MetaJSONSchema); blob != "" {
			return parseJSONSchema(blob)
		}
		return parsePairFields(ref.Meta(ir.MetaFields), ref.Meta(ir.MetaRequired)), nil

	case ir.SchemaStructuralType:
		if fields := ref.Meta(ir.MetaFields); fields != "" {
			return parseTripleFields(fields), nil
		}
		if alias := ref.Meta(ir.MetaTypeAlias); alias != "" {
			return (&CanonicalSchema{SchemaType: alias}).finalize(), nil
		}
		return (&CanonicalSchema{SchemaType: "object"}).finalize(), nil

	case ir.SchemaRecordMapping:
		return parseTripleFields(ref.Meta(ir.MetaFields)), nil

	default:
		return nil, fmt.Errorf("unknown schema type %q for %q", ref.Type, ref.Name)
	}
}
