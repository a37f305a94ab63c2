// Package mapping reshapes source-native records into canonical-field-keyed
// records using a declarative field mapping.
package mapping

// FieldMapping maps a canonical field name to a source field path.
// Paths may be dot-separated to reach into nested objects ("user.name").
type FieldMapping map[string]string

// Apply reshapes one raw record. It is pure: no I/O, no mutation of the
// input, deterministic for the same inputs.
//
// With an empty mapping the raw record is returned as-is (the source shape
// is expected to already match canonical field names). A path whose segment
// is absent resolves to nil; rejecting incomplete records is the importer's
// job, not the mapper's.
func Apply(raw map[string]any, m FieldMapping) map[string]any {
	if len(m) == 0 {
		return raw
	}

	mapped := make(map[string]any, len(m))
	for field, path := range m {
		mapped[field] = resolve(raw, path)
	}
	return mapped
}

// resolve walks a dot-separated path through nested map values.
func resolve(raw map[string]any, path string) any {
	var value any = raw
	start := 0
	for i := 0; i <= len(path); i++ {
		if i != len(path) && path[i] != '.' {
			continue
		}
		segment := path[start:i]
		start = i + 1

		obj, ok := value.(map[string]any)
		if !ok {
			return nil
		}
		value, ok = obj[segment]
		if !ok {
			return nil
		}
	}
	return value
}
