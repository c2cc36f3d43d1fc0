package firestore

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// encode flattens an entity into document fields using its JSON names. The
// id is the document name and is never stored in the body. Empty strings are
// left out; decode reads a missing field as the zero value.
func encode(entity any) (map[string]value, error) {
	raw, err := json.Marshal(entity)
	if err != nil {
		return nil, err
	}
	var flat map[string]any
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}
	fields := make(map[string]value, len(flat))
	for k, v := range flat {
		if k == "id" {
			continue
		}
		switch v := v.(type) {
		case string:
			if v == "" {
				continue
			}
			s := v
			fields[k] = value{StringValue: &s}
		case float64:
			f := v
			fields[k] = value{DoubleValue: &f}
		default:
			return nil, fmt.Errorf("field %s: unsupported type %T", k, v)
		}
	}
	return fields, nil
}

// decode rebuilds an entity from a document. Numbers may arrive as either
// doubleValue or integerValue depending on how the document was written.
func decode[T any](doc document) (T, error) {
	var out T
	flat := make(map[string]any, len(doc.Fields)+1)
	for k, v := range doc.Fields {
		switch {
		case v.StringValue != nil:
			flat[k] = *v.StringValue
		case v.DoubleValue != nil:
			flat[k] = *v.DoubleValue
		case v.IntegerValue != nil:
			n, err := strconv.ParseInt(*v.IntegerValue, 10, 64)
			if err != nil {
				return out, fmt.Errorf("field %s: %w", k, err)
			}
			flat[k] = float64(n)
		}
	}
	flat["id"] = doc.ID

	raw, err := json.Marshal(flat)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("document %s: %w", doc.ID, err)
	}
	return out, nil
}
