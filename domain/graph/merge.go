package graph

import (
	"fmt"
	"strconv"

	"github.com/tarven-note/tarven-core/pkg/sqljson"
)

// Merge policy: additive list fields append without dedup, scalar fields
// overwrite, the attributes bag merges at its outer keys only, and anything
// outside the per-type vocabulary is preserved under attributes.ext. Property
// merging never fails a write; it degrades with warnings.

// additiveListFields are append-only across all entity types.
var additiveListFields = map[string]bool{
	"aliases":    true,
	"used_names": true,
	"notes":      true,
}

// scalarFieldsByType lists the typed string columns each entity type accepts,
// beyond the common "description".
var scalarFieldsByType = map[string]map[string]bool{
	"Character":    {"occupation": true, "gender": true, "appearance": true, "personality": true, "background": true},
	"Location":     {"location_type": true, "address": true},
	"Item":         {"item_type": true, "rarity": true},
	"Event":        {"event_time": true},
	"Organization": {"org_type": true},
}

// listFieldsByType lists typed list columns that overwrite wholesale.
var listFieldsByType = map[string]map[string]bool{
	"Event":        {"participants": true},
	"Organization": {"members": true},
}

// attributeKeys are the recognized outer keys of the attributes bag. Inner
// values are replaced wholesale; unrecognized keys fall into ext.
var attributeKeys = map[string]bool{
	"stats": true, "skills": true, "hp": true, "mp": true,
	"san": true, "luck": true, "level": true, "class": true, "race": true,
	"ext": true,
}

// applyProperties merges an incoming property map into the record according
// to the record's type. Returned warnings describe values that were degraded
// rather than stored as sent.
func applyProperties(rec *EntityRecord, props map[string]any) []string {
	var warnings []string

	scalars := scalarFieldsByType[rec.Type]
	lists := listFieldsByType[rec.Type]

	for key, value := range props {
		switch {
		case additiveListFields[key]:
			appendAdditive(rec, key, value)

		case key == "description":
			rec.Description = stringPtr(value)

		case key == "age" && rec.Type == "Character":
			if n, ok := intValue(value); ok {
				rec.Age = &n
			} else {
				warnings = append(warnings, fmt.Sprintf("age value %v is not numeric, stored in attributes.ext", value))
				putExt(rec, key, value)
			}

		case scalars[key]:
			setScalar(rec, key, value)

		case lists[key]:
			setList(rec, key, value)

		case key == "attributes":
			warnings = append(warnings, mergeAttributes(rec, value)...)

		default:
			putExt(rec, key, value)
		}
	}

	return warnings
}

// appendAdditive appends the incoming value to one of the additive list
// fields. Scalars are coerced to one-element lists. No dedup: replaying the
// same input appends again.
func appendAdditive(rec *EntityRecord, key string, value any) {
	incoming := coerceList(value)
	switch key {
	case "aliases":
		rec.Aliases = append(rec.Aliases, incoming...)
	case "used_names":
		rec.UsedNames = append(rec.UsedNames, incoming...)
	case "notes":
		rec.Notes = append(rec.Notes, incoming...)
	}
}

// mergeAttributes merges an incoming attributes value at the outer-key level.
// Recognized keys replace the stored value wholesale; unrecognized keys go
// under ext. A non-object value is a caller error: it is preserved under ext
// with a warning instead of failing the write.
func mergeAttributes(rec *EntityRecord, value any) []string {
	obj, ok := asObject(value)
	if !ok {
		putExt(rec, "attributes", value)
		return []string{fmt.Sprintf("attributes value of type %T is not an object, stored in attributes.ext", value)}
	}

	if rec.Attributes == nil {
		rec.Attributes = sqljson.Map{}
	}
	for k, v := range obj {
		if k == "ext" {
			if extObj, ok := asObject(v); ok {
				for ek, ev := range extObj {
					putExt(rec, ek, ev)
				}
				continue
			}
		}
		if attributeKeys[k] {
			rec.Attributes[k] = v
		} else {
			putExt(rec, k, v)
		}
	}
	return nil
}

// mergeMetadata merges incoming metadata at the outer-key level.
func mergeMetadata(rec *EntityRecord, md map[string]any) {
	if len(md) == 0 {
		return
	}
	if rec.Metadata == nil {
		rec.Metadata = sqljson.Map{}
	}
	for k, v := range md {
		rec.Metadata[k] = v
	}
}

// putExt stores a value under attributes.ext.
func putExt(rec *EntityRecord, key string, value any) {
	if rec.Attributes == nil {
		rec.Attributes = sqljson.Map{}
	}
	ext, ok := asObject(rec.Attributes["ext"])
	if !ok {
		ext = map[string]any{}
	}
	ext[key] = value
	rec.Attributes["ext"] = ext
}

func setScalar(rec *EntityRecord, key string, value any) {
	p := stringPtr(value)
	switch key {
	case "occupation":
		rec.Occupation = p
	case "gender":
		rec.Gender = p
	case "appearance":
		rec.Appearance = p
	case "personality":
		rec.Personality = p
	case "background":
		rec.Background = p
	case "location_type":
		rec.LocationType = p
	case "address":
		rec.Address = p
	case "item_type":
		rec.ItemType = p
	case "rarity":
		rec.Rarity = p
	case "event_time":
		rec.EventTime = p
	case "org_type":
		rec.OrgType = p
	}
}

func setList(rec *EntityRecord, key string, value any) {
	l := coerceList(value)
	switch key {
	case "participants":
		rec.Participants = l
	case "members":
		rec.Members = l
	}
}

func coerceList(value any) sqljson.List {
	switch v := value.(type) {
	case nil:
		return nil
	case sqljson.List:
		return v
	case []any:
		return sqljson.List(v)
	case []string:
		l := make(sqljson.List, len(v))
		for i, s := range v {
			l[i] = s
		}
		return l
	default:
		return sqljson.List{v}
	}
}

func asObject(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case sqljson.Map:
		return map[string]any(v), true
	default:
		return nil, false
	}
}

func stringPtr(value any) *string {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	default:
		s = fmt.Sprint(v)
	}
	return &s
}

// intValue coerces JSON numbers and numeric strings to int.
func intValue(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}
