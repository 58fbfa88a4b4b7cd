package blockchain

import "strings"

// Type suffixes of the ticket contract's objects.
const (
	LotTypeSuffix    = "::ticket::TicketBox"
	TicketTypeSuffix = "::ticket::Ticket"
)

// Shape tags the two record layouts a node may return.
type Shape int

// record shapes
const (
	ShapeUnknown Shape = iota
	ShapeEffectsCreated
	ShapeObjectChange
)

// Record is one entry of an effects created list or of an object change
// list. The layout differs between the two and across node versions, so it
// stays a loose map and is read through path lookups.
type Record map[string]interface{}

// Lookup walks nested maps; any missing or non-map step yields nil.
func (r Record) Lookup(path ...string) interface{} {
	var cur interface{} = map[string]interface{}(r)
	for _, key := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

// String returns the string at path, or "" when absent or not a string.
func (r Record) String(path ...string) string {
	s, _ := r.Lookup(path...).(string)
	return s
}

// Shape function
func (r Record) Shape() Shape {
	if _, ok := r["reference"].(map[string]interface{}); ok {
		return ShapeEffectsCreated
	}
	if r.String("objectId") != "" || r.String("objectType") != "" {
		return ShapeObjectChange
	}
	return ShapeUnknown
}

var typeNamePaths = [][]string{
	{"owner", "structType"},
	{"reference", "owner", "structType"},
	{"objectType"},
	{"type"},
	{"owner", "objType"},
	{"owner", "type"},
	{"reference", "type"},
	{"reference", "objectType"},
}

var objectIDPaths = [][]string{
	{"reference", "objectId"},
	{"reference", "object_id"},
	{"objectId"},
	{"object_id"},
}

func firstString(r Record, paths [][]string) string {
	for _, path := range paths {
		if s := r.String(path...); s != "" {
			return s
		}
	}
	return ""
}

// TypeName resolves the record's type name, first non-empty location wins.
func TypeName(r Record) string {
	return firstString(r, typeNamePaths)
}

// ObjectID resolves the record's object id, first non-empty location wins.
func ObjectID(r Record) string {
	return firstString(r, objectIDPaths)
}

// HasTypeSuffix reports whether typeName, ignoring generic arguments, ends
// with suffix.
func HasTypeSuffix(typeName, suffix string) bool {
	if suffix == "" {
		return false
	}
	if i := strings.IndexByte(typeName, '<'); i >= 0 {
		typeName = typeName[:i]
	}
	return strings.HasSuffix(typeName, suffix)
}

// Match is the outcome of a scan. Fallback is set when no record carried the
// expected type and the first created object was returned instead.
type Match struct {
	ID       string
	Found    bool
	Fallback bool
}

// FindMatchedObject returns the first record whose type ends with suffix.
// Records that match but carry no id are skipped.
func FindMatchedObject(records []Record, suffix string) Match {
	for _, r := range records {
		if !HasTypeSuffix(TypeName(r), suffix) {
			continue
		}
		if id := ObjectID(r); id != "" {
			return Match{ID: id, Found: true}
		}
	}
	return Match{}
}

// FindCreatedObject is FindMatchedObject with a fallback: when nothing
// matches, the first created object is returned and flagged. A contract
// upgrade may emit a type name that is not recognised yet.
func FindCreatedObject(records []Record, suffix string) Match {
	if m := FindMatchedObject(records, suffix); m.Found {
		return m
	}
	for _, r := range records {
		if id := ObjectID(r); id != "" {
			return Match{ID: id, Found: true, Fallback: true}
		}
	}
	return Match{}
}
