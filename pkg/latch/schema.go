package latch

// FieldType is the semantic type of a filterable field, for UI and tooling
// consumption. The compiler itself does not consult the schema.
type FieldType string

const (
	FieldText    FieldType = "text"
	FieldNumber  FieldType = "number"
	FieldDate    FieldType = "date"
	FieldArray   FieldType = "array"
	FieldBoolean FieldType = "boolean"
)

// Field describes one filterable field: its canonical column, semantic type,
// and accepted aliases.
type Field struct {
	Name    string    `json:"name"`
	Type    FieldType `json:"type"`
	Aliases []string  `json:"aliases"`
}

// Dimension groups the fields of one LATCH dimension.
type Dimension struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Schema returns the fixed descriptor of all filterable fields grouped by
// LATCH dimension.
func Schema() []Dimension {
	return []Dimension{
		{Name: "location", Fields: []Field{
			{Name: "latitude", Type: FieldNumber, Aliases: []string{"lat", "latitude"}},
			{Name: "longitude", Type: FieldNumber, Aliases: []string{"lon", "lng", "longitude"}},
			{Name: "place_name", Type: FieldText, Aliases: []string{"place", "place_name"}},
			{Name: "address", Type: FieldText, Aliases: []string{"address"}},
			{Name: "location", Type: FieldBoolean, Aliases: []string{"location"}},
		}},
		{Name: "alphabet", Fields: []Field{
			{Name: "name", Type: FieldText, Aliases: []string{"title", "name"}},
			{Name: "content", Type: FieldText, Aliases: []string{"content"}},
			{Name: "summary", Type: FieldText, Aliases: []string{"summary"}},
		}},
		{Name: "time", Fields: []Field{
			{Name: "created_at", Type: FieldDate, Aliases: []string{"created", "created_at"}},
			{Name: "modified_at", Type: FieldDate, Aliases: []string{"modified", "modified_at"}},
			{Name: "due_at", Type: FieldDate, Aliases: []string{"due", "due_at"}},
			{Name: "completed_at", Type: FieldDate, Aliases: []string{"completed", "completed_at"}},
			{Name: "event_start", Type: FieldDate, Aliases: []string{"start", "event_start"}},
			{Name: "event_end", Type: FieldDate, Aliases: []string{"end", "event_end"}},
		}},
		{Name: "category", Fields: []Field{
			{Name: "folder", Type: FieldText, Aliases: []string{"folder"}},
			{Name: "tags", Type: FieldArray, Aliases: []string{"tag", "tags"}},
			{Name: "status", Type: FieldText, Aliases: []string{"status"}},
			{Name: "node_type", Type: FieldText, Aliases: []string{"type", "node_type"}},
		}},
		{Name: "hierarchy", Fields: []Field{
			{Name: "priority", Type: FieldNumber, Aliases: []string{"priority"}},
			{Name: "importance", Type: FieldNumber, Aliases: []string{"importance"}},
			{Name: "sort_order", Type: FieldNumber, Aliases: []string{"sort", "sort_order"}},
		}},
	}
}
