package models

// ColumnType is the warehouse type of an output column.
type ColumnType string

const (
	TypeString  ColumnType = "STRING"
	TypeInteger ColumnType = "INTEGER"
)

// Column describes one column of the output table.
type Column struct {
	Name string
	Type ColumnType
}

// OutputSchema is the ordered, append-only schema of the flight fact table.
var OutputSchema = []Column{
	{Name: "Carrier", Type: TypeString},
	{Name: "OriginAirportID", Type: TypeInteger},
	{Name: "OriginCity", Type: TypeString},
	{Name: "OriginState", Type: TypeString},
	{Name: "DestAirportID", Type: TypeInteger},
	{Name: "DestCity", Type: TypeString},
	{Name: "DestState", Type: TypeString},
	{Name: "DepDelay", Type: TypeInteger},
	{Name: "ArrDelay", Type: TypeInteger},
}

// ColumnNames returns the OutputSchema column names in order.
func ColumnNames() []string {
	names := make([]string, len(OutputSchema))
	for i, c := range OutputSchema {
		names[i] = c.Name
	}
	return names
}
