package models

// Airport is one row of the airport reference file.
type Airport struct {
	ID    int64
	City  string
	State string
}

// AirportInfo is the metadata joined onto flights.
type AirportInfo struct {
	City  string `json:"city" bson:"city"`
	State string `json:"state" bson:"state"`
}

// AirportIndex maps airport id to its metadata. It is built once per run and
// only read afterwards, so concurrent lookups need no locking.
type AirportIndex map[int64]AirportInfo

// Lookup returns the metadata for id and whether it was present.
func (ix AirportIndex) Lookup(id int64) (AirportInfo, bool) {
	info, ok := ix[id]
	return info, ok
}

func (ix AirportIndex) Len() int { return len(ix) }
