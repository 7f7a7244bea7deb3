package models

// Flight is one row of the daily flight file.
type Flight struct {
	Carrier         string
	OriginAirportID int64
	DestAirportID   int64
	DepDelay        int64
	ArrDelay        int64
}

// EnrichedFlight is a Flight with origin and destination airport metadata.
// Field tags use the destination column names.
type EnrichedFlight struct {
	Carrier         string `json:"Carrier" bson:"Carrier"`
	OriginAirportID int64  `json:"OriginAirportID" bson:"OriginAirportID"`
	OriginCity      string `json:"OriginCity" bson:"OriginCity"`
	OriginState     string `json:"OriginState" bson:"OriginState"`
	DestAirportID   int64  `json:"DestAirportID" bson:"DestAirportID"`
	DestCity        string `json:"DestCity" bson:"DestCity"`
	DestState       string `json:"DestState" bson:"DestState"`
	DepDelay        int64  `json:"DepDelay" bson:"DepDelay"`
	ArrDelay        int64  `json:"ArrDelay" bson:"ArrDelay"`
}

// Row returns the record's values in OutputSchema order.
func (e EnrichedFlight) Row() []any {
	return []any{
		e.Carrier,
		e.OriginAirportID,
		e.OriginCity,
		e.OriginState,
		e.DestAirportID,
		e.DestCity,
		e.DestState,
		e.DepDelay,
		e.ArrDelay,
	}
}
