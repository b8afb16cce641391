package entities

import "time"

// JourneyEntry is one immutable record of a product's location and
// status at a point in time. Entries are strictly append-ordered; the
// first entry for any product has StatusHarvested and is created
// atomically with the product itself.
type JourneyEntry struct {
	ProductID int64
	Seq       int
	HandlerID string
	Location  string
	Status    Status
	Timestamp time.Time
	Notes     string
}
