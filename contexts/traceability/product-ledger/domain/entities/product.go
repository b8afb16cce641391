package entities

import (
	"strings"
	"time"
)

// Status is the product lifecycle state. The model is permissive: any
// authorized handler may set any status at any time, including
// regressions. No transition graph is enforced.
type Status string

const (
	StatusHarvested   Status = "Harvested"
	StatusInTransit   Status = "InTransit"
	StatusAtWarehouse Status = "AtWarehouse"
	StatusAtRetailer  Status = "AtRetailer"
	StatusSold        Status = "Sold"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusHarvested, StatusInTransit, StatusAtWarehouse, StatusAtRetailer, StatusSold:
		return true
	}
	return false
}

// ParseStatus resolves a wire value to a Status, case-insensitively.
func ParseStatus(raw string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "harvested":
		return StatusHarvested, true
	case "intransit", "in_transit":
		return StatusInTransit, true
	case "atwarehouse", "at_warehouse":
		return StatusAtWarehouse, true
	case "atretailer", "at_retailer":
		return StatusAtRetailer, true
	case "sold":
		return StatusSold, true
	}
	return "", false
}

// Product is one tracked agricultural product. ProductID is assigned
// sequentially from 1 and never reused; FarmerID is immutable after
// registration.
type Product struct {
	ProductID       int64
	Name            string
	Origin          string
	FarmerID        string
	HarvestDate     time.Time
	Quantity        int64
	CurrentLocation string
	Status          Status
	LastUpdated     time.Time
	CreatedAt       time.Time
}
