package domain

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// SnapshotVersion is bumped whenever the snapshot layout changes. Readers
// must tolerate older versions.
const SnapshotVersion = 1

// Snapshot is the frozen copy of a vendor request captured at creation.
// It is written once inside the distribution transaction and never
// mutated, so later edits to the quote cannot change what the vendor saw.
type Snapshot struct {
	Version   int              `json:"version"`
	Title     string           `json:"title"`
	CreatedAt time.Time        `json:"created_at"`
	Currency  string           `json:"currency"`
	Delivery  SnapshotDelivery `json:"delivery"`
	Items     []SnapshotItem   `json:"items"`
}

type SnapshotDelivery struct {
	Date     *string `json:"date,omitempty"`
	Location *string `json:"location,omitempty"`
}

type SnapshotItem struct {
	ID            string   `json:"id"`
	LineNo        int      `json:"line_no"`
	Name          string   `json:"name"`
	Brand         string   `json:"brand,omitempty"`
	CatalogNumber string   `json:"catalog_number,omitempty"`
	Quantity      int      `json:"quantity"`
	Unit          string   `json:"unit"`
	PriceHint     *float64 `json:"price_hint,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

// Encode serializes the snapshot for storage.
func (s Snapshot) Encode() (datatypes.JSON, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// DecodeSnapshot parses a stored snapshot blob.
func DecodeSnapshot(raw datatypes.JSON) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
