package domain

import (
	"strings"
	"time"
)

// SearchCriteria are the optional listing search filters. A nil/empty
// field imposes no restriction; provided fields combine with AND.
type SearchCriteria struct {
	// Location matches listings whose location contains it,
	// case-insensitively.
	Location string

	// From/To restrict to listings whose availability window contains
	// the queried window: available_from >= From and available_to <= To.
	From *time.Time
	To   *time.Time

	// Beds is an exact match.
	Beds *int
}

func (c *SearchCriteria) Normalize() {
	c.Location = strings.TrimSpace(c.Location)
}

func (c SearchCriteria) IsEmpty() bool {
	return c.Location == "" && c.From == nil && c.To == nil && c.Beds == nil
}
