package postgres

import (
	"fmt"
	"strings"

	"github.com/staylane/bookings/internal/domain"
)

// buildSearchWhere turns search criteria into a WHERE clause and its
// positional args. Absent criteria add no condition; provided ones AND
// together. Returns an empty clause when nothing is set.
func buildSearchWhere(c domain.SearchCriteria) (string, []any) {
	c.Normalize()

	var conds []string
	var args []any

	if c.Location != "" {
		args = append(args, "%"+c.Location+"%")
		conds = append(conds, fmt.Sprintf("location ILIKE $%d", len(args)))
	}
	if c.From != nil {
		args = append(args, *c.From)
		conds = append(conds, fmt.Sprintf("available_from >= $%d", len(args)))
	}
	if c.To != nil {
		// The queried window must sit inside the listing's availability
		// window. Kept as upstream product behavior; see DESIGN.md before
		// changing this to an overlap check.
		args = append(args, *c.To)
		conds = append(conds, fmt.Sprintf("available_to <= $%d", len(args)))
	}
	if c.Beds != nil {
		args = append(args, *c.Beds)
		conds = append(conds, fmt.Sprintf("beds = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// buildListingSet renders the SET clause for a whitelisted listing patch.
// Args are numbered from $2; $1 is reserved for the listing id.
func buildListingSet(p domain.ListingPatch) (string, []any) {
	var set []string
	var args []any

	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s=$%d", col, len(args)+1))
	}

	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Content != nil {
		add("content", *p.Content)
	}
	if p.Location != nil {
		add("location", *p.Location)
	}
	if p.Price != nil {
		add("price", *p.Price)
	}
	if p.AvailableFrom != nil {
		add("available_from", *p.AvailableFrom)
	}
	if p.AvailableTo != nil {
		add("available_to", *p.AvailableTo)
	}
	if p.Beds != nil {
		add("beds", *p.Beds)
	}

	if len(set) == 0 {
		return "", nil
	}
	set = append(set, "updated_at=now()")
	return strings.Join(set, ", "), args
}
