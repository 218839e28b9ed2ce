package geocoder

import (
	"strings"

	"github.com/flashrun24/frc-season-map/internal/model"
)

// TeamAddress synthesizes a one-line geocoding query from a team's partial
// address fields. An empty return means the team has no usable address.
func TeamAddress(t *model.Team) string {
	return joinAddress(t.SchoolName, t.City, t.StateProv, t.PostalCode, t.Country)
}

// EventAddress synthesizes a one-line geocoding query from an event's venue
// and address fields. An empty return means the event has no usable address.
func EventAddress(e *model.Event) string {
	return joinAddress(e.Venue, e.Address, e.City, e.StateProv, e.PostalCode, e.Country)
}

// joinAddress joins fields with single spaces, collapsing the runs of
// whitespace that empty fields and sloppy upstream data leave behind.
func joinAddress(fields ...string) string {
	return strings.Join(strings.Fields(strings.Join(fields, " ")), " ")
}
