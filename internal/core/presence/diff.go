package presence

import "github.com/brightshift/clockin-system/internal/core/domain"

// Diff compares two log sequences by event id. Stores that persist events as
// individual rows use it to apply the result of a read-modify-write cycle:
// ids in removed must be deleted, events in added must be appended in order.
func Diff(before, after []domain.ClockEvent) (removed []string, added []domain.ClockEvent) {
	kept := make(map[string]struct{}, len(after))
	for _, e := range after {
		kept[e.ID] = struct{}{}
	}

	existing := make(map[string]struct{}, len(before))
	for _, e := range before {
		existing[e.ID] = struct{}{}
		if _, ok := kept[e.ID]; !ok {
			removed = append(removed, e.ID)
		}
	}

	for _, e := range after {
		if _, ok := existing[e.ID]; !ok {
			added = append(added, e)
		}
	}
	return removed, added
}
