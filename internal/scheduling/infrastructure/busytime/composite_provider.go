package busytime

import (
	"context"
	"sort"
	"time"

	"github.com/felixgeelhaar/tandem/internal/scheduling/domain"
	"github.com/google/uuid"
)

// CompositeProvider merges busy windows from several sources, for
// users whose bookings live in the database while their personal
// calendar lives behind CalDAV.
type CompositeProvider struct {
	providers []domain.BusyWindowProvider
}

// NewCompositeProvider creates a provider that merges all sources.
func NewCompositeProvider(providers ...domain.BusyWindowProvider) *CompositeProvider {
	return &CompositeProvider{providers: providers}
}

// BusyWindows returns the union of all sources, sorted by start time.
// Any source failing fails the whole fetch; a silently missing source
// would make a conflicted slot look free.
func (c *CompositeProvider) BusyWindows(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.BusyWindow, error) {
	var merged []domain.BusyWindow
	for _, p := range c.providers {
		windows, err := p.BusyWindows(ctx, userID, from, to)
		if err != nil {
			return nil, err
		}
		merged = append(merged, windows...)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Start.Before(merged[j].Start) })
	return merged, nil
}
