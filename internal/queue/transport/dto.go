package transport

import (
	"time"

	esttransport "prospect_backend/internal/establishments/transport"

	"github.com/google/uuid"
)

type BuildQueueQuery struct {
	Bucket        string   `form:"bucket"`
	BaseLatitude  *float64 `form:"baseLatitude"`
	BaseLongitude *float64 `form:"baseLongitude"`
	RadiusKm      *int     `form:"radiusKm"`
	MinWorkforce  *int     `form:"minWorkforce"`
	MaxWorkforce  *int     `form:"maxWorkforce"`
	LegalForm     *string  `form:"legalForm"`
	Search        string   `form:"search"`
	Limit         int      `form:"limit"`
}

// DueCallbackResponse is the callback slice of a queue entry, present when the
// establishment has an unresolved callback due on or before the snapshot time.
type DueCallbackResponse struct {
	ID      uuid.UUID `json:"id"`
	DueDate string    `json:"dueDate"`
	DueTime string    `json:"dueTime"`
	Reason  string    `json:"reason"`
}

type QueueEntryResponse struct {
	Establishment esttransport.EstablishmentResponse `json:"establishment"`
	DistanceKm    *float64                           `json:"distanceKm"`
	DueCallback   *DueCallbackResponse               `json:"dueCallback"`
}

// QueueResponse is a point-in-time snapshot. It is recomputed on every read
// and is not invalidated by concurrent commits from other callers; re-fetch
// after committing an outcome to observe it.
type QueueResponse struct {
	Entries []QueueEntryResponse `json:"entries"`
	Total   int                  `json:"total"`
	AsOf    time.Time            `json:"asOf"`
}
