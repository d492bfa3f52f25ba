package weather

import "time"

// FreshWindow is the rolling window within which a location keeps a single record.
const FreshWindow = 24 * time.Hour

// TimestampLayout is the layout of the persisted Timestamp column.
const TimestampLayout = "2006-01-02 15:04:05"

// UpsertResult tells how an observation landed in a store.
type UpsertResult int

const (
	// UpsertCreated means the table did not exist and was created with this row.
	UpsertCreated UpsertResult = iota
	// UpsertReplaced means a fresh row for the same location was overwritten in place.
	UpsertReplaced
	// UpsertAppended means the observation was added as a new row.
	UpsertAppended
)

func (r UpsertResult) String() string {
	switch r {
	case UpsertCreated:
		return "created"
	case UpsertReplaced:
		return "replaced"
	case UpsertAppended:
		return "appended"
	default:
		return "unknown"
	}
}

// Supersedes reports whether incoming should replace existing: same location and
// existing was collected strictly after incoming.CollectedAt - FreshWindow.
func Supersedes(existing, incoming Observation) bool {
	if existing.City != incoming.City || existing.State != incoming.State {
		return false
	}
	return existing.CollectedAt.After(incoming.CollectedAt.Add(-FreshWindow))
}

// Normalize returns obs with CollectedAt in UTC and truncated to the second.
func Normalize(obs Observation) Observation {
	obs.CollectedAt = obs.CollectedAt.UTC().Truncate(time.Second)
	return obs
}
