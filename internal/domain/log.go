package domain

import "time"

// Log is a single journal entry. Content is markdown. Every log has
// exactly one owner and is only reachable through owner-scoped queries.
type Log struct {
	ID        string
	Title     string
	Content   string
	Tags      []string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasAnyTag reports whether the log carries at least one of the given
// tags. An empty filter matches everything.
func (l Log) HasAnyTag(tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, want := range tags {
		for _, have := range l.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}
