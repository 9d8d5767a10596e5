package domain

import "time"

type EventType string

const (
	EventChampionRegistered EventType = "champion.registered"
	EventChampionUpdated    EventType = "champion.updated"
	EventChampionRefined    EventType = "champion.refined"
	EventChampionDeleted    EventType = "champion.deleted"
)

// Event is broadcast to connected clients when the hall changes.
type Event struct {
	Type       EventType `json:"type"`
	ChampionID string    `json:"championId"`
	Timestamp  time.Time `json:"timestamp"`
}
