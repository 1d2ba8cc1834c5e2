package models

import "time"

type Meeting struct {
	ID                    string    `json:"id"`
	Participants          []string  `json:"participants"`
	ScheduledFor          time.Time `json:"scheduledFor"`
	CreatedAt             time.Time `json:"createdAt"`
	CreatedFromInvitation string    `json:"createdFromInvitation"`
}
