package models

import (
	"time"

	"github.com/google/uuid"
)

// RealtimeEvent holds a change event too large for a NOTIFY payload. The
// notification carries only its id.
type RealtimeEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Payload   []byte    `gorm:"not null"`
	CreatedAt time.Time `gorm:"index"`
}

func (RealtimeEvent) TableName() string { return "realtime_events" }
