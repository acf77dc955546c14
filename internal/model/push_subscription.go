package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// A subscription receives alert notifications for the aircraft it follows.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey" json:"endpoint"`
	P256DH    string    `gorm:"column:p256dh;not null" json:"-"`
	Auth      string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`

	// Associations
	Aircraft []*Aircraft `gorm:"many2many:subscription_aircraft_mapping;" json:"aircraft,omitempty"`
}
