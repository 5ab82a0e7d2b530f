package model

import "time"

type Device struct {
	ID           string
	Name         string
	Manufacturer string
	Model        string
	SerialNumber string
}

// EntityDescription is the static part of an entity.
type EntityDescription struct {
	UniqueID       string
	ObjectID       string
	Name           string
	Platform       Platform
	DeviceClass    DeviceClass
	StateClass     StateClass
	Unit           NumericUnit
	EntityCategory EntityCategory
	Icon           string
}

type EntityState struct {
	UniqueID  string    `json:"unique_id"`
	ObjectID  string    `json:"object_id"`
	Platform  Platform  `json:"platform"`
	Value     *string   `json:"value"`
	Icon      string    `json:"icon,omitempty"`
	Available bool      `json:"available"`
	TimeStamp time.Time `json:"timestamp"`
	// Force bypasses the unchanged-value cache of the publisher.
	Force bool `json:"-"`
}

type EntityStates []EntityState
