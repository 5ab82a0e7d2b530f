package model

type RegisterDevice struct {
	Name         string   `json:"name"`
	Identifiers  []string `json:"identifiers"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
	SerialNumber string   `json:"serial_number,omitempty"`
}

// RegisterMessage is a Home Assistant MQTT discovery config.
type RegisterMessage struct {
	Tilda               string         `json:"~"`
	Name                string         `json:"name"`
	ID                  string         `json:"unique_id"`
	ObjectID            string         `json:"object_id"`
	StateTopic          string         `json:"state_topic"`
	ValueTemplate       string         `json:"value_template"`
	JSONAttributesTopic string         `json:"json_attributes_topic"`
	AvailabilityTopic   string         `json:"availability_topic"`
	Icon                string         `json:"icon,omitempty"`
	DeviceClass         DeviceClass    `json:"device_class,omitempty"`
	StateClass          StateClass     `json:"state_class,omitempty"`
	Unit                NumericUnit    `json:"unit_of_measurement,omitempty"`
	EntityCategory      EntityCategory `json:"entity_category,omitempty"`
	PayloadOn           string         `json:"payload_on,omitempty"`
	PayloadOff          string         `json:"payload_off,omitempty"`
	Device              RegisterDevice `json:"device"`
}

// StateMessage is published on the state topic.
type StateMessage struct {
	Value string `json:"value"`
	Icon  string `json:"icon,omitempty"`
}
