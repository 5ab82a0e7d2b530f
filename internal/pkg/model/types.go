package model

type Platform string

func (p Platform) String() string {
	return string(p)
}

const (
	PlatformBinarySensor Platform = "binary_sensor"
	PlatformSensor       Platform = "sensor"
)

type DeviceClass string

const (
	DeviceClassNone         DeviceClass = ""
	DeviceClassConnectivity DeviceClass = "connectivity"
	DeviceClassEnergy       DeviceClass = "energy"
)

type StateClass string

const (
	StateClassNone            StateClass = ""
	StateClassTotalIncreasing StateClass = "total_increasing"
)

type EntityCategory string

const (
	EntityCategoryNone       EntityCategory = ""
	EntityCategoryDiagnostic EntityCategory = "diagnostic"
)

type NumericUnit string

const (
	NumericUnitWattHour NumericUnit = "Wh"
	NumericUnitVoltAmp  NumericUnit = "VA"
	NumericUnitAmp      NumericUnit = "A"
)

// Binary sensor payloads.
const (
	PayloadOn  = "ON"
	PayloadOff = "OFF"
)

// Availability payloads.
const (
	Online  = "online"
	Offline = "offline"
)
