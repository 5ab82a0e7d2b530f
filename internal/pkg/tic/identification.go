package tic

import "fmt"

// Labels carrying the meter serial number.
const (
	LabelADCO = "ADCO"
	LabelADSC = "ADSC"
)

const (
	DefaultManufacturer = "Enedis"
	DefaultModel        = "Linky"
	DefaultName         = "Linky"
)

// Identification is decoded from the 12 character meter address.
type Identification struct {
	Serial          string
	Constructor     string
	ManufactureYear string
	Type            string
	RegNumber       string
}

var constructors = map[string]string{
	"01": "CROUZET / MONETEL",
	"02": "SAGEM / SAGEMCOM",
	"03": "SCHLUMBERGER / ACTARIS / ITRON",
	"04": "LANDIS ET GYR / SIEMENS METERING / LANDIS+GYR",
	"05": "SAUTER / STEPPER ENERGIE France / ZELLWEGER",
	"06": "ITRON",
	"07": "MAEC",
	"08": "MATRA-CHAMPAGNE / ENERDIS",
	"11": "MAGNOL / ELSTER / HONEYWELL",
	"16": "LEGRAND / BACO",
	"18": "SCHNEIDER / MERLIN-GERIN / GARDY",
	"22": "EDF",
	"24": "HAGER / GENERAL ELECTRIC",
	"30": "SAGEMCOM",
	"31": "ITRON",
}

var meterTypes = map[string]string{
	"61": "Linky monophasé 60 A G1",
	"62": "Linky monophasé 90 A G1",
	"63": "Linky triphasé 60 A G1",
	"64": "Linky monophasé 60 A G3",
	"70": "Linky monophasé 60 A G3 (mise au point)",
	"71": "Linky triphasé 60 A G3 (mise au point)",
	"75": "Linky monophasé 90 A G3",
	"76": "Linky triphasé 60 A G3",
}

func lookup(table map[string]string, code string) string {
	if v, ok := table[code]; ok {
		return v
	}
	return fmt.Sprintf("Unknown (%s)", code)
}

// ParseIdentification decodes ADCO/ADSC. Anything that is not 12 characters
// falls back to the default manufacturer and model.
func ParseIdentification(serial string) Identification {
	if len(serial) != 12 {
		return Identification{
			Serial:      serial,
			Constructor: DefaultManufacturer,
			Type:        DefaultModel,
			RegNumber:   serial,
		}
	}
	return Identification{
		Serial:          serial,
		Constructor:     lookup(constructors, serial[0:2]),
		ManufactureYear: "20" + serial[2:4],
		Type:            lookup(meterTypes, serial[4:6]),
		RegNumber:       serial[6:],
	}
}
