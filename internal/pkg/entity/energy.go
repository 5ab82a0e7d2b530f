package entity

import (
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/anicoll/linky-integration/internal/pkg/config"
	"github.com/anicoll/linky-integration/internal/pkg/model"
)

type energyTag struct {
	label string
	name  string
}

var energyTags = map[config.TICMode][]energyTag{
	config.TICModeHistoric: {
		{label: "BASE", name: "Index option Base"},
		{label: "HCHC", name: "Index option Heures Creuses - Heures Creuses"},
		{label: "HCHP", name: "Index option Heures Creuses - Heures Pleines"},
	},
	config.TICModeStandard: {
		{label: "EAST", name: "Energie active soutirée totale"},
		{label: "EASF01", name: "Energie active soutirée fournisseur, index 01"},
		{label: "EASF02", name: "Energie active soutirée fournisseur, index 02"},
	},
}

// EnergyIndex is a total increasing Wh counter read from one label.
type EnergyIndex struct {
	title  string
	label  string
	desc   model.EntityDescription
	reader reader
	logger *zap.Logger

	mu        sync.Mutex
	value     *string
	available bool
}

func NewEnergyIndex(title, entryID, label, name string, r reader) *EnergyIndex {
	return &EnergyIndex{
		title: title,
		label: label,
		desc: model.EntityDescription{
			UniqueID:    uniqueID(entryID, label),
			ObjectID:    objectID(name),
			Name:        name,
			Platform:    model.PlatformSensor,
			DeviceClass: model.DeviceClassEnergy,
			StateClass:  model.StateClassTotalIncreasing,
			Unit:        model.NumericUnitWattHour,
			Icon:        "mdi:counter",
		},
		reader: r,
		logger: zap.L(),
	}
}

func (e *EnergyIndex) Description() model.EntityDescription {
	return e.desc
}

func (e *EnergyIndex) Update() {
	raw, found := e.reader.GetValue(e.label)

	e.mu.Lock()
	defer e.mu.Unlock()
	if !found {
		if e.available && e.reader.HasReadFullFrame() {
			e.logger.Info("marking the sensor as unavailable: a full frame has been read but the tag has not been found",
				zap.String("title", e.title), zap.String("entity", e.desc.Name), zap.String("tag", e.label))
			e.available = false
		}
		return
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		e.logger.Error("invalid energy index", zap.String("tag", e.label), zap.String("value", raw), zap.Error(err))
		return
	}
	if !e.available {
		e.logger.Info("marking the sensor as available now", zap.String("title", e.title), zap.String("entity", e.desc.Name))
		e.available = true
	}
	value := strconv.FormatUint(v, 10)
	e.value = &value
}

func (e *EnergyIndex) State() model.EntityState {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := newState(e.desc)
	s.Value = e.value
	s.Available = e.available
	return s
}
