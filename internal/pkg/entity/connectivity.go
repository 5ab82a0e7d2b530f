package entity

import (
	"go.uber.org/zap"

	"github.com/anicoll/linky-integration/internal/pkg/model"
)

// SerialConnectivity reports whether the serial link is open.
type SerialConnectivity struct {
	desc   model.EntityDescription
	reader reader
}

func NewSerialConnectivity(title, entryID string, r reader) *SerialConnectivity {
	zap.L().Debug("initializing serial connectivity binary sensor", zap.String("title", title))
	name := "Connectivité du lien série"
	return &SerialConnectivity{
		desc: model.EntityDescription{
			UniqueID:       uniqueID(entryID, "serial_connectivity"),
			ObjectID:       objectID(name),
			Name:           name,
			Platform:       model.PlatformBinarySensor,
			DeviceClass:    model.DeviceClassConnectivity,
			EntityCategory: model.EntityCategoryDiagnostic,
		},
		reader: r,
	}
}

func (e *SerialConnectivity) Description() model.EntityDescription {
	return e.desc
}

func (e *SerialConnectivity) Update() {}

func (e *SerialConnectivity) State() model.EntityState {
	s := newState(e.desc)
	s.Available = true
	v := model.PayloadOff
	if e.reader.IsConnected() {
		v = model.PayloadOn
	}
	s.Value = &v
	return s
}
