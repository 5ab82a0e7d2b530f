package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/anicoll/linky-integration/internal/pkg/model"
)

var (
	onlinePayload  = []byte(model.Online)
	offlinePayload = []byte(model.Offline)
)

func availabilityTopic(base string) string {
	return base + "/availability"
}

func stateTopic(base string) string {
	return base + "/state"
}

func (s *service) baseTopic(objectID string) string {
	return fmt.Sprintf("%s/%s/%s", s.cfg.BaseTopic, s.node, objectID)
}

func (s *service) discoveryTopic(platform model.Platform, objectID string) string {
	return fmt.Sprintf("%s/%s/%s/%s/config", s.cfg.DiscoveryPrefix, platform, s.node, objectID)
}

func (s *service) RegisterEntity(device *model.Device, entity *model.EntityDescription) error {
	s.mu.Lock()
	_, exists := s.configuredEntities[entity.UniqueID]
	s.mu.Unlock()
	if exists {
		return nil
	}

	payload, err := json.Marshal(s.registerMsg(device, entity))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PublishTimeout)
	defer cancel()
	if err := s.publish(ctx, s.discoveryTopic(entity.Platform, entity.ObjectID), true, payload); err != nil {
		return err
	}

	s.mu.Lock()
	s.configuredEntities[entity.UniqueID] = s.baseTopic(entity.ObjectID)
	s.mu.Unlock()
	s.logger.Debug("registered entity", zap.String("entity", entity.UniqueID), zap.String("platform", entity.Platform.String()))
	return nil
}

// Write publishes availability and, when known, the value of every state.
func (s *service) Write(ctx context.Context, states []model.EntityState) error {
	for _, st := range states {
		if err := s.PublishState(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) PublishState(ctx context.Context, st model.EntityState) error {
	base := s.baseTopic(st.ObjectID)
	availability := offlinePayload
	if st.Available {
		availability = onlinePayload
	}
	if err := s.publish(ctx, availabilityTopic(base), true, availability); err != nil {
		return err
	}
	if st.Value == nil {
		return nil
	}

	payload, err := json.Marshal(model.StateMessage{
		Value: *st.Value,
		Icon:  st.Icon,
	})
	if err != nil {
		return err
	}
	return s.publish(ctx, stateTopic(base), false, payload)
}

func (s *service) registerMsg(device *model.Device, entity *model.EntityDescription) model.RegisterMessage {
	msg := model.RegisterMessage{
		Tilda:               s.baseTopic(entity.ObjectID),
		Name:                entity.Name,
		ID:                  entity.UniqueID,
		ObjectID:            fmt.Sprintf("%s_%s", s.node, entity.ObjectID),
		StateTopic:          "~/state",
		ValueTemplate:       "{{ value_json.value }}",
		JSONAttributesTopic: "~/state",
		AvailabilityTopic:   "~/availability",
		Icon:                entity.Icon,
		DeviceClass:         entity.DeviceClass,
		StateClass:          entity.StateClass,
		Unit:                entity.Unit,
		EntityCategory:      entity.EntityCategory,
		Device: model.RegisterDevice{
			Name:         device.Name,
			Identifiers:  []string{fmt.Sprintf("linkytic_%s", device.ID)},
			Model:        device.Model,
			Manufacturer: device.Manufacturer,
			SerialNumber: device.SerialNumber,
		},
	}
	if entity.Platform == model.PlatformBinarySensor {
		msg.PayloadOn = model.PayloadOn
		msg.PayloadOff = model.PayloadOff
	}
	return msg
}
