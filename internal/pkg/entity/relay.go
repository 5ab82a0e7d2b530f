package entity

import (
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/anicoll/linky-integration/internal/pkg/contxt"
	"github.com/anicoll/linky-integration/internal/pkg/model"
	"github.com/anicoll/linky-integration/internal/pkg/relay"
	"github.com/anicoll/linky-integration/internal/pkg/tic"
)

// RelayState is the binary sensor of one relay contact. It never polls: once
// started, the reader notifies it after every frame and it republishes
// unconditionally.
type RelayState struct {
	title     string
	desc      model.EntityDescription
	reader    reader
	publisher statePublisher
	logger    *zap.Logger

	mu    sync.Mutex
	state *relay.State

	subMu sync.Mutex
	sub   tic.Subscription
}

func NewRelayState(title, entryID string, r reader, p statePublisher, relayIndex int) (*RelayState, error) {
	st, err := relay.NewState(relayIndex)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("Relais %d", relayIndex)
	e := &RelayState{
		title: title,
		desc: model.EntityDescription{
			UniqueID:    uniqueID(entryID, relay.Tag, strconv.Itoa(relayIndex)),
			ObjectID:    objectID(name),
			Name:        name,
			Platform:    model.PlatformBinarySensor,
			DeviceClass: model.DeviceClassConnectivity,
			Icon:        relay.IconOpen,
		},
		reader:    r,
		publisher: p,
		logger:    zap.L(),
		state:     st,
	}
	e.logger.Debug("initializing binary sensor for relay", zap.String("title", title), zap.Int("relay", relayIndex))
	return e, nil
}

// start subscribes to reader notifications. The entity must already be
// registered with every sink.
func (e *RelayState) start() {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	if e.sub == nil {
		e.sub = e.reader.Subscribe(relay.Tag, e.updateNotification)
	}
}

func (e *RelayState) Description() model.EntityDescription {
	return e.desc
}

// Update reads the relay field from the reader and refreshes the decoder.
func (e *RelayState) Update() (relay.Change, error) {
	raw, found := e.reader.GetValue(relay.Tag)
	e.logger.Debug("retrieved value from serial reader",
		zap.String("title", e.title),
		zap.String("tag", relay.Tag),
		zap.Bool("found", found),
		zap.String("value", raw),
	)

	var value *int
	if found {
		v, err := strconv.Atoi(raw)
		if err != nil {
			err = fmt.Errorf("%w: %q", relay.ErrMalformedValue, raw)
			e.logger.Error("failed to decode relay state", zap.String("title", e.title), zap.String("entity", e.desc.Name), zap.Error(err))
			return relay.Change{}, err
		}
		value = &v
	}

	e.mu.Lock()
	change, err := e.state.Refresh(value, e.reader.HasReadFullFrame())
	available := e.state.Available()
	e.mu.Unlock()
	if err != nil {
		e.logger.Error("failed to decode relay state", zap.String("title", e.title), zap.String("entity", e.desc.Name), zap.Error(err))
		return change, err
	}

	if change.Availability {
		if available {
			e.logger.Info("marking the sensor as available now", zap.String("title", e.title), zap.String("entity", e.desc.Name))
		} else {
			e.logger.Info("marking the sensor as unavailable: a full frame has been read but the tag has not been found",
				zap.String("title", e.title), zap.String("entity", e.desc.Name), zap.String("tag", relay.Tag))
		}
	}
	if change.State {
		e.logger.Debug("relay state changed", zap.String("entity", e.desc.Name), zap.Any("state", e.State().Value))
	}
	return change, nil
}

func (e *RelayState) State() model.EntityState {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := newState(e.desc)
	s.Available = e.state.Available()
	if closed, ok := e.state.Closed(); ok {
		hints := relay.Hints(closed)
		s.Value = &hints.Value
		s.Icon = hints.Icon
	}
	return s
}

func (e *RelayState) updateNotification(realtime bool) {
	_, _ = e.Update() // failures are logged by Update

	state := e.State()
	state.Force = true
	if err := e.publisher.PublishState(contxt.NewContext(publishTimeout), state); err != nil {
		e.logger.Error("failed to publish relay state", zap.String("entity", e.desc.UniqueID), zap.Bool("realtime", realtime), zap.Error(err))
	}
}

// Close releases the reader subscription.
func (e *RelayState) Close() {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	if e.sub != nil {
		e.sub.Close()
		e.sub = nil
	}
}
