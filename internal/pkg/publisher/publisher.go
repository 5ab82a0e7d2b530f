package publisher

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/anicoll/linky-integration/internal/pkg/model"
)

var errAlreadyRegistered = errors.New("publisher already registered")

type publisher interface {
	Write(ctx context.Context, states []model.EntityState) error
	RegisterEntity(device *model.Device, entity *model.EntityDescription) error
}

// Publisher fans entity registrations and states out to every registered sink.
type Publisher struct {
	mu         sync.RWMutex
	publishers map[string]publisher
	sensors    sync.Map
	logger     *zap.Logger
}

func New() *Publisher {
	return &Publisher{
		publishers: make(map[string]publisher),
		logger:     zap.L(),
	}
}

func (p *Publisher) RegisterPublisher(name string, pub publisher) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.publishers[name]; ok {
		return errAlreadyRegistered
	}
	p.publishers[name] = pub
	return nil
}

func (p *Publisher) RegisterEntity(device *model.Device, entity *model.EntityDescription) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for name, pub := range p.publishers {
		if err := pub.RegisterEntity(device, entity); err != nil {
			p.logger.Error("failed to register entity", zap.Error(err), zap.String("publisher", name), zap.String("entity", entity.UniqueID))
			continue
		}
		p.logger.Debug("registered entity", zap.String("entity", entity.UniqueID), zap.String("publisher", name))
	}
	return nil
}

// PublishState writes state to every sink unless it equals the last written
// state of the entity and is not forced.
func (p *Publisher) PublishState(ctx context.Context, state model.EntityState) error {
	if !p.shouldUpdate(state) {
		return nil
	}
	var errs []error
	p.mu.RLock()
	defer p.mu.RUnlock()
	for name, pub := range p.publishers {
		if err := pub.Write(ctx, []model.EntityState{state}); err != nil {
			p.logger.Error("failed to publish state", zap.Error(err), zap.String("publisher", name))
			errs = append(errs, err)
			continue
		}
		p.logger.Debug("updated entity", zap.String("entity", state.UniqueID), zap.String("publisher", name))
	}
	return errors.Join(errs...)
}

// Latest returns the last state of every entity, sorted by unique id.
func (p *Publisher) Latest() model.EntityStates {
	states := model.EntityStates{}
	p.sensors.Range(func(_, v any) bool {
		states = append(states, v.(model.EntityState))
		return true
	})
	sort.Slice(states, func(i, j int) bool {
		return states[i].UniqueID < states[j].UniqueID
	})
	return states
}

// Get returns the last state of one entity.
func (p *Publisher) Get(uniqueID string) (model.EntityState, bool) {
	return lo.Find(p.Latest(), func(s model.EntityState) bool {
		return s.UniqueID == uniqueID
	})
}

func sameValue(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (p *Publisher) shouldUpdate(state model.EntityState) bool {
	old, exists := p.sensors.Load(state.UniqueID)
	p.sensors.Store(state.UniqueID, state)
	if !exists {
		p.logger.Info("configured entity", zap.String("entity", state.UniqueID), zap.Bool("available", state.Available))
		return true
	}
	if state.Force {
		return true
	}
	prev := old.(model.EntityState)
	return prev.Available != state.Available || !sameValue(prev.Value, state.Value) || prev.Icon != state.Icon
}
