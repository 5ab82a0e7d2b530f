package entity

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/anicoll/linky-integration/internal/pkg/config"
)

var ErrUpstreamUnavailable = errors.New("can not init sensors: failed to get the serial reader")

const relayCount = 8

// Setup waits at most fullFrameTicks ticks for the reader to parse a frame.
var (
	fullFrameTick  = time.Second
	fullFrameTicks = 9
)

// Entities is the set built for one meter.
type Entities struct {
	Relays    []*RelayState
	Polled    []Poller
	publisher statePublisher
	logger    *zap.Logger
}

func waitForFullFrame(ctx context.Context, title string, r reader) error {
	logger := zap.L()
	logger.Debug("waiting for the serial reader to parse a full frame", zap.String("title", title), zap.Duration("max_wait", fullFrameTick*time.Duration(fullFrameTicks)))
	ticker := time.NewTicker(fullFrameTick)
	defer ticker.Stop()
	for i := 0; i < fullFrameTicks; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if r.HasReadFullFrame() {
			logger.Debug("a full frame has been read, initializing sensors", zap.String("title", title))
			return nil
		}
	}
	logger.Warn("wait time is over but a full frame has yet to be read: initializing sensors anyway", zap.String("title", title))
	return nil
}

// Setup builds and registers every entity of the meter. Relays only exist in
// standard mode. A nil reader aborts without registering anything.
func Setup(ctx context.Context, cfg *config.Config, r reader, p statePublisher) (*Entities, error) {
	logger := zap.L()
	if r == nil {
		logger.Error("can not init sensors: failed to get the serial reader object", zap.String("title", cfg.Title))
		return nil, ErrUpstreamUnavailable
	}
	if err := waitForFullFrame(ctx, cfg.Title, r); err != nil {
		return nil, err
	}

	es := &Entities{publisher: p, logger: logger}
	if cfg.SerialCfg.Mode == config.TICModeStandard {
		for i := 1; i <= relayCount; i++ {
			rs, err := NewRelayState(cfg.Title, cfg.EntryID, r, p, i)
			if err != nil {
				es.Close()
				return nil, err
			}
			es.Relays = append(es.Relays, rs)
		}
	}
	es.Polled = append(es.Polled, NewSerialConnectivity(cfg.Title, cfg.EntryID, r))
	for _, tag := range energyTags[cfg.SerialCfg.Mode] {
		es.Polled = append(es.Polled, NewEnergyIndex(cfg.Title, cfg.EntryID, tag.label, tag.name, r))
	}

	device := deviceInfo(cfg.EntryID, r)
	for _, e := range es.All() {
		desc := e.Description()
		if err := p.RegisterEntity(device, &desc); err != nil {
			es.Close()
			return nil, err
		}
	}

	for _, rs := range es.Relays {
		rs.start()
		_, _ = rs.Update()
		if err := p.PublishState(ctx, rs.State()); err != nil {
			logger.Warn("failed to publish initial state", zap.String("entity", rs.desc.UniqueID), zap.Error(err))
		}
	}
	es.refreshPolled(ctx)
	logger.Info("sensors initialized", zap.String("title", cfg.Title), zap.Int("relays", len(es.Relays)), zap.Int("polled", len(es.Polled)))
	return es, nil
}

// All returns every entity, relays first.
func (es *Entities) All() []Entity {
	all := lo.Map(es.Relays, func(r *RelayState, _ int) Entity { return r })
	return append(all, lo.Map(es.Polled, func(p Poller, _ int) Entity { return p })...)
}

func (es *Entities) refreshPolled(ctx context.Context) {
	for _, e := range es.Polled {
		e.Update()
		if err := es.publisher.PublishState(ctx, e.State()); err != nil {
			es.logger.Warn("failed to publish state", zap.String("entity", e.Description().UniqueID), zap.Error(err))
		}
	}
}

// Poll refreshes the polled entities every interval until ctx is done.
func (es *Entities) Poll(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			es.refreshPolled(ctx)
		}
	}
}

// Close releases every relay subscription.
func (es *Entities) Close() {
	for _, r := range es.Relays {
		r.Close()
	}
}
