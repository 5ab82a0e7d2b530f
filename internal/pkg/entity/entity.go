package entity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/anicoll/linky-integration/internal/pkg/model"
	"github.com/anicoll/linky-integration/internal/pkg/tic"
)

// Domain prefixes every unique id.
const Domain = "linkytic"

const publishTimeout = 10 * time.Second

type reader interface {
	GetValue(label string) (string, bool)
	HasReadFullFrame() bool
	IsConnected() bool
	Subscribe(tag string, fn func(realtime bool)) tic.Subscription
	Identification() tic.Identification
}

type statePublisher interface {
	RegisterEntity(device *model.Device, entity *model.EntityDescription) error
	PublishState(ctx context.Context, state model.EntityState) error
}

// Entity is anything exposed to Home Assistant.
type Entity interface {
	Description() model.EntityDescription
	State() model.EntityState
}

// Poller is an Entity refreshed on a fixed cadence.
type Poller interface {
	Entity
	Update()
}

func objectID(name string) string {
	return strings.Replace(slug.Make(name), "-", "_", -1)
}

func uniqueID(entryID string, parts ...string) string {
	return fmt.Sprintf("%s_%s_%s", Domain, entryID, strings.Join(parts, "_"))
}

func deviceInfo(entryID string, r reader) *model.Device {
	ident := r.Identification()
	return &model.Device{
		ID:           entryID,
		Name:         tic.DefaultName,
		Manufacturer: ident.Constructor,
		Model:        ident.Type,
		SerialNumber: ident.Serial,
	}
}

func newState(desc model.EntityDescription) model.EntityState {
	return model.EntityState{
		UniqueID:  desc.UniqueID,
		ObjectID:  desc.ObjectID,
		Platform:  desc.Platform,
		Icon:      desc.Icon,
		TimeStamp: time.Now(),
	}
}
