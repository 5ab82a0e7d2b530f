package cmd

import (
	"context"
	"time"

	"github.com/anicoll/linky-integration/internal/pkg/model"
	"github.com/anicoll/linky-integration/internal/pkg/tic"
)

// ReaderService is what run expects from the TIC serial reader.
type ReaderService interface {
	Run(ctx context.Context) error
	GetValue(label string) (string, bool)
	HasReadFullFrame() bool
	IsConnected() bool
	Subscribe(tag string, fn func(realtime bool)) tic.Subscription
	Identification() tic.Identification
}

// Sink receives entity registrations and states.
type Sink interface {
	Write(ctx context.Context, states []model.EntityState) error
	RegisterEntity(device *model.Device, entity *model.EntityDescription) error
}

// Database is the optional state history.
type Database interface {
	Sink
	GetStates(ctx context.Context, uniqueID string, from, to *time.Time) (model.EntityStates, error)
	GetLatestStates(ctx context.Context) (model.EntityStates, error)
	Cleanup(ctx context.Context, retention time.Duration) (int64, error)
}
