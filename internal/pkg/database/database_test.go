package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/anicoll/linky-integration/internal/pkg/database/migration"
	"github.com/anicoll/linky-integration/internal/pkg/model"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	if testing.Short() {
		t.Skip("needs docker")
	}
	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("linky"),
		postgres.WithUsername("linky"),
		postgres.WithPassword("linky"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, migration.Migrate(dsn, "../../../migrations"))
	// a second run is a no-op
	require.NoError(t, migration.Migrate(dsn, "../../../migrations"))

	db, err := NewDatabase(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func strPtr(s string) *string {
	return &s
}

func TestDatabase_WriteAndRead(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	device := &model.Device{ID: "entry", Model: "Linky", SerialNumber: "041876097289"}
	entity := &model.EntityDescription{UniqueID: "linkytic_entry_RELAIS_1", ObjectID: "relais_1", Name: "Relais 1", Platform: model.PlatformBinarySensor}
	require.NoError(t, db.RegisterEntity(device, entity))
	require.NoError(t, db.RegisterEntity(device, entity))

	now := time.Now()
	require.NoError(t, db.Write(ctx, []model.EntityState{
		{UniqueID: entity.UniqueID, Value: strPtr("OFF"), Available: true, TimeStamp: now.Add(-time.Minute)},
		{UniqueID: entity.UniqueID, Value: strPtr("ON"), Icon: "mdi:electric-switch-closed", Available: true, TimeStamp: now},
		{UniqueID: entity.UniqueID, Available: false, TimeStamp: now.AddDate(0, 0, -30)},
	}))

	states, err := db.GetStates(ctx, entity.UniqueID, nil, nil)
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "ON", *states[0].Value)
	assert.Equal(t, model.PlatformBinarySensor, states[0].Platform)
	assert.Equal(t, "relais_1", states[0].ObjectID)

	latest, err := db.GetLatestStates(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "ON", *latest[0].Value)

	removed, err := db.Cleanup(ctx, 8*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	from, to := now.AddDate(0, 0, -60), now.Add(time.Second)
	states, err = db.GetStates(ctx, entity.UniqueID, &from, &to)
	require.NoError(t, err)
	assert.Len(t, states, 2)
}
