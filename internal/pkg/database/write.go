package database

import (
	"context"
	"time"

	"github.com/anicoll/linky-integration/internal/pkg/model"
)

func (db *Database) Write(ctx context.Context, states []model.EntityState) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, s := range states {
		ts := s.TimeStamp
		if ts.IsZero() {
			ts = time.Now()
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO entity_state (time_stamp, unique_id, value, icon, available)
			VALUES ($1, $2, $3, $4, $5)
		`, ts, s.UniqueID, s.Value, s.Icon, s.Available); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (db *Database) RegisterEntity(device *model.Device, entity *model.EntityDescription) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := db.pool.Exec(ctx, `
		INSERT INTO entity (unique_id, object_id, name, platform, device_id, device_model, device_serial)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (unique_id) DO UPDATE SET
			object_id = EXCLUDED.object_id,
			name = EXCLUDED.name,
			device_model = EXCLUDED.device_model,
			device_serial = EXCLUDED.device_serial;`,
		entity.UniqueID, entity.ObjectID, entity.Name, entity.Platform.String(), device.ID, device.Model, device.SerialNumber)
	return err
}
