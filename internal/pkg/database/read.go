package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/anicoll/linky-integration/internal/pkg/model"
)

// GetStates returns the states of one entity between from and to, newest
// first. Without bounds the last two days are returned.
func (db *Database) GetStates(ctx context.Context, uniqueID string, from, to *time.Time) (model.EntityStates, error) {
	if from == nil || to == nil {
		f := time.Now().AddDate(0, 0, -2)
		t := time.Now()
		from, to = &f, &t
	}
	const query = `
	SELECT s.unique_id, e.object_id, e.platform, s.value, s.icon, s.available, s.time_stamp
	FROM entity_state s
	JOIN entity e ON e.unique_id = s.unique_id
	WHERE s.unique_id = $1 AND s.time_stamp BETWEEN $2 AND $3
	ORDER BY s.time_stamp DESC;
	`

	rows, err := db.pool.Query(ctx, query, uniqueID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStates(rows)
}

func (db *Database) GetLatestStates(ctx context.Context) (model.EntityStates, error) {
	const query = `
	SELECT DISTINCT ON (s.unique_id) s.unique_id, e.object_id, e.platform, s.value, s.icon, s.available, s.time_stamp
	FROM entity_state s
	JOIN entity e ON e.unique_id = s.unique_id
	ORDER BY s.unique_id, s.time_stamp DESC;
	`

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStates(rows)
}

func scanStates(rows pgx.Rows) (model.EntityStates, error) {
	states := model.EntityStates{}
	for rows.Next() {
		var (
			s        model.EntityState
			platform string
		)
		if err := rows.Scan(&s.UniqueID, &s.ObjectID, &platform, &s.Value, &s.Icon, &s.Available, &s.TimeStamp); err != nil {
			return nil, err
		}
		s.Platform = model.Platform(platform)
		states = append(states, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return states, nil
}
