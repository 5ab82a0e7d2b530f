package publisher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anicoll/linky-integration/internal/pkg/model"
)

type recordingPublisher struct {
	writes     []model.EntityState
	registered []string
	err        error
}

func (r *recordingPublisher) Write(_ context.Context, states []model.EntityState) error {
	if r.err != nil {
		return r.err
	}
	r.writes = append(r.writes, states...)
	return nil
}

func (r *recordingPublisher) RegisterEntity(_ *model.Device, e *model.EntityDescription) error {
	r.registered = append(r.registered, e.UniqueID)
	return r.err
}

func strPtr(s string) *string {
	return &s
}

func TestRegisterPublisher_Duplicate(t *testing.T) {
	p := New()
	require.NoError(t, p.RegisterPublisher("mqtt", &recordingPublisher{}))
	assert.ErrorIs(t, p.RegisterPublisher("mqtt", &recordingPublisher{}), errAlreadyRegistered)
}

func TestPublishState_Dedupe(t *testing.T) {
	p := New()
	rec := &recordingPublisher{}
	require.NoError(t, p.RegisterPublisher("rec", rec))
	ctx := context.Background()

	state := model.EntityState{UniqueID: "a", Value: strPtr("ON"), Available: true}
	require.NoError(t, p.PublishState(ctx, state))
	require.NoError(t, p.PublishState(ctx, state))
	assert.Len(t, rec.writes, 1)

	state.Force = true
	require.NoError(t, p.PublishState(ctx, state))
	assert.Len(t, rec.writes, 2)

	require.NoError(t, p.PublishState(ctx, model.EntityState{UniqueID: "a", Value: strPtr("ON"), Available: false}))
	require.NoError(t, p.PublishState(ctx, model.EntityState{UniqueID: "a", Value: strPtr("OFF"), Available: false}))
	assert.Len(t, rec.writes, 4)
}

func TestPublishState_JoinsErrors(t *testing.T) {
	p := New()
	boom := errors.New("boom")
	require.NoError(t, p.RegisterPublisher("broken", &recordingPublisher{err: boom}))
	ok := &recordingPublisher{}
	require.NoError(t, p.RegisterPublisher("ok", ok))

	err := p.PublishState(context.Background(), model.EntityState{UniqueID: "x"})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, ok.writes, 1)
}

func TestRegisterEntity_ContinuesOnError(t *testing.T) {
	p := New()
	broken := &recordingPublisher{err: errors.New("down")}
	ok := &recordingPublisher{}
	require.NoError(t, p.RegisterPublisher("broken", broken))
	require.NoError(t, p.RegisterPublisher("ok", ok))

	require.NoError(t, p.RegisterEntity(&model.Device{ID: "d"}, &model.EntityDescription{UniqueID: "e"}))
	assert.Equal(t, []string{"e"}, ok.registered)
}

func TestLatestAndGet(t *testing.T) {
	p := New()
	ctx := context.Background()
	require.NoError(t, p.PublishState(ctx, model.EntityState{UniqueID: "b", Value: strPtr("2")}))
	require.NoError(t, p.PublishState(ctx, model.EntityState{UniqueID: "a", Value: strPtr("1")}))

	latest := p.Latest()
	require.Len(t, latest, 2)
	assert.Equal(t, "a", latest[0].UniqueID)

	got, ok := p.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "2", *got.Value)
	_, ok = p.Get("missing")
	assert.False(t, ok)
}
