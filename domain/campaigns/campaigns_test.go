package campaigns

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarven-note/tarven-core/internal/testutil"
	"github.com/tarven-note/tarven-core/pkg/apperror"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	stores := testutil.SetupStores(t)
	log := testutil.NewLogger()
	return NewService(NewRepository(stores.Topo, stores.Prop, log), log)
}

func TestCreateAndGet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateParams{Name: "Shadows over Arkham", System: "CoC7"})
	require.NoError(t, err)
	require.NotEmpty(t, c.CampaignID)
	assert.Equal(t, StatusActive, c.Status)

	got, err := svc.Get(ctx, c.CampaignID)
	require.NoError(t, err)
	assert.Equal(t, "Shadows over Arkham", got.Name)
	assert.Equal(t, "CoC7", got.System)
}

func TestCreateRequiresName(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), CreateParams{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestCreateWithExplicitIDConflicts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateParams{CampaignID: "camp-1", Name: "First"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateParams{CampaignID: "camp-1", Name: "Second"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestGetMissing(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Get(context.Background(), "no-such-campaign")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestUpdate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateParams{Name: "Before"})
	require.NoError(t, err)

	name := "After"
	status := "archived"
	updated, err := svc.Update(ctx, c.CampaignID, UpdateParams{Name: &name, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, "archived", updated.Status)

	_, err = svc.Update(ctx, "missing", UpdateParams{Name: &name})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestEnsureExistsIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureExists(ctx, "auto-campaign-id"))
	require.NoError(t, svc.EnsureExists(ctx, "auto-campaign-id"))

	c, err := svc.Get(ctx, "auto-campaign-id")
	require.NoError(t, err)
	assert.Equal(t, "Campaign auto-cam", c.Name)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateParams{Name: "Doomed"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, c.CampaignID))

	_, err = svc.Get(ctx, c.CampaignID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	err = svc.Delete(ctx, c.CampaignID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}
