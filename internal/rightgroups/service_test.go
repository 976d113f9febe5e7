package rightgroups

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolemanager/rbac-engine/internal/apperr"
)

type fakeRepo struct {
	byID map[int64]RightGroup
	next int64
}

func newFakeRepo() *fakeRepo { return &fakeRepo{byID: map[int64]RightGroup{}, next: 1} }

func (f *fakeRepo) List(ctx context.Context) ([]RightGroup, error) {
	var out []RightGroup
	for _, g := range f.byID {
		out = append(out, g)
	}
	return out, nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (RightGroup, error) {
	g, ok := f.byID[id]
	if !ok {
		return RightGroup{}, apperr.ErrNotFound
	}
	return g, nil
}

func (f *fakeRepo) Create(ctx context.Context, req CreateRequest) (RightGroup, error) {
	g := RightGroup{ID: f.next, Name: req.Name}
	f.byID[g.ID] = g
	f.next++
	return g, nil
}

func (f *fakeRepo) Update(ctx context.Context, id int64, req UpdateRequest) (RightGroup, error) {
	g, ok := f.byID[id]
	if !ok {
		return RightGroup{}, apperr.ErrNotFound
	}
	if req.Name != nil {
		g.Name = *req.Name
	}
	f.byID[id] = g
	return g, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func TestServiceCreateValidatesRequiredName(t *testing.T) {
	svc := NewService(newFakeRepo())
	_, err := svc.Create(context.Background(), CreateRequest{Name: ""})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestServiceCreateAndUpdate(t *testing.T) {
	svc := NewService(newFakeRepo())
	g, err := svc.Create(context.Background(), CreateRequest{Name: "Content"})
	require.NoError(t, err)

	newName := "Content Management"
	updated, err := svc.Update(context.Background(), g.ID, UpdateRequest{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Content Management", updated.Name)
}
