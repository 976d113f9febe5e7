package contexts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolemanager/rbac-engine/internal/apperr"
)

type fakeRepo struct {
	byID map[int64]Context
	next int64
}

func newFakeRepo() *fakeRepo { return &fakeRepo{byID: map[int64]Context{}, next: 1} }

func (f *fakeRepo) List(ctx context.Context) ([]Context, error) {
	var out []Context
	for _, c := range f.byID {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (Context, error) {
	c, ok := f.byID[id]
	if !ok {
		return Context{}, apperr.ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) GetByName(ctx context.Context, name string) (Context, error) {
	for _, c := range f.byID {
		if c.Name == name {
			return c, nil
		}
	}
	return Context{}, apperr.ErrNotFound
}

func (f *fakeRepo) Create(ctx context.Context, req CreateRequest) (Context, error) {
	for _, c := range f.byID {
		if c.Name == req.Name {
			return Context{}, apperr.ErrConflict
		}
	}
	c := Context{ID: f.next, Name: req.Name, Description: req.Description}
	f.byID[c.ID] = c
	f.next++
	return c, nil
}

func (f *fakeRepo) Update(ctx context.Context, id int64, req UpdateRequest) (Context, error) {
	c, ok := f.byID[id]
	if !ok {
		return Context{}, apperr.ErrNotFound
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	f.byID[id] = c
	return c, nil
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

func TestServiceCreateAndGet(t *testing.T) {
	svc := NewService(newFakeRepo())
	c, err := svc.Create(context.Background(), CreateRequest{Name: "Alpha"})
	require.NoError(t, err)
	assert.Equal(t, "Alpha", c.Name)

	got, err := svc.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestServiceGetNotFound(t *testing.T) {
	svc := NewService(newFakeRepo())
	_, err := svc.Get(context.Background(), 999)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
