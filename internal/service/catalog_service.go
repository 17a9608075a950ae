package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/stemsi/exstem-paper/internal/client"
	"github.com/stemsi/exstem-paper/internal/model"
)

// ErrUnknownResource is returned for a collection name the catalogue does not manage.
var ErrUnknownResource = errors.New("unknown resource")

// CatalogService forwards CRUD for classes, subjects and study materials.
type CatalogService struct {
	api *client.Client
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(api *client.Client) *CatalogService {
	return &CatalogService{api: api}
}

// List returns every entity of res, decoded into its typed form.
func (s *CatalogService) List(ctx context.Context, res model.Resource) (any, error) {
	switch res {
	case model.ResourceClasses:
		return list[model.Class](ctx, s.api, res)
	case model.ResourceSubjects:
		return list[model.Subject](ctx, s.api, res)
	case model.ResourceStudyMaterials:
		return list[model.StudyMaterial](ctx, s.api, res)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownResource, res)
}

// Create posts body, an already validated request, to res.
func (s *CatalogService) Create(ctx context.Context, res model.Resource, body any) (any, error) {
	out, err := entity(res)
	if err != nil {
		return nil, err
	}
	if err := s.api.CreateResource(ctx, res, body, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the entity id of res.
func (s *CatalogService) Update(ctx context.Context, res model.Resource, id model.ID, body any) (any, error) {
	out, err := entity(res)
	if err != nil {
		return nil, err
	}
	if err := s.api.UpdateResource(ctx, res, id, body, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the entity id of res.
func (s *CatalogService) Delete(ctx context.Context, res model.Resource, id model.ID) error {
	if _, err := entity(res); err != nil {
		return err
	}
	return s.api.DeleteResource(ctx, res, id)
}

func list[T any](ctx context.Context, api *client.Client, res model.Resource) ([]T, error) {
	out := []T{}
	if err := api.ListResource(ctx, res, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func entity(res model.Resource) (any, error) {
	switch res {
	case model.ResourceClasses:
		return &model.Class{}, nil
	case model.ResourceSubjects:
		return &model.Subject{}, nil
	case model.ResourceStudyMaterials:
		return &model.StudyMaterial{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownResource, res)
}
