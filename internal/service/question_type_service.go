package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-paper/internal/client"
	"github.com/stemsi/exstem-paper/internal/form"
	"github.com/stemsi/exstem-paper/internal/logger"
	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/repository"
)

// QuestionTypeService maps question type slugs to the IDs the API expects.
type QuestionTypeService struct {
	api   *client.Client
	cache *repository.QuestionTypeRepository
	log   zerolog.Logger
}

// NewQuestionTypeService creates a new QuestionTypeService. cache may be nil.
func NewQuestionTypeService(api *client.Client, cache *repository.QuestionTypeRepository, log zerolog.Logger) *QuestionTypeService {
	return &QuestionTypeService{
		api:   api,
		cache: cache,
		log:   logger.Component(log, "question_type_service"),
	}
}

// List returns the question type catalogue, from cache when possible.
// Entries without a name get the built-in label.
func (s *QuestionTypeService) List(ctx context.Context) ([]model.QuestionTypeInfo, error) {
	if s.cache != nil {
		types, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("Question type cache read failed")
		}
		if ok {
			return types, nil
		}
	}

	types, err := s.api.QuestionTypes(ctx)
	if err != nil {
		return nil, err
	}
	for i := range types {
		if types[i].Name == "" {
			types[i].Name = types[i].Slug.Label()
		}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, types); err != nil {
			s.log.Warn().Err(err).Msg("Question type cache write failed")
		}
	}
	return types, nil
}

// Resolve returns the API ID of question type t.
func (s *QuestionTypeService) Resolve(ctx context.Context, t model.QuestionType) (model.ID, error) {
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", form.ErrUnknownType, t)
	}
	types, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	for _, info := range types {
		if info.Slug == t {
			return info.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not offered by the API", form.ErrUnknownType, t)
}

// fillSlugs sets QuestionType on groups the API returned with only an ID.
func (s *QuestionTypeService) fillSlugs(ctx context.Context, p *model.Paper) error {
	var types []model.QuestionTypeInfo
	for si := range p.Sections {
		for gi := range p.Sections[si].Groups {
			g := &p.Sections[si].Groups[gi]
			if g.QuestionType != "" || g.QuestionTypeID == "" {
				continue
			}
			if types == nil {
				var err error
				if types, err = s.List(ctx); err != nil {
					return err
				}
			}
			for _, info := range types {
				if info.ID == g.QuestionTypeID {
					g.QuestionType = info.Slug
				}
			}
		}
	}
	return nil
}
