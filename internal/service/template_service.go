package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-paper/internal/client"
	"github.com/stemsi/exstem-paper/internal/logger"
	"github.com/stemsi/exstem-paper/internal/mapper"
	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/paper"
)

// TemplateService manages paper templates and turns them into papers.
type TemplateService struct {
	api    *client.Client
	papers *PaperService
	log    zerolog.Logger
}

// NewTemplateService creates a new TemplateService.
func NewTemplateService(api *client.Client, papers *PaperService, log zerolog.Logger) *TemplateService {
	return &TemplateService{
		api:    api,
		papers: papers,
		log:    logger.Component(log, "template_service"),
	}
}

func (s *TemplateService) List(ctx context.Context) ([]model.Template, error) {
	return s.api.Templates(ctx)
}

func (s *TemplateService) Get(ctx context.Context, id model.ID) (model.Template, error) {
	return s.api.Template(ctx, id)
}

// Create stores t after normalising its groups and stamping order.
func (s *TemplateService) Create(ctx context.Context, t model.Template) (model.Template, error) {
	if err := prepareTemplate(&t); err != nil {
		return model.Template{}, err
	}
	return s.api.CreateTemplate(ctx, t)
}

func (s *TemplateService) Update(ctx context.Context, id model.ID, t model.Template) (model.Template, error) {
	if err := prepareTemplate(&t); err != nil {
		return model.Template{}, err
	}
	t.ID = id
	return s.api.UpdateTemplate(ctx, id, t)
}

func (s *TemplateService) Delete(ctx context.Context, id model.ID) error {
	return s.api.DeleteTemplate(ctx, id)
}

// Instantiate creates a paper on the API from a template and opens its
// draft. Every section, group and question of the template is created
// through the API so the draft only holds IDs the API assigned. When a
// step fails the new paper is deleted again and ErrTemplateIncomplete is
// returned.
func (s *TemplateService) Instantiate(ctx context.Context, templateID model.ID, req model.InstantiateTemplateRequest) (model.Paper, error) {
	t, err := s.api.Template(ctx, templateID)
	if err != nil {
		return model.Paper{}, err
	}
	skeleton := paper.FromTemplate(t, model.Paper{
		Title:           strings.TrimSpace(req.Title),
		Subject:         req.Subject,
		ClassName:       req.ClassName,
		DurationMinutes: req.DurationMinutes,
	})

	created, err := s.api.CreatePaper(ctx, mapper.PaperPayload(skeleton))
	if err != nil {
		return model.Paper{}, err
	}
	if created.ID == "" {
		return model.Paper{}, fmt.Errorf("%w: API returned no paper ID", ErrTemplateIncomplete)
	}
	paperID := created.ID
	log := s.log.With().Str("template_id", templateID.String()).Str("paper_id", paperID.String()).Logger()

	if err := s.populate(ctx, paperID, skeleton); err != nil {
		s.rollback(ctx, paperID, log)
		return model.Paper{}, fmt.Errorf("%w: %w", ErrTemplateIncomplete, err)
	}

	p, err := s.papers.Draft(ctx, paperID)
	if err != nil {
		return model.Paper{}, err
	}
	log.Info().Int("sections", len(p.Sections)).Msg("Paper created from template")
	return p, nil
}

// populate opens an empty draft for paperID and replays the skeleton through
// the API-first CRUD paths.
func (s *TemplateService) populate(ctx context.Context, paperID model.ID, skeleton model.Paper) error {
	meta := skeleton
	meta.ID = paperID
	meta.Sections = []model.Section{}
	if _, err := s.papers.open(ctx, meta); err != nil {
		return err
	}

	for _, src := range skeleton.Sections {
		sec, err := s.papers.CreateSection(ctx, paperID, model.CreateSectionRequest{
			Title:        src.Title,
			Instructions: src.Instructions,
		})
		if err != nil {
			return err
		}
		for _, sg := range src.Groups {
			g, err := s.papers.CreateGroup(ctx, paperID, sec.ID, model.CreateGroupRequest{
				QuestionType:   string(sg.QuestionType),
				Instructions:   sg.Instructions,
				NumberingStyle: string(sg.NumberingStyle),
				ParagraphText:  sg.ParagraphText,
			})
			if err != nil {
				return err
			}
			for _, q := range sg.Questions {
				f, err := mapper.FromEntity(q, g.QuestionType)
				if err != nil {
					return err
				}
				if _, err := s.papers.CreateQuestion(ctx, paperID, g.ID, f); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *TemplateService) rollback(ctx context.Context, paperID model.ID, log zerolog.Logger) {
	if err := s.api.DeletePaper(ctx, paperID); err != nil {
		log.Error().Err(err).Msg("Failed to delete partially created paper")
	}
	if err := s.papers.Discard(ctx, paperID); err != nil {
		log.Warn().Err(err).Msg("Failed to drop partial draft")
	}
}

// prepareTemplate validates section titles and group types and stamps order
// from position.
func prepareTemplate(t *model.Template) error {
	p := model.Paper{Sections: t.Sections}
	for _, sec := range p.Sections {
		if strings.TrimSpace(sec.Title) == "" {
			return paper.ErrEmptyTitle
		}
	}
	tree := paper.New(p)
	for _, sec := range tree.Paper().Sections {
		for _, g := range sec.Groups {
			if !g.QuestionType.Valid() {
				return &ValidationError{Fields: map[string]string{"question_type": "unknown question type " + string(g.QuestionType)}}
			}
		}
	}
	tree.Renumber()
	t.Sections = tree.Paper().Sections
	return nil
}
