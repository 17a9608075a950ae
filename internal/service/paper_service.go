package service

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-paper/internal/client"
	"github.com/stemsi/exstem-paper/internal/logger"
	"github.com/stemsi/exstem-paper/internal/mapper"
	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/paper"
	"github.com/stemsi/exstem-paper/internal/render"
	"github.com/stemsi/exstem-paper/internal/repository"
)

// PaperService keeps the draft tree of each open paper in step with the
// remote API. CRUD calls go to the API first; the draft is patched only when
// the API accepts the change.
type PaperService struct {
	api      *client.Client
	drafts   *repository.DraftRepository
	types    *QuestionTypeService
	renderer *RenderService
	log      zerolog.Logger
}

// NewPaperService creates a new PaperService.
func NewPaperService(
	api *client.Client,
	drafts *repository.DraftRepository,
	types *QuestionTypeService,
	renderer *RenderService,
	log zerolog.Logger,
) *PaperService {
	return &PaperService{
		api:      api,
		drafts:   drafts,
		types:    types,
		renderer: renderer,
		log:      logger.Component(log, "paper_service"),
	}
}

// Load fetches a paper from the API and replaces its draft.
func (s *PaperService) Load(ctx context.Context, paperID model.ID) (model.Paper, error) {
	p, err := s.api.GetPaper(ctx, paperID)
	if err != nil {
		return model.Paper{}, err
	}
	if err := s.types.fillSlugs(ctx, &p); err != nil {
		return model.Paper{}, err
	}
	sortByOrder(&p)
	p.ID = paperID
	tree, err := s.open(ctx, p)
	if err != nil {
		return model.Paper{}, err
	}

	s.log.Info().
		Str("paper_id", paperID.String()).
		Int("sections", len(p.Sections)).
		Int("questions", p.QuestionCount()).
		Msg("Paper loaded into draft")
	return tree.Paper(), nil
}

// open replaces the draft of p.ID with a fresh tree over p.
func (s *PaperService) open(ctx context.Context, p model.Paper) (*paper.Tree, error) {
	tree := paper.New(p)
	if err := s.drafts.Save(ctx, p.ID, tree.State()); err != nil {
		return nil, err
	}
	return tree, nil
}

// Draft returns the current draft of a paper.
func (s *PaperService) Draft(ctx context.Context, paperID model.ID) (model.Paper, error) {
	tree, err := s.tree(ctx, paperID)
	if err != nil {
		return model.Paper{}, err
	}
	return tree.Paper(), nil
}

// Dispatch applies a reorder action to the draft without calling the API.
// Reorders are persisted later by Save; any other action fails with
// ErrActionNotAllowed since its CRUD endpoint must go to the API first.
func (s *PaperService) Dispatch(ctx context.Context, paperID model.ID, action paper.Action) (model.Paper, error) {
	if !paper.IsReorder(action) {
		return model.Paper{}, fmt.Errorf("%w: %s", ErrActionNotAllowed, action.Kind())
	}
	return s.mutate(ctx, paperID, func(tree *paper.Tree) error {
		return tree.Apply(action)
	})
}

// Undo reverts the last unsaved reorder.
func (s *PaperService) Undo(ctx context.Context, paperID model.ID) (model.Paper, error) {
	return s.mutate(ctx, paperID, func(tree *paper.Tree) error {
		if !tree.Undo() {
			return ErrNothingToUndo
		}
		return nil
	})
}

// Save stamps order from array position and sends the full ordered tree to
// the API. A successful save becomes the new undo baseline.
func (s *PaperService) Save(ctx context.Context, paperID model.ID) (model.Paper, error) {
	return s.mutate(ctx, paperID, func(tree *paper.Tree) error {
		tree.Renumber()
		p := tree.Paper()
		if n := countLocal(p); n > 0 {
			return fmt.Errorf("%w: draft holds %d unsynced entities, reload the paper", ErrLocalEntity, n)
		}
		if err := s.api.SaveSectionOrder(ctx, paperID, mapper.SectionOrders(p.Sections)); err != nil {
			return err
		}
		tree.ClearHistory()
		s.log.Info().Str("paper_id", paperID.String()).Msg("Draft order saved")
		return nil
	})
}

// Discard drops the draft of a paper.
func (s *PaperService) Discard(ctx context.Context, paperID model.ID) error {
	return s.drafts.Delete(ctx, paperID)
}

// Export writes the draft as JSON.
func (s *PaperService) Export(ctx context.Context, paperID model.ID, w io.Writer) error {
	p, err := s.Draft(ctx, paperID)
	if err != nil {
		return err
	}
	return paper.Export(w, p)
}

// Import replaces the draft with an exported tree. Nothing is sent to the
// API, and a malformed file leaves the draft untouched. Entities without an
// ID get local IDs, which Save and the CRUD endpoints refuse.
func (s *PaperService) Import(ctx context.Context, paperID model.ID, r io.Reader) (model.Paper, error) {
	p, err := paper.Import(r)
	if err != nil {
		return model.Paper{}, err
	}
	p.ID = paperID

	tree := paper.New(p)
	if err := s.drafts.Save(ctx, paperID, tree.State()); err != nil {
		return model.Paper{}, err
	}
	return tree.Paper(), nil
}

// Render writes the draft in format f.
func (s *PaperService) Render(ctx context.Context, paperID model.ID, f Format, w io.Writer) error {
	p, err := s.Draft(ctx, paperID)
	if err != nil {
		return err
	}
	return s.renderer.Render(w, p, f)
}

// Outline returns the numbering summary of the draft.
func (s *PaperService) Outline(ctx context.Context, paperID model.ID) (render.Outline, error) {
	p, err := s.Draft(ctx, paperID)
	if err != nil {
		return render.Outline{}, err
	}
	return s.renderer.Outline(p), nil
}

func (s *PaperService) tree(ctx context.Context, paperID model.ID) (*paper.Tree, error) {
	state, err := s.drafts.Get(ctx, paperID)
	if err != nil {
		return nil, err
	}
	return paper.FromState(state), nil
}

// mutate loads the draft, runs fn and stores the result. The draft is not
// written when fn fails.
func (s *PaperService) mutate(ctx context.Context, paperID model.ID, fn func(*paper.Tree) error) (model.Paper, error) {
	tree, err := s.tree(ctx, paperID)
	if err != nil {
		return model.Paper{}, err
	}
	if err := fn(tree); err != nil {
		return model.Paper{}, err
	}
	if err := s.drafts.Save(ctx, paperID, tree.State()); err != nil {
		return model.Paper{}, err
	}
	return tree.Paper(), nil
}

// commit patches tree after a successful API call and stores it. Undo history
// is dropped because it predates the change. A failing action here means the
// API and the draft disagree; the caller should reload.
func (s *PaperService) commit(ctx context.Context, paperID model.ID, tree *paper.Tree, action paper.Action) error {
	if err := tree.Sync(action); err != nil {
		s.log.Error().Err(err).
			Str("paper_id", paperID.String()).
			Str("action", action.Kind()).
			Msg("Draft out of sync with API")
		return fmt.Errorf("patch draft: %w", err)
	}
	return s.drafts.Save(ctx, paperID, tree.State())
}

func requireRemote(id model.ID) error {
	if id.IsLocal() {
		return fmt.Errorf("%w: %s", ErrLocalEntity, id)
	}
	return nil
}

// countLocal returns how many sections, groups and questions of p have
// local IDs.
func countLocal(p model.Paper) int {
	n := 0
	for _, sec := range p.Sections {
		if sec.ID.IsLocal() {
			n++
		}
		for _, g := range sec.Groups {
			if g.ID.IsLocal() {
				n++
			}
			for _, q := range g.Questions {
				if q.ID.IsLocal() {
					n++
				}
			}
		}
	}
	return n
}

// sortByOrder puts every level of p in its stored order. Array position is
// authoritative from here on.
func sortByOrder(p *model.Paper) {
	sort.SliceStable(p.Sections, func(i, j int) bool { return p.Sections[i].Order < p.Sections[j].Order })
	for si := range p.Sections {
		groups := p.Sections[si].Groups
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Order < groups[j].Order })
		for gi := range groups {
			qs := groups[gi].Questions
			sort.SliceStable(qs, func(i, j int) bool { return qs[i].Order < qs[j].Order })
			for qi := range qs {
				opts := qs[qi].Options
				sort.SliceStable(opts, func(i, j int) bool { return opts[i].Order < opts[j].Order })
				subs := qs[qi].SubQuestions
				sort.SliceStable(subs, func(i, j int) bool { return subs[i].SubOrder < subs[j].SubOrder })
			}
		}
	}
}
