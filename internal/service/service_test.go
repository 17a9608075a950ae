package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/exstem-paper/internal/client"
	"github.com/stemsi/exstem-paper/internal/editor"
	"github.com/stemsi/exstem-paper/internal/form"
	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/paper"
	"github.com/stemsi/exstem-paper/internal/repository"
	"github.com/stemsi/exstem-paper/internal/validator"
)

// fakeAPI is a minimal stand-in for the remote exam API.
type fakeAPI struct {
	mu     sync.Mutex
	paper  model.Paper
	calls  []string
	bodies map[string][]byte
	fail   map[string]int
	nextID int
}

func newFakeAPI(p model.Paper) *fakeAPI {
	return &fakeAPI{paper: p, bodies: map[string][]byte{}, fail: map[string]int{}}
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := r.Method + " " + r.URL.Path
	body, _ := io.ReadAll(r.Body)
	f.calls = append(f.calls, key)
	f.bodies[key] = body

	if status, ok := f.fail[key]; ok {
		w.WriteHeader(status)
		w.Write([]byte(`{"message":"rejected by fake"}`))
		return
	}

	var data any = map[string]any{}
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/papers/"+f.paper.ID.String():
		data = f.paper
	case r.Method == http.MethodGet && r.URL.Path == "/question-types":
		types := make([]model.QuestionTypeInfo, len(model.QuestionTypes))
		for i, t := range model.QuestionTypes {
			types[i] = model.QuestionTypeInfo{ID: model.ID(fmt.Sprint(i + 1)), Slug: t}
		}
		data = types
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/templates/"):
		data = model.Template{
			ID:   "t1",
			Name: "Term paper",
			Sections: []model.Section{{
				ID:     "ts1",
				Title:  "Section A",
				Groups: []model.QuestionGroup{{
					ID:           "tg1",
					QuestionType: model.QuestionTypeShortAnswer,
					Questions:    []model.Question{{ID: "tq1", QuestionText: "Define osmosis.", Marks: 2}},
				}},
			}},
		}
	case r.Method == http.MethodPost:
		f.nextID++
		data = map[string]any{"id": fmt.Sprintf("api-%d", f.nextID)}
	}
	json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func (f *fakeAPI) body(t *testing.T, key string, out any) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.bodies[key]
	require.True(t, ok, "no request %s", key)
	require.NoError(t, json.Unmarshal(raw, out))
}

func (f *fakeAPI) called(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == key {
			return true
		}
	}
	return false
}

type fixture struct {
	api       *fakeAPI
	papers    *PaperService
	templates *TemplateService
	drafts    *repository.DraftRepository
	ctx       context.Context
}

func newFixture(t *testing.T, p model.Paper) *fixture {
	t.Helper()
	fake := newFakeAPI(p)
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	log := zerolog.Nop()
	api := client.New(srv.URL, 5*time.Second, log)
	drafts := repository.NewDraftRepository(rdb, time.Hour)
	types := NewQuestionTypeService(api, repository.NewQuestionTypeRepository(rdb, time.Minute), log)

	papers := NewPaperService(api, drafts, types, NewRenderService(""), log)
	return &fixture{
		api:       fake,
		papers:    papers,
		templates: NewTemplateService(api, papers, log),
		drafts:    drafts,
		ctx:       client.WithToken(context.Background(), "tok"),
	}
}

func emptyPaper() model.Paper {
	return model.Paper{ID: "p1", Title: "Mid Term", Sections: []model.Section{}}
}

func TestLoadSortsAndResolvesTypes(t *testing.T) {
	f := newFixture(t, model.Paper{
		ID:    "p1",
		Title: "Mid Term",
		Sections: []model.Section{
			{ID: "s2", Title: "Section B", Order: 2},
			{ID: "s1", Title: "Section A", Order: 1, Groups: []model.QuestionGroup{
				{ID: "g1", QuestionTypeID: "1", Order: 1},
			}},
		},
	})

	p, err := f.papers.Load(f.ctx, "p1")
	require.NoError(t, err)
	require.Len(t, p.Sections, 2)
	assert.Equal(t, "Section A", p.Sections[0].Title)
	assert.Equal(t, model.QuestionTypeMCQ, p.Sections[0].Groups[0].QuestionType)

	draft, err := f.papers.Draft(f.ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, model.ID("s1"), draft.Sections[0].ID)
	assert.Equal(t, model.QuestionTypeMCQ, draft.Sections[0].Groups[0].QuestionType)
}

func TestDraftNotLoaded(t *testing.T) {
	f := newFixture(t, emptyPaper())
	_, err := f.papers.Draft(f.ctx, "p1")
	assert.ErrorIs(t, err, repository.ErrDraftNotFound)
}

func TestCreateSectionGroupQuestion(t *testing.T) {
	f := newFixture(t, emptyPaper())
	_, err := f.papers.Load(f.ctx, "p1")
	require.NoError(t, err)

	sec, err := f.papers.CreateSection(f.ctx, "p1", model.CreateSectionRequest{Title: "Section A"})
	require.NoError(t, err)
	assert.Equal(t, model.ID("api-1"), sec.ID)

	g, err := f.papers.CreateGroup(f.ctx, "p1", sec.ID, model.CreateGroupRequest{QuestionType: "mcq", NumberingStyle: "roman"})
	require.NoError(t, err)

	var groupBody model.GroupPayload
	f.api.body(t, "POST /sections/api-1/groups", &groupBody)
	assert.Equal(t, model.ID("1"), groupBody.QuestionTypeID)
	assert.Nil(t, groupBody.Logic)

	mcq := &form.MCQ{
		QuestionText: "Largest planet?",
		Marks:        2,
		Choices:      []form.Choice{{Text: "Mars"}, {Text: "Jupiter", IsCorrect: true}, {Text: "Venus"}},
	}
	res, err := f.papers.CreateQuestion(f.ctx, "p1", g.ID, mcq)
	require.NoError(t, err)

	var sent model.QuestionPayload
	f.api.body(t, "POST /groups/"+g.ID.String()+"/questions", &sent)
	require.Len(t, sent.Options, 3)
	assert.False(t, sent.Options[0].IsCorrect)
	assert.True(t, sent.Options[1].IsCorrect)
	assert.False(t, sent.Options[2].IsCorrect)

	draft, err := f.papers.Draft(f.ctx, "p1")
	require.NoError(t, err)
	q := draft.Sections[0].Groups[0].Questions[0]
	assert.Equal(t, res.Question.ID, q.ID)
	assert.True(t, q.Options[1].IsCorrect)
	assert.Equal(t, 1, q.Order)
}

func TestCreateQuestionValidationSkipsAPI(t *testing.T) {
	f := newFixture(t, model.Paper{ID: "p1", Sections: []model.Section{{ID: "s1", Title: "A", Groups: []model.QuestionGroup{
		{ID: "g1", QuestionType: model.QuestionTypeMCQ},
	}}}})
	_, err := f.papers.Load(f.ctx, "p1")
	require.NoError(t, err)

	_, err = f.papers.CreateQuestion(f.ctx, "p1", "g1", &form.MCQ{
		QuestionText: "Pick",
		Marks:        1,
		Choices:      []form.Choice{{Text: "a", IsCorrect: true}, {Text: "b", IsCorrect: true}},
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, validator.FieldChoicesCorrect)
	assert.False(t, f.api.called("POST /groups/g1/questions"))
}

func TestCreateQuestionTypeMismatch(t *testing.T) {
	f := newFixture(t, model.Paper{ID: "p1", Sections: []model.Section{{ID: "s1", Title: "A", Groups: []model.QuestionGroup{
		{ID: "g1", QuestionType: model.QuestionTypeMCQ},
	}}}})
	_, err := f.papers.Load(f.ctx, "p1")
	require.NoError(t, err)

	_, err = f.papers.CreateQuestion(f.ctx, "p1", "g1", &form.FillBlank{QuestionText: "x", CorrectAnswer: "y", Marks: 1})
	assert.ErrorIs(t, err, editor.ErrTypeMismatch)
}

func TestAPIFailureLeavesDraftUntouched(t *testing.T) {
	f := newFixture(t, emptyPaper())
	_, err := f.papers.Load(f.ctx, "p1")
	require.NoError(t, err)
	f.api.fail["POST /papers/p1/sections"] = http.StatusInternalServerError

	_, err = f.papers.CreateSection(f.ctx, "p1", model.CreateSectionRequest{Title: "Section A"})
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "rejected by fake", apiErr.Message)

	draft, err := f.papers.Draft(f.ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, draft.Sections)
}

func TestSessionExpired(t *testing.T) {
	f := newFixture(t, emptyPaper())
	f.api.fail["GET /papers/p1"] = http.StatusUnauthorized

	_, err := f.papers.Load(f.ctx, "p1")
	assert.ErrorIs(t, err, client.ErrSessionExpired)
}

func TestUpdateGroupRejectsTypeChange(t *testing.T) {
	f := newFixture(t, model.Paper{ID: "p1", Sections: []model.Section{{ID: "s1", Title: "A", Groups: []model.QuestionGroup{
		{ID: "g1", QuestionType: model.QuestionTypeMCQ, QuestionTypeID: "1"},
	}}}})
	_, err := f.papers.Load(f.ctx, "p1")
	require.NoError(t, err)

	_, err = f.papers.UpdateGroup(f.ctx, "p1", "g1", model.UpdateGroupRequest{QuestionType: "paragraph"})
	assert.ErrorIs(t, err, paper.ErrTypeChange)
	assert.False(t, f.api.called("PUT /groups/g1"))

	g, err := f.papers.UpdateGroup(f.ctx, "p1", "g1", model.UpdateGroupRequest{Instructions: "Choose one", NumberingStyle: "alphabetic"})
	require.NoError(t, err)
	assert.Equal(t, "Choose one", g.Instructions)
	assert.Equal(t, "alphabetic", string(g.NumberingStyle))
}

func TestDispatchSaveAndUndo(t *testing.T) {
	f := newFixture(t, model.Paper{ID: "p1", Sections: []model.Section{
		{ID: "s1", Title: "A", Order: 1},
		{ID: "s2", Title: "B", Order: 2},
	}})
	_, err := f.papers.Load(f.ctx, "p1")
	require.NoError(t, err)

	p, err := f.papers.Dispatch(f.ctx, "p1", paper.ShiftSection{Index: 1, Direction: paper.Up})
	require.NoError(t, err)
	assert.Equal(t, model.ID("s2"), p.Sections[0].ID)

	p, err = f.papers.Undo(f.ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, model.ID("s1"), p.Sections[0].ID)

	_, err = f.papers.Dispatch(f.ctx, "p1", paper.ShiftSection{Index: 1, Direction: paper.Up})
	require.NoError(t, err)
	p, err = f.papers.Save(f.ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Sections[0].Order)

	var order model.SectionOrderPayload
	f.api.body(t, "PUT /papers/p1/sections", &order)
	require.Len(t, order.Sections, 2)
	assert.Equal(t, model.ID("s2"), order.Sections[0].ID)
	assert.Equal(t, 1, order.Sections[0].Order)
	assert.Equal(t, model.ID("s1"), order.Sections[1].ID)
	assert.Equal(t, 2, order.Sections[1].Order)

	_, err = f.papers.Undo(f.ctx, "p1")
	assert.ErrorIs(t, err, ErrNothingToUndo)
	draft, err := f.papers.Draft(f.ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, model.ID("s2"), draft.Sections[0].ID)
}

func TestSavePersistsGroupAndQuestionOrder(t *testing.T) {
	f := newFixture(t, model.Paper{ID: "p1", Sections: []model.Section{
		{ID: "s1", Title: "A", Order: 1, Groups: []model.QuestionGroup{
			{ID: "g1", QuestionTypeID: "1", Order: 1, Questions: []model.Question{{ID: "q1", Order: 1}, {ID: "q2", Order: 2}}},
			{ID: "g2", QuestionTypeID: "3", Order: 2},
		}},
	}})
	_, err := f.papers.Load(f.ctx, "p1")
	require.NoError(t, err)

	_, err = f.papers.Dispatch(f.ctx, "p1", &paper.ShiftGroup{SectionID: "s1", Index: 0, Direction: paper.Down})
	require.NoError(t, err)
	_, err = f.papers.Dispatch(f.ctx, "p1", &paper.MoveQuestion{GroupID: "g1", From: 1, To: 0})
	require.NoError(t, err)
	_, err = f.papers.Save(f.ctx, "p1")
	require.NoError(t, err)

	var order model.SectionOrderPayload
	f.api.body(t, "PUT /papers/p1/sections", &order)
	want := []model.SectionOrder{{ID: "s1", Order: 1, Groups: []model.GroupOrder{
		{ID: "g2", Order: 1, Questions: []model.QuestionOrder{}},
		{ID: "g1", Order: 2, Questions: []model.QuestionOrder{{ID: "q2", Order: 1}, {ID: "q1", Order: 2}}},
	}}}
	assert.Equal(t, want, order.Sections)
}

func TestDispatchRejectsStructuralActions(t *testing.T) {
	f := newFixture(t, emptyPaper())
	_, err := f.papers.Load(f.ctx, "p1")
	require.NoError(t, err)

	_, err = f.papers.Dispatch(f.ctx, "p1", &paper.AddSection{Section: model.Section{Title: "Ghost"}})
	assert.ErrorIs(t, err, ErrActionNotAllowed)

	draft, err := f.papers.Draft(f.ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, draft.Sections)
	assert.False(t, f.api.called("POST /papers/p1/sections"))
}

func TestAPIChangeDropsUndoHistory(t *testing.T) {
	f := newFixture(t, model.Paper{ID: "p1", Sections: []model.Section{
		{ID: "s1", Title: "A", Order: 1},
		{ID: "s2", Title: "B", Order: 2},
	}})
	_, err := f.papers.Load(f.ctx, "p1")
	require.NoError(t, err)

	_, err = f.papers.Dispatch(f.ctx, "p1", paper.ShiftSection{Index: 1, Direction: paper.Up})
	require.NoError(t, err)
	_, err = f.papers.CreateSection(f.ctx, "p1", model.CreateSectionRequest{Title: "C"})
	require.NoError(t, err)

	_, err = f.papers.Undo(f.ctx, "p1")
	assert.ErrorIs(t, err, ErrNothingToUndo)
	draft, err := f.papers.Draft(f.ctx, "p1")
	require.NoError(t, err)
	require.Len(t, draft.Sections, 3)
	assert.Equal(t, model.ID("api-1"), draft.Sections[2].ID)
}

func TestLocalEntitiesStayOffTheAPI(t *testing.T) {
	f := newFixture(t, emptyPaper())
	_, err := f.papers.Load(f.ctx, "p1")
	require.NoError(t, err)

	imported, err := f.papers.Import(f.ctx, "p1", strings.NewReader(`{"title":"Copy","sections":[{"title":"Loose"}]}`))
	require.NoError(t, err)
	local := imported.Sections[0].ID
	require.True(t, local.IsLocal())

	_, err = f.papers.Save(f.ctx, "p1")
	assert.ErrorIs(t, err, ErrLocalEntity)
	assert.False(t, f.api.called("PUT /papers/p1/sections"))

	_, err = f.papers.CreateGroup(f.ctx, "p1", local, model.CreateGroupRequest{QuestionType: "mcq"})
	assert.ErrorIs(t, err, ErrLocalEntity)
	assert.False(t, f.api.called("POST /sections/"+local.String()+"/groups"))

	require.NoError(t, f.papers.DeleteSection(f.ctx, "p1", local))
	assert.False(t, f.api.called("DELETE /sections/"+local.String()))
	draft, err := f.papers.Draft(f.ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, draft.Sections)
}

func TestImportMalformedKeepsDraft(t *testing.T) {
	f := newFixture(t, model.Paper{ID: "p1", Sections: []model.Section{{ID: "s1", Title: "A"}}})
	_, err := f.papers.Load(f.ctx, "p1")
	require.NoError(t, err)

	_, err = f.papers.Import(f.ctx, "p1", strings.NewReader("{not json"))
	assert.ErrorIs(t, err, paper.ErrMalformedImport)

	draft, err := f.papers.Draft(f.ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, draft.Sections, 1)

	var buf bytes.Buffer
	require.NoError(t, f.papers.Export(f.ctx, "p1", &buf))
	imported, err := f.papers.Import(f.ctx, "p1", &buf)
	require.NoError(t, err)
	assert.Equal(t, draft.Sections[0].ID, imported.Sections[0].ID)
}

func TestRenderDraft(t *testing.T) {
	f := newFixture(t, model.Paper{ID: "p1", Title: "Mid Term", Sections: []model.Section{{ID: "s1", Title: "A"}}})
	_, err := f.papers.Load(f.ctx, "p1")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.papers.Render(f.ctx, "p1", FormatHTML, &buf))
	assert.Contains(t, buf.String(), "Mid Term")

	outline, err := f.papers.Outline(f.ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Mid Term", outline.Title)
}

func TestTemplateInstantiate(t *testing.T) {
	f := newFixture(t, emptyPaper())

	p, err := f.templates.Instantiate(f.ctx, "t1", model.InstantiateTemplateRequest{Title: "Final", Subject: "Biology"})
	require.NoError(t, err)
	assert.Equal(t, model.ID("api-1"), p.ID)
	assert.Equal(t, "Final", p.Title)
	require.Len(t, p.Sections, 1)
	assert.Equal(t, model.ID("api-2"), p.Sections[0].ID)
	require.Len(t, p.Sections[0].Groups, 1)
	g := p.Sections[0].Groups[0]
	assert.Equal(t, model.ID("api-3"), g.ID)
	require.Len(t, g.Questions, 1)
	assert.Equal(t, model.ID("api-4"), g.Questions[0].ID)

	var meta model.PaperPayload
	f.api.body(t, "POST /papers", &meta)
	assert.Equal(t, "Final", meta.Title)
	assert.Equal(t, "Biology", meta.Subject)
	assert.True(t, f.api.called("POST /groups/api-3/questions"))

	draft, err := f.drafts.Get(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", draft.Paper.Title)

	_, err = f.papers.CreateGroup(f.ctx, p.ID, p.Sections[0].ID, model.CreateGroupRequest{QuestionType: "mcq"})
	require.NoError(t, err)
	assert.True(t, f.api.called("POST /sections/api-2/groups"))

	_, err = f.papers.Save(f.ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, f.api.called("PUT /papers/api-1/sections"))
}

func TestTemplateInstantiateRollsBack(t *testing.T) {
	f := newFixture(t, emptyPaper())
	f.api.fail["POST /sections/api-2/groups"] = http.StatusUnprocessableEntity

	_, err := f.templates.Instantiate(f.ctx, "t1", model.InstantiateTemplateRequest{Title: "Final"})
	assert.ErrorIs(t, err, ErrTemplateIncomplete)
	assert.True(t, f.api.called("DELETE /papers/api-1"))

	_, err = f.drafts.Get(f.ctx, "api-1")
	assert.ErrorIs(t, err, repository.ErrDraftNotFound)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{"", FormatHTML, false},
		{"PDF", FormatPDF, false},
		{"xlsx", FormatXLSX, false},
		{"docx", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.err {
			assert.ErrorIs(t, err, ErrUnknownFormat, tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestValidateForm(t *testing.T) {
	checked, err := ValidateForm(&form.Descriptive{
		Kind:         model.QuestionTypeLongAnswer,
		QuestionText: "Explain",
		Marks:        10,
		SubQuestions: []form.SubQuestion{{QuestionText: "part a", Marks: 4}, {QuestionText: "part b", Marks: 6}},
	})
	require.NoError(t, err)
	assert.Zero(t, checked.Payload.Marks)
	assert.True(t, checked.MarksOverridden)

	_, err = ValidateForm(&form.Conditional{SubQuestions: []form.SubQuestion{{QuestionText: "only", Marks: 5}}})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, validator.FieldSubQuestions)
}
