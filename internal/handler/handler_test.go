package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/exstem-paper/internal/client"
	"github.com/stemsi/exstem-paper/internal/middleware"
	"github.com/stemsi/exstem-paper/internal/model"
	"github.com/stemsi/exstem-paper/internal/repository"
	"github.com/stemsi/exstem-paper/internal/service"
	"github.com/stemsi/exstem-paper/internal/validator"
	ws "github.com/stemsi/exstem-paper/internal/websocket"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

// upstream fakes the remote API. Every POST gets a fresh ID.
type upstream struct {
	mu     sync.Mutex
	paper  model.Paper
	fail   map[string]int
	bodies map[string][]byte
	nextID int
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()

	key := r.Method + " " + r.URL.Path
	body, _ := io.ReadAll(r.Body)
	u.bodies[key] = body
	if status, ok := u.fail[key]; ok {
		w.WriteHeader(status)
		w.Write([]byte(`{"message":"section title already used"}`))
		return
	}

	var data any = map[string]any{}
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/papers/"+u.paper.ID.String():
		data = u.paper
	case r.Method == http.MethodGet && r.URL.Path == "/question-types":
		types := make([]model.QuestionTypeInfo, len(model.QuestionTypes))
		for i, t := range model.QuestionTypes {
			types[i] = model.QuestionTypeInfo{ID: model.ID(fmt.Sprint(i + 1)), Slug: t}
		}
		data = types
	case r.Method == http.MethodPost:
		u.nextID++
		data = map[string]any{"id": fmt.Sprintf("api-%d", u.nextID)}
	}
	json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func (u *upstream) called(key string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	_, ok := u.bodies[key]
	return ok
}

func (u *upstream) failOn(key string, status int) {
	u.mu.Lock()
	u.fail[key] = status
	u.mu.Unlock()
}

type testEnv struct {
	router *gin.Engine
	api    *upstream
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	api := &upstream{
		paper:  model.Paper{ID: "p1", Title: "Mid Term", Sections: []model.Section{}},
		fail:   map[string]int{},
		bodies: map[string][]byte{},
	}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	log := zerolog.Nop()
	apiClient := client.New(srv.URL, 5*time.Second, log)
	drafts := repository.NewDraftRepository(rdb, time.Hour)
	types := service.NewQuestionTypeService(apiClient, nil, log)
	papers := service.NewPaperService(apiClient, drafts, types, service.NewRenderService(""), log)

	paperHandler := NewPaperHandler(papers, log)
	sectionHandler := NewSectionHandler(papers, log)
	questionHandler := NewQuestionHandler(papers, types, log)
	previewHandler := NewPreviewHandler(papers, drafts, log, nil)

	r := gin.New()
	r.GET("/ws/v1/papers/:id/preview", middleware.RequireBearer(), previewHandler.Preview)

	v1 := r.Group("/api/v1", middleware.RequireBearer())
	v1.GET("/question-types", questionHandler.ListQuestionTypes)
	v1.POST("/questions/validate", questionHandler.ValidateQuestion)

	p := v1.Group("/papers/:id")
	p.GET("", paperHandler.LoadPaper)
	p.GET("/draft", paperHandler.GetDraft)
	p.POST("/actions", paperHandler.DispatchAction)
	p.POST("/undo", paperHandler.Undo)
	p.GET("/render", paperHandler.RenderPaper)
	p.GET("/export", paperHandler.ExportPaper)
	p.POST("/import", paperHandler.ImportPaper)
	p.POST("/sections", sectionHandler.CreateSection)
	p.POST("/sections/:section_id/groups", sectionHandler.CreateGroup)
	p.PUT("/groups/:group_id", sectionHandler.UpdateGroup)
	p.POST("/groups/:group_id/questions", questionHandler.CreateQuestion)

	return &testEnv{router: r, api: api}
}

type envelope struct {
	Data  map[string]json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Authorization", "Bearer tok")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

// scaffold loads p1 and adds a section with one group of type qt.
func (e *testEnv) scaffold(t *testing.T, qt string) (sectionID, groupID string) {
	t.Helper()
	w, _ := e.do(t, http.MethodGet, "/api/v1/papers/p1", "")
	require.Equal(t, http.StatusOK, w.Code)

	w, env := e.do(t, http.MethodPost, "/api/v1/papers/p1/sections", `{"title":"Section A"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sec model.Section
	require.NoError(t, json.Unmarshal(env.Data["section"], &sec))

	w, env = e.do(t, http.MethodPost, "/api/v1/papers/p1/sections/"+sec.ID.String()+"/groups", `{"question_type":"`+qt+`"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var g model.QuestionGroup
	require.NoError(t, json.Unmarshal(env.Data["group"], &g))
	return sec.ID.String(), g.ID.String()
}

func TestTokenRequired(t *testing.T) {
	e := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/papers/p1/draft", nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_REQUIRED")
}

func TestDraftNotLoaded(t *testing.T) {
	e := newTestEnv(t)
	w, env := e.do(t, http.MethodGet, "/api/v1/papers/p1/draft", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "DRAFT_NOT_FOUND", env.Error.Code)
}

func TestCreateSectionBindingError(t *testing.T) {
	e := newTestEnv(t)
	e.do(t, http.MethodGet, "/api/v1/papers/p1", "")

	w, env := e.do(t, http.MethodPost, "/api/v1/papers/p1/sections", `{"instructions":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields, "title")
}

func TestCreateMCQQuestion(t *testing.T) {
	e := newTestEnv(t)
	_, groupID := e.scaffold(t, "mcq")

	body := `{"question_type":"mcq","question_text":"Largest planet?","marks":2,
		"choices":[{"text":"Mars"},{"text":"Jupiter"},{"text":"Venus"}],"correct_index":1}`
	w, env := e.do(t, http.MethodPost, "/api/v1/papers/p1/groups/"+groupID+"/questions", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var q model.Question
	require.NoError(t, json.Unmarshal(env.Data["question"], &q))
	require.Len(t, q.Options, 3)
	assert.False(t, q.Options[0].IsCorrect)
	assert.True(t, q.Options[1].IsCorrect)
	assert.False(t, q.Options[2].IsCorrect)
}

func TestCreateQuestionFieldErrors(t *testing.T) {
	e := newTestEnv(t)
	_, groupID := e.scaffold(t, "mcq")

	body := `{"question_type":"mcq","question_text":"Pick","marks":1,
		"choices":[{"text":"a","is_correct":true},{"text":"b","is_correct":true}]}`
	w, env := e.do(t, http.MethodPost, "/api/v1/papers/p1/groups/"+groupID+"/questions", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Fields, validator.FieldChoicesCorrect)

	assert.False(t, e.api.called("POST /groups/"+groupID+"/questions"), "invalid question must not reach the API")
}

func TestCreateQuestionPayloadErrors(t *testing.T) {
	e := newTestEnv(t)
	_, groupID := e.scaffold(t, "mcq")
	path := "/api/v1/papers/p1/groups/" + groupID + "/questions"

	w, env := e.do(t, http.MethodPost, path, `{"question_type":"essay"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNKNOWN_QUESTION_TYPE", env.Error.Code)

	w, env = e.do(t, http.MethodPost, path, `{"question_type":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PAYLOAD", env.Error.Code)

	w, env = e.do(t, http.MethodPost, path, `{"question_type":"short-answer","question_text":"Why?","marks":2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PAYLOAD", env.Error.Code)
}

func TestUpdateGroupTypeChange(t *testing.T) {
	e := newTestEnv(t)
	_, groupID := e.scaffold(t, "mcq")

	w, env := e.do(t, http.MethodPut, "/api/v1/papers/p1/groups/"+groupID, `{"question_type":"long-answer"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "QUESTION_TYPE_CHANGE", env.Error.Code)
}

func TestUpstreamError(t *testing.T) {
	e := newTestEnv(t)
	e.do(t, http.MethodGet, "/api/v1/papers/p1", "")
	e.api.failOn("POST /papers/p1/sections", http.StatusUnprocessableEntity)

	w, env := e.do(t, http.MethodPost, "/api/v1/papers/p1/sections", `{"title":"Section A"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "UPSTREAM_ERROR", env.Error.Code)
	assert.Equal(t, "section title already used", env.Error.Message)
}

func TestFailMapsUnreachableAPI(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	fail(c, zerolog.Nop(), fmt.Errorf("%w: GET /papers/1: %w", client.ErrUnavailable, context.DeadlineExceeded))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Contains(t, w.Body.String(), "UPSTREAM_ERROR")
}

func TestSessionExpired(t *testing.T) {
	e := newTestEnv(t)
	e.api.failOn("GET /papers/p1", http.StatusUnauthorized)

	w, env := e.do(t, http.MethodGet, "/api/v1/papers/p1", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "SESSION_EXPIRED", env.Error.Code)
}

func TestDispatchAndUndo(t *testing.T) {
	e := newTestEnv(t)
	e.scaffold(t, "mcq")
	e.do(t, http.MethodPost, "/api/v1/papers/p1/sections", `{"title":"Section B"}`)

	w, env := e.do(t, http.MethodPost, "/api/v1/papers/p1/actions", `{"type":"shift_section","index":0,"direction":"down"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var p model.Paper
	require.NoError(t, json.Unmarshal(env.Data["paper"], &p))
	assert.Equal(t, "Section B", p.Sections[0].Title)

	w, env = e.do(t, http.MethodPost, "/api/v1/papers/p1/undo", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data["paper"], &p))
	assert.Equal(t, "Section A", p.Sections[0].Title)

	w, env = e.do(t, http.MethodPost, "/api/v1/papers/p1/actions", `{"type":"rename_everything"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNKNOWN_ACTION", env.Error.Code)

	w, env = e.do(t, http.MethodPost, "/api/v1/papers/p1/actions", `{"type":"add_section","section":{"title":"Ghost"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ACTION_NOT_ALLOWED", env.Error.Code)
}

func TestUndoNothing(t *testing.T) {
	e := newTestEnv(t)
	e.do(t, http.MethodGet, "/api/v1/papers/p1", "")

	w, env := e.do(t, http.MethodPost, "/api/v1/papers/p1/undo", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "NOTHING_TO_UNDO", env.Error.Code)
}

func TestRender(t *testing.T) {
	e := newTestEnv(t)
	e.scaffold(t, "short-answer")

	w, _ := e.do(t, http.MethodGet, "/api/v1/papers/p1/render", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Empty(t, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "Section A")

	w, _ = e.do(t, http.MethodGet, "/api/v1/papers/p1/render?format=xlsx", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="paper-p1.xlsx"`)

	w, env := e.do(t, http.MethodGet, "/api/v1/papers/p1/render?format=pdf", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "PDF_UNAVAILABLE", env.Error.Code)

	w, env = e.do(t, http.MethodGet, "/api/v1/papers/p1/render?format=docx", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNKNOWN_FORMAT", env.Error.Code)
}

func TestExportImport(t *testing.T) {
	e := newTestEnv(t)
	e.scaffold(t, "short-answer")

	w, _ := e.do(t, http.MethodGet, "/api/v1/papers/p1/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	exported := w.Body.String()

	w, env := e.do(t, http.MethodPost, "/api/v1/papers/p1/import", `{"sections": [`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MALFORMED_IMPORT", env.Error.Code)

	w, env = e.do(t, http.MethodPost, "/api/v1/papers/p1/import", exported)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var p model.Paper
	require.NoError(t, json.Unmarshal(env.Data["paper"], &p))
	require.Len(t, p.Sections, 1)
	assert.Equal(t, "Section A", p.Sections[0].Title)
}

func TestValidateQuestion(t *testing.T) {
	e := newTestEnv(t)

	body := `{"question_type":"conditional","question_text":"Answer one","marks":5,
		"sub_questions":[{"question_text":"Explain osmosis","marks":5},{"question_text":"Explain diffusion","marks":5}]}`
	w, env := e.do(t, http.MethodPost, "/api/v1/questions/validate", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, "true", string(env.Data["marks_overridden"]))

	var payload model.QuestionPayload
	require.NoError(t, json.Unmarshal(env.Data["payload"], &payload))
	assert.Equal(t, 0, payload.Marks)

	w, env = e.do(t, http.MethodPost, "/api/v1/questions/validate",
		`{"question_type":"conditional","question_text":"Answer one","sub_questions":[{"question_text":"Only","marks":3}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error.Fields, validator.FieldSubQuestions)
}

func TestListQuestionTypes(t *testing.T) {
	e := newTestEnv(t)
	w, env := e.do(t, http.MethodGet, "/api/v1/question-types", "")
	require.Equal(t, http.StatusOK, w.Code)

	var types []model.QuestionTypeInfo
	require.NoError(t, json.Unmarshal(env.Data["question_types"], &types))
	assert.Len(t, types, len(model.QuestionTypes))
	assert.NotEmpty(t, types[0].Name)
}

func TestPreviewPushesOutline(t *testing.T) {
	e := newTestEnv(t)
	e.do(t, http.MethodGet, "/api/v1/papers/p1", "")

	srv := httptest.NewServer(e.router)
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/papers/p1/preview?token=tok"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first ws.OutlineResponse
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, ws.EventOutline, first.Event)
	assert.Empty(t, first.Outline.Sections)

	w, _ := e.do(t, http.MethodPost, "/api/v1/papers/p1/sections", `{"title":"Section A"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var next ws.OutlineResponse
	require.NoError(t, conn.ReadJSON(&next))
	require.Len(t, next.Outline.Sections, 1)
	assert.Equal(t, "Section A", next.Outline.Sections[0].Title)

	require.NoError(t, conn.WriteJSON(ws.RequestEnvelope{Action: ws.ActionPing}))
	var pong ws.PongResponse
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, ws.EventPong, pong.Event)
}

func TestPreviewWithoutDraft(t *testing.T) {
	e := newTestEnv(t)

	w, env := e.do(t, http.MethodGet, "/ws/v1/papers/p1/preview?token=tok", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "DRAFT_NOT_FOUND", env.Error.Code)
}
