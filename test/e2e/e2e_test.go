//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"github.com/stemsi/exstem-paper/internal/model"
)

const defaultBaseURL = "http://localhost:8080/api/v1"

var (
	baseURL   string
	token     string
	paperID   string
	sectionID string
	groupID   string
	questID   string
)

// TestMain expects a running server backed by a live exam API, plus
// API_TOKEN and E2E_PAPER_ID for an empty paper the run may modify.
func TestMain(m *testing.M) {
	// Load .env if present (ignore error)
	_ = godotenv.Load("../../.env")

	baseURL = os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	token = os.Getenv("API_TOKEN")
	paperID = os.Getenv("E2E_PAPER_ID")
	if token == "" || paperID == "" {
		fmt.Println("API_TOKEN and E2E_PAPER_ID must be set; skipping e2e")
		os.Exit(0)
	}

	os.Exit(m.Run())
}

func TestE2EFlow(t *testing.T) {
	t.Run("LoadPaper", func(t *testing.T) {
		resp := mustDo(t, http.MethodGet, "/papers/"+paperID, nil, http.StatusOK)
		var body struct {
			Data struct {
				Paper model.Paper `json:"paper"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		if body.Data.Paper.ID.String() != paperID {
			t.Fatalf("paper id = %q", body.Data.Paper.ID)
		}
	})

	t.Run("CreateSection", func(t *testing.T) {
		resp := mustDo(t, http.MethodPost, "/papers/"+paperID+"/sections",
			model.CreateSectionRequest{Title: "Section A", Instructions: "Answer all questions."}, http.StatusCreated)
		var body struct {
			Data struct {
				Section model.Section `json:"section"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		sectionID = body.Data.Section.ID.String()
		if sectionID == "" {
			t.Fatal("section id missing")
		}
	})

	t.Run("CreateGroup", func(t *testing.T) {
		resp := mustDo(t, http.MethodPost, fmt.Sprintf("/papers/%s/sections/%s/groups", paperID, sectionID),
			model.CreateGroupRequest{QuestionType: "mcq", NumberingStyle: "numeric"}, http.StatusCreated)
		var body struct {
			Data struct {
				Group model.QuestionGroup `json:"group"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		groupID = body.Data.Group.ID.String()
	})

	t.Run("RejectTwoCorrectChoices", func(t *testing.T) {
		form := map[string]any{
			"question_type": "mcq",
			"question_text": "Pick one",
			"marks":         1,
			"choices":       []map[string]any{{"text": "a", "is_correct": true}, {"text": "b", "is_correct": true}},
		}
		resp := mustDo(t, http.MethodPost, fmt.Sprintf("/papers/%s/groups/%s/questions", paperID, groupID), form, http.StatusBadRequest)
		if b := readBody(resp); !strings.Contains(b, "choices_correct") {
			t.Fatalf("expected choices_correct error, got %s", b)
		}
	})

	t.Run("CreateQuestion", func(t *testing.T) {
		form := map[string]any{
			"question_type": "mcq",
			"question_text": "Largest planet?",
			"marks":         2,
			"choices":       []map[string]any{{"text": "Mars"}, {"text": "Jupiter"}, {"text": "Venus"}},
			"correct_index": 1,
		}
		resp := mustDo(t, http.MethodPost, fmt.Sprintf("/papers/%s/groups/%s/questions", paperID, groupID), form, http.StatusCreated)
		var body struct {
			Data struct {
				Question model.Question `json:"question"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)
		q := body.Data.Question
		questID = q.ID.String()
		if len(q.Options) != 3 || !q.Options[1].IsCorrect || q.Options[0].IsCorrect || q.Options[2].IsCorrect {
			t.Fatalf("unexpected options %+v", q.Options)
		}
	})

	t.Run("RenderHTML", func(t *testing.T) {
		resp := mustDo(t, http.MethodGet, "/papers/"+paperID+"/render?format=html", nil, http.StatusOK)
		if b := readBody(resp); !strings.Contains(b, "Largest planet?") {
			t.Fatal("rendered paper is missing the question")
		}
	})

	t.Run("SavePaper", func(t *testing.T) {
		mustDo(t, http.MethodPost, "/papers/"+paperID+"/save", nil, http.StatusOK).Body.Close()
	})

	t.Run("Cleanup", func(t *testing.T) {
		mustDo(t, http.MethodDelete, fmt.Sprintf("/papers/%s/questions/%s", paperID, questID), nil, http.StatusNoContent).Body.Close()
		mustDo(t, http.MethodDelete, fmt.Sprintf("/papers/%s/sections/%s", paperID, sectionID), nil, http.StatusNoContent).Body.Close()
		mustDo(t, http.MethodDelete, "/papers/"+paperID+"/draft", nil, http.StatusNoContent).Body.Close()
	})
}

// Helpers

func mustDo(t *testing.T, method, path string, body interface{}, want int) *http.Response {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+path, bodyReader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != want {
		defer resp.Body.Close()
		t.Fatalf("%s %s: status %d: %s", method, path, resp.StatusCode, readBody(resp))
	}
	return resp
}

func readBody(resp *http.Response) string {
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("json decode: %v", err)
	}
}
