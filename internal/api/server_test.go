package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/unboundedlabs/unbounded/internal/apperr"
	"github.com/unboundedlabs/unbounded/internal/backstory"
	"github.com/unboundedlabs/unbounded/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeCharacters struct {
	character *types.Character
	created   []*types.Character
}

func (f *fakeCharacters) Create(ctx context.Context, c *types.Character) error {
	c.ID = "char-new"
	c.CreatedAt = time.Now()
	f.created = append(f.created, c)
	return nil
}

func (f *fakeCharacters) GetByID(ctx context.Context, id string) (*types.Character, error) {
	if f.character == nil || f.character.ID != id {
		return nil, apperr.NotFound("character", id)
	}
	return f.character, nil
}

type fakeSeeder struct {
	seeded []*types.CharacterState
	err    error
}

func (f *fakeSeeder) Create(ctx context.Context, s *types.CharacterState) error {
	if f.err != nil {
		return f.err
	}
	f.seeded = append(f.seeded, s)
	return nil
}

type fakeInteractions struct {
	record  *types.Interaction
	history []types.Interaction
	state   *types.CharacterState
	err     error

	lastCharacterID string
	lastMessage     string
	lastLimit       int
}

func (f *fakeInteractions) Handle(ctx context.Context, characterID, message string) (*types.Interaction, error) {
	f.lastCharacterID = characterID
	f.lastMessage = message
	if f.err != nil {
		return nil, f.err
	}
	return f.record, nil
}

func (f *fakeInteractions) History(ctx context.Context, characterID string, limit int) ([]types.Interaction, error) {
	f.lastCharacterID = characterID
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.history, nil
}

func (f *fakeInteractions) CurrentState(ctx context.Context, characterID string) (*types.CharacterState, error) {
	f.lastCharacterID = characterID
	if f.err != nil {
		return nil, f.err
	}
	return f.state, nil
}

type fakeBackstories struct {
	content string
	err     error
	lastReq backstory.Request
}

func (f *fakeBackstories) Generate(ctx context.Context, characterID string, req backstory.Request) (string, error) {
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

type testServer struct {
	router       *gin.Engine
	characters   *fakeCharacters
	seeder       *fakeSeeder
	interactions *fakeInteractions
	backstories  *fakeBackstories
}

func newTestServer() *testServer {
	characters := &fakeCharacters{}
	seeder := &fakeSeeder{}
	interactions := &fakeInteractions{}
	backstories := &fakeBackstories{}
	srv := NewServer(characters, seeder, interactions, backstories)
	return &testServer{
		router:       srv.Router(),
		characters:   characters,
		seeder:       seeder,
		interactions: interactions,
		backstories:  backstories,
	}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func TestCreateCharacterSeedsState(t *testing.T) {
	ts := newTestServer()

	w := ts.do(t, http.MethodPost, "/characters", `{"name":"Mira","description":"A cartographer.","personality":"curious"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created types.Character
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if created.ID == "" || created.Name != "Mira" {
		t.Fatalf("unexpected character: %+v", created)
	}
	if len(ts.seeder.seeded) != 1 || ts.seeder.seeded[0].CharacterID != created.ID {
		t.Fatalf("expected state seed for %s, got %+v", created.ID, ts.seeder.seeded)
	}
	if ts.seeder.seeded[0].Energy != 100 {
		t.Fatalf("unexpected seeded state: %+v", ts.seeder.seeded[0])
	}
}

func TestCreateCharacterRejectsBlankName(t *testing.T) {
	ts := newTestServer()

	w := ts.do(t, http.MethodPost, "/characters", `{"name":"   "}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if len(ts.characters.created) != 0 {
		t.Fatalf("nothing should be created")
	}
}

func TestInteractReturnsRecord(t *testing.T) {
	ts := newTestServer()
	ts.interactions.record = &types.Interaction{
		ID:          "int-1",
		CharacterID: "char-1",
		Content:     "hello",
		Reply:       types.GeneratedReply{Text: "Hi there."},
	}

	w := ts.do(t, http.MethodPost, "/characters/char-1/interact", `{"content":"hello"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ts.interactions.lastCharacterID != "char-1" || ts.interactions.lastMessage != "hello" {
		t.Fatalf("unexpected service call: %q %q", ts.interactions.lastCharacterID, ts.interactions.lastMessage)
	}

	var record types.Interaction
	if err := json.Unmarshal(w.Body.Bytes(), &record); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if record.Reply.Text != "Hi there." {
		t.Fatalf("unexpected reply: %+v", record)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", apperr.Validation("message must not be empty"), http.StatusUnprocessableEntity, "validation_error"},
		{"not found", apperr.NotFound("character", "char-1"), http.StatusNotFound, "not_found"},
		{"timeout", apperr.Generation(apperr.GenerationTimeout, errors.New("deadline")), http.StatusGatewayTimeout, "generation_timeout"},
		{"provider", apperr.Generation(apperr.GenerationProviderError, errors.New("503")), http.StatusBadGateway, "generation_provider_error"},
		{"conflict", apperr.Persistence(apperr.PersistenceConflict, nil), http.StatusConflict, "persistence_conflict"},
		{"write", apperr.Persistence(apperr.PersistenceWrite, errors.New("io")), http.StatusInternalServerError, "persistence_write"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer()
			ts.interactions.err = tc.err

			w := ts.do(t, http.MethodPost, "/characters/char-1/interact", `{"content":"hello"}`)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			var body struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.Code != tc.code {
				t.Fatalf("expected code %q, got %q", tc.code, body.Code)
			}
			if body.Message == "" {
				t.Fatalf("message must not be empty")
			}
		})
	}
}

func TestListInteractions(t *testing.T) {
	ts := newTestServer()
	ts.interactions.history = []types.Interaction{
		{ID: "int-1", Content: "hello"},
		{ID: "int-2", Content: "how are you"},
	}

	w := ts.do(t, http.MethodGet, "/characters/char-1/interactions?limit=5", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ts.interactions.lastLimit != 5 {
		t.Fatalf("expected limit 5, got %d", ts.interactions.lastLimit)
	}

	var body struct {
		Interactions []types.Interaction `json:"interactions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(body.Interactions) != 2 {
		t.Fatalf("expected 2 interactions, got %d", len(body.Interactions))
	}
}

func TestListInteractionsEmptyHistoryIsArray(t *testing.T) {
	ts := newTestServer()

	w := ts.do(t, http.MethodGet, "/characters/char-1/interactions", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"interactions":[]`) {
		t.Fatalf("expected empty array, got %s", w.Body.String())
	}
}

func TestListInteractionsRejectsBadLimit(t *testing.T) {
	ts := newTestServer()
	for _, raw := range []string{"0", "-1", "abc", "1000"} {
		w := ts.do(t, http.MethodGet, "/characters/char-1/interactions?limit="+raw, "")
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("limit %q: expected 422, got %d", raw, w.Code)
		}
	}
}

func TestGetState(t *testing.T) {
	ts := newTestServer()
	ts.interactions.state = &types.CharacterState{
		CharacterID: "char-1",
		Health:      90, Energy: 60, Happiness: 70,
		Hunger: 30, Fatigue: 40, Stress: 20,
		Location: "home", Activity: "resting",
	}

	w := ts.do(t, http.MethodGet, "/characters/char-1/state", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var snapshot types.CharacterState
	if err := json.Unmarshal(w.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if snapshot.Energy != 60 || snapshot.Location != "home" {
		t.Fatalf("unexpected state: %+v", snapshot)
	}
}

func TestGenerateBackstory(t *testing.T) {
	ts := newTestServer()
	ts.backstories.content = "Born in the borderlands."

	w := ts.do(t, http.MethodPost, "/characters/char-1/backstory", `{"tone":"dark","themes":["loss"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ts.backstories.lastReq.Tone != "dark" || len(ts.backstories.lastReq.Themes) != 1 {
		t.Fatalf("unexpected request: %+v", ts.backstories.lastReq)
	}
	if !strings.Contains(w.Body.String(), "borderlands") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestGenerateBackstoryEmptyBody(t *testing.T) {
	ts := newTestServer()
	ts.backstories.content = "A quiet childhood."

	w := ts.do(t, http.MethodPost, "/characters/char-1/backstory", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetCharacterNotFound(t *testing.T) {
	ts := newTestServer()

	w := ts.do(t, http.MethodGet, "/characters/char-9", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
