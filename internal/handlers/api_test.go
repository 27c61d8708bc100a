// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"uisketch/internal/credits"
	"uisketch/internal/handlers"
	"uisketch/internal/jobs"
	"uisketch/internal/models"
	"uisketch/internal/router"
)

const testSecret = "test-secret"

// --- fakes ---

type fakeProjects struct {
	created *models.Project
	err     error
}

func (f *fakeProjects) Create(userID uuid.UUID, name, description string) (*models.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = &models.Project{ID: uuid.New(), UserID: userID, Name: name, Description: description}
	return f.created, nil
}

type fakeMockups struct {
	created *models.Mockup
	byID    map[uuid.UUID]*models.Mockup
	owner   uuid.UUID
	list    []models.MockupWithProject
	err     error
}

func newFakeMockups() *fakeMockups {
	return &fakeMockups{byID: make(map[uuid.UUID]*models.Mockup)}
}

func (f *fakeMockups) Create(m *models.Mockup) (*models.Mockup, error) {
	if f.err != nil {
		return nil, f.err
	}
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	f.created = m
	f.byID[m.ID] = m
	return m, nil
}

func (f *fakeMockups) FindByIDForUser(id, userID uuid.UUID) (*models.Mockup, error) {
	if f.err != nil {
		return nil, f.err
	}
	if userID != f.owner {
		return nil, nil
	}
	return f.byID[id], nil
}

func (f *fakeMockups) ListByUser(userID uuid.UUID) ([]models.MockupWithProject, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.list, nil
}

type fakeVersions struct {
	byMockup map[uuid.UUID][]models.MockupVersion
}

func newFakeVersions() *fakeVersions {
	return &fakeVersions{byMockup: make(map[uuid.UUID][]models.MockupVersion)}
}

func (f *fakeVersions) ListByMockup(mockupID uuid.UUID) ([]models.MockupVersion, error) {
	return f.byMockup[mockupID], nil
}

func (f *fakeVersions) FindByIDForMockup(id, mockupID uuid.UUID) (*models.MockupVersion, error) {
	for _, v := range f.byMockup[mockupID] {
		if v.ID == id {
			out := v
			return &out, nil
		}
	}
	return nil, nil
}

type fakeLedger struct {
	info       *credits.Info
	allowed    bool
	denyReason string
	increments int
	err        error
}

func (f *fakeLedger) GetUserCredits(userID uuid.UUID) (*credits.Info, error) {
	return f.info, f.err
}

func (f *fakeLedger) CanUserGenerate(userID uuid.UUID) (bool, string, error) {
	if f.err != nil {
		return false, "", f.err
	}
	return f.allowed, f.denyReason, nil
}

func (f *fakeLedger) IncrementCreditsUsed(userID uuid.UUID) error {
	f.increments++
	return nil
}

type fakePublisher struct {
	queue  string
	event  any
	calls  int
	pubErr error
}

func (f *fakePublisher) Publish(_ context.Context, queue string, event any) error {
	if f.pubErr != nil {
		return f.pubErr
	}
	f.calls++
	f.queue = queue
	f.event = event
	return nil
}

// --- helpers ---

type env struct {
	projects  *fakeProjects
	mockups   *fakeMockups
	versions  *fakeVersions
	ledger    *fakeLedger
	publisher *fakePublisher
	handler   http.Handler
	userID    uuid.UUID
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		projects:  &fakeProjects{},
		mockups:   newFakeMockups(),
		versions:  newFakeVersions(),
		ledger:    &fakeLedger{allowed: true},
		publisher: &fakePublisher{},
		userID:    uuid.New(),
	}
	e.mockups.owner = e.userID
	api := handlers.NewAPI(e.projects, e.mockups, e.versions, e.ledger, e.publisher)
	e.handler = router.New(api, testSecret)
	return e
}

func signToken(t *testing.T, subject string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func (e *env) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+signToken(t, e.userID.String()))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func validCreateBody() map[string]any {
	return map[string]any{
		"prompt":     "a dashboard for fleet tracking",
		"deviceType": "DESKTOP",
		"uiLibrary":  "SHADCN",
		"aiModel":    "sketch-mini",
	}
}

// --- tests ---

func TestCreateMockup(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		e := newEnv(t)

		rec := e.request(t, http.MethodPost, "/api/mockups", validCreateBody())
		if rec.Code != http.StatusAccepted {
			t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
		}

		body := decodeBody(t, rec)
		if body["success"] != true {
			t.Errorf("success: got %v", body["success"])
		}
		if body["mockupId"] != e.mockups.created.ID.String() {
			t.Errorf("mockupId: got %v", body["mockupId"])
		}
		if body["projectId"] != e.projects.created.ID.String() {
			t.Errorf("projectId: got %v", body["projectId"])
		}

		if e.mockups.created.Status != models.MockupStatusPending {
			t.Errorf("mockup status: got %v", e.mockups.created.Status)
		}
		if e.publisher.queue != jobs.QueueGenerationRequested {
			t.Errorf("queue: got %q", e.publisher.queue)
		}
		ev, ok := e.publisher.event.(jobs.GenerationRequested)
		if !ok {
			t.Fatalf("event type: got %T", e.publisher.event)
		}
		if ev.MockupID != e.mockups.created.ID || ev.UserID != e.userID {
			t.Errorf("event: got %+v", ev)
		}
		if ev.JobID == "" {
			t.Error("event job id empty")
		}
		if e.ledger.increments != 1 {
			t.Errorf("credit increments: got %d, want 1", e.ledger.increments)
		}
	})

	t.Run("multi-byte prompt survives name and description truncation", func(t *testing.T) {
		e := newEnv(t)

		// Emoji runes straddling the 50-byte name cut and the 200-byte
		// description cut must not be split into invalid UTF-8.
		body := validCreateBody()
		body["prompt"] = strings.Repeat("a", 49) + "😀" + strings.Repeat("b", 146) + "😀 settings page"

		rec := e.request(t, http.MethodPost, "/api/mockups", body)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
		}
		if !utf8.ValidString(e.mockups.created.Name) {
			t.Errorf("mockup name is invalid UTF-8: %q", e.mockups.created.Name)
		}
		if !utf8.ValidString(e.projects.created.Description) {
			t.Errorf("project description is invalid UTF-8: %q", e.projects.created.Description)
		}
	})

	t.Run("denied when credits exhausted", func(t *testing.T) {
		e := newEnv(t)
		e.ledger.allowed = false
		e.ledger.denyReason = "You've used all 5 free generations this month. Upgrade to Pro for unlimited generations!"

		rec := e.request(t, http.MethodPost, "/api/mockups", validCreateBody())
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status: got %d", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["error"] != e.ledger.denyReason {
			t.Errorf("error: got %v", body["error"])
		}
		if e.publisher.calls != 0 {
			t.Errorf("publishes: got %d, want 0", e.publisher.calls)
		}
		if e.ledger.increments != 0 {
			t.Errorf("increments: got %d, want 0", e.ledger.increments)
		}
	})

	t.Run("validation failures", func(t *testing.T) {
		tests := []struct {
			name  string
			patch func(map[string]any)
		}{
			{"empty prompt", func(b map[string]any) { b["prompt"] = "   " }},
			{"bad device type", func(b map[string]any) { b["deviceType"] = "WATCH" }},
			{"bad ui library", func(b map[string]any) { b["uiLibrary"] = "BOOTSTRAP" }},
			{"bad model", func(b map[string]any) { b["aiModel"] = "gpt-4" }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				e := newEnv(t)
				body := validCreateBody()
				tt.patch(body)

				rec := e.request(t, http.MethodPost, "/api/mockups", body)
				if rec.Code != http.StatusBadRequest {
					t.Errorf("status: got %d", rec.Code)
				}
				if e.publisher.calls != 0 {
					t.Errorf("publishes: got %d, want 0", e.publisher.calls)
				}
			})
		}
	})

	t.Run("publish failure does not consume a credit", func(t *testing.T) {
		e := newEnv(t)
		e.publisher.pubErr = errors.New("broker down")

		rec := e.request(t, http.MethodPost, "/api/mockups", validCreateBody())
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status: got %d", rec.Code)
		}
		if e.ledger.increments != 0 {
			t.Errorf("increments: got %d, want 0", e.ledger.increments)
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		e := newEnv(t)
		req := httptest.NewRequest(http.MethodPost, "/api/mockups", strings.NewReader("{}"))
		rec := httptest.NewRecorder()
		e.handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status: got %d", rec.Code)
		}
	})
}

func TestListMockups(t *testing.T) {
	e := newEnv(t)
	e.mockups.list = []models.MockupWithProject{
		{Mockup: models.Mockup{ID: uuid.New(), Name: "Mockup - a...", Status: models.MockupStatusCompleted}},
	}

	rec := e.request(t, http.MethodGet, "/api/mockups", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}

	var got []models.MockupWithProject
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].ID != e.mockups.list[0].ID {
		t.Errorf("list: got %+v", got)
	}
}

func TestListMockups_EmptyIsArray(t *testing.T) {
	e := newEnv(t)

	rec := e.request(t, http.MethodGet, "/api/mockups", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body: got %q, want []", body)
	}
}

func TestGetMockup(t *testing.T) {
	t.Run("found with variations", func(t *testing.T) {
		e := newEnv(t)
		m, _ := e.mockups.Create(&models.Mockup{
			Name: "Mockup - x...", Status: models.MockupStatusCompleted, Code: `<div class="a">1</div>`,
		})
		e.versions.byMockup[m.ID] = []models.MockupVersion{
			{ID: uuid.New(), MockupID: m.ID, Version: 1, Code: `<div class="a">1</div>`},
			{ID: uuid.New(), MockupID: m.ID, Version: 2, Code: `<div class="b">2</div>`},
		}

		rec := e.request(t, http.MethodGet, "/api/mockups/"+m.ID.String(), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d", rec.Code)
		}

		var got struct {
			models.Mockup
			Variations []models.MockupVersion `json:"variations"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.ID != m.ID || len(got.Variations) != 2 {
			t.Errorf("response: id=%v variations=%d", got.ID, len(got.Variations))
		}
	})

	t.Run("pending mockup has empty variations array", func(t *testing.T) {
		e := newEnv(t)
		m, _ := e.mockups.Create(&models.Mockup{Status: models.MockupStatusPending})

		rec := e.request(t, http.MethodGet, "/api/mockups/"+m.ID.String(), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"variations":[]`) {
			t.Errorf("body: %s", rec.Body.String())
		}
	})

	t.Run("not found", func(t *testing.T) {
		e := newEnv(t)
		rec := e.request(t, http.MethodGet, "/api/mockups/"+uuid.NewString(), nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status: got %d", rec.Code)
		}
	})

	t.Run("other user's mockup is 404", func(t *testing.T) {
		e := newEnv(t)
		m, _ := e.mockups.Create(&models.Mockup{Status: models.MockupStatusCompleted})
		e.mockups.owner = uuid.New() // someone else

		rec := e.request(t, http.MethodGet, "/api/mockups/"+m.ID.String(), nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status: got %d", rec.Code)
		}
	})

	t.Run("malformed id is 404", func(t *testing.T) {
		e := newEnv(t)
		rec := e.request(t, http.MethodGet, "/api/mockups/not-a-uuid", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status: got %d", rec.Code)
		}
	})
}

func TestEditVariation(t *testing.T) {
	editBody := map[string]any{"editPrompt": "make it dark", "aiModel": "sketch-pro"}

	t.Run("accepted", func(t *testing.T) {
		e := newEnv(t)
		m, _ := e.mockups.Create(&models.Mockup{Status: models.MockupStatusCompleted})
		v := models.MockupVersion{ID: uuid.New(), MockupID: m.ID, Version: 2, Code: `<div class="b">2</div>`}
		e.versions.byMockup[m.ID] = []models.MockupVersion{v}

		rec := e.request(t, http.MethodPost,
			"/api/mockups/"+m.ID.String()+"/versions/"+v.ID.String()+"/edit", editBody)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
		}

		if e.publisher.queue != jobs.QueueVariationEdit {
			t.Errorf("queue: got %q", e.publisher.queue)
		}
		ev, ok := e.publisher.event.(jobs.VariationEditRequested)
		if !ok {
			t.Fatalf("event type: got %T", e.publisher.event)
		}
		if ev.VersionID != v.ID || ev.MockupID != m.ID {
			t.Errorf("event ids: got %+v", ev)
		}
		if ev.CurrentHTML != v.Code {
			t.Errorf("current html: got %q", ev.CurrentHTML)
		}
		if ev.EditPrompt != "make it dark" {
			t.Errorf("edit prompt: got %q", ev.EditPrompt)
		}
	})

	t.Run("unknown version is 404", func(t *testing.T) {
		e := newEnv(t)
		m, _ := e.mockups.Create(&models.Mockup{Status: models.MockupStatusCompleted})

		rec := e.request(t, http.MethodPost,
			"/api/mockups/"+m.ID.String()+"/versions/"+uuid.NewString()+"/edit", editBody)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status: got %d", rec.Code)
		}
		if e.publisher.calls != 0 {
			t.Errorf("publishes: got %d, want 0", e.publisher.calls)
		}
	})

	t.Run("unknown mockup is 404", func(t *testing.T) {
		e := newEnv(t)
		rec := e.request(t, http.MethodPost,
			"/api/mockups/"+uuid.NewString()+"/versions/"+uuid.NewString()+"/edit", editBody)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status: got %d", rec.Code)
		}
	})

	t.Run("empty edit prompt is 400", func(t *testing.T) {
		e := newEnv(t)
		m, _ := e.mockups.Create(&models.Mockup{Status: models.MockupStatusCompleted})

		rec := e.request(t, http.MethodPost,
			"/api/mockups/"+m.ID.String()+"/versions/"+uuid.NewString()+"/edit",
			map[string]any{"editPrompt": " ", "aiModel": "sketch-mini"})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status: got %d", rec.Code)
		}
	})
}

func TestGetCredits(t *testing.T) {
	t.Run("free user snapshot", func(t *testing.T) {
		e := newEnv(t)
		e.ledger.info = &credits.Info{
			Plan:             models.PlanFree,
			CreditsUsed:      2,
			CreditsRemaining: 3,
			CreditsTotal:     5,
			CanGenerate:      true,
		}

		rec := e.request(t, http.MethodGet, "/api/credits", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["creditsUsed"] != float64(2) || body["creditsRemaining"] != float64(3) {
			t.Errorf("body: %v", body)
		}
	})

	t.Run("unknown user is 404", func(t *testing.T) {
		e := newEnv(t)
		e.ledger.info = nil

		rec := e.request(t, http.MethodGet, "/api/credits", nil)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status: got %d", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["error"] != "User not found." {
			t.Errorf("error: got %v", body["error"])
		}
	})
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d", rec.Code)
	}
}
