package admin_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"curia/internal/admin"
	"curia/internal/election/models"
	electionservice "curia/internal/election/service"
	electionstore "curia/internal/election/store/memory"
	"curia/internal/election/window"
	"curia/internal/jwttoken"
	"curia/internal/platform/logger"
	submissionmodels "curia/internal/submission/models"
	submissionstore "curia/internal/submission/store/memory"
)

const clerkSecret = "per-aspera"

type fixture struct {
	router      http.Handler
	submissions *submissionstore.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(clerkSecret), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash secret: %v", err)
	}

	tokens := jwttoken.NewService("test-signing-key", "curia", "curia-admin")

	subs := submissionstore.New()
	elStore := electionstore.New()
	elStore.SeedVoters([]models.EligibleVoter{{ID: "CIV-1", BallotNumber: "0042"}})
	elections := electionservice.New(elStore,
		window.NewPolicy(window.FixedStart(time.Date(2026, time.July, 30, 0, 0, 0, 0, time.UTC))),
		electionservice.WithClock(func() time.Time {
			return time.Date(2026, time.July, 30, 12, 0, 0, 0, time.UTC)
		}),
	)
	if err := elections.SubmitVote(context.Background(), electionservice.BallotClaim{
		ID: "CIV-1", BallotNumber: "0042",
	}); err != nil {
		t.Fatalf("seed vote: %v", err)
	}

	h := admin.New(string(hash), tokens, subs, elections, logger.New(false))
	r := chi.NewRouter()
	h.Register(r, tokens)
	return &fixture{router: r, submissions: subs}
}

func (f *fixture) login(t *testing.T, secret string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"clerk": "livia", "secret": secret})
	req := httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) token(t *testing.T) string {
	t.Helper()
	rec := f.login(t, clerkSecret)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	token, _ := resp["access_token"].(string)
	if token == "" {
		t.Fatal("empty access token")
	}
	return token
}

func (f *fixture) get(t *testing.T, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestLoginRejectsWrongSecret(t *testing.T) {
	f := newFixture(t)

	rec := f.login(t, "wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLoginIssuesUsableToken(t *testing.T) {
	f := newFixture(t)
	token := f.token(t)

	rec := f.get(t, "/admin/submissions", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
}

func TestGuardedRoutesRequireToken(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/admin/submissions", "/admin/elections/records"} {
		rec := f.get(t, path, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 without token, got %d", path, rec.Code)
		}
	}
}

func TestSubmissionsSummarizeUserAgent(t *testing.T) {
	f := newFixture(t)
	if err := f.submissions.Append(context.Background(), submissionmodels.Message{
		ID:            "msg-1",
		SubmitterName: "Gaius",
		Form:          "Citizenship-Form",
		Submitter: submissionmodels.Submitter{
			Address: "203.0.113.7",
			Client:  "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36",
		},
	}); err != nil {
		t.Fatalf("seed submission: %v", err)
	}

	rec := f.get(t, "/admin/submissions", f.token(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Submissions []struct {
			ID      string `json:"id"`
			Browser string `json:"browser"`
			OS      string `json:"os"`
		} `json:"submissions"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Submissions) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(resp.Submissions))
	}
	if resp.Submissions[0].Browser == " " {
		t.Fatalf("expected parsed browser, got %q", resp.Submissions[0].Browser)
	}
}

func TestElectionRecordsCountsOnly(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/admin/elections/records", f.token(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Windows map[string]int `json:"windows"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Windows["2026-07-30 00:00:00"] != 1 {
		t.Fatalf("expected one record in the seeded window, got %v", resp.Windows)
	}
}
