package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gil-sasi/code-mentor/internal/api"
	"github.com/gil-sasi/code-mentor/internal/config"
	"github.com/gil-sasi/code-mentor/internal/storage/sqlite"
)

// newTestServer builds the full application over a temp database with no
// LLM credentials, so generation exercises the deterministic fallbacks, and
// the in-process dispatcher handles review jobs.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	cfg := &config.Config{
		Debug:         true,
		QueueWorkers:  2,
		SessionMaxAge: 3600,
	}

	app, err := api.NewApp(cfg, db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	t.Cleanup(func() { app.Close() })

	srv := httptest.NewServer(api.NewRouter(app))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil && err != io.EOF {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func register(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/register", "", map[string]string{
		"email":     email,
		"password":  "longenough",
		"firstName": "Test",
		"lastName":  "User",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d, body %v", resp.StatusCode, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("no token in register response")
	}
	return token
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}
	if body["status"] != "healthy" {
		t.Errorf("health body = %v", body)
	}

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/ready", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("ready status = %d", resp.StatusCode)
	}
	if body["status"] != "ready" {
		t.Errorf("ready body = %v", body)
	}
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "flow@example.com")

	// me with the token
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/auth/me", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d", resp.StatusCode)
	}
	user, _ := body["user"].(map[string]any)
	if user["email"] != "flow@example.com" {
		t.Errorf("me email = %v", user["email"])
	}

	// me without token
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/auth/me", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("me without token status = %d; want 401", resp.StatusCode)
	}

	// login
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/login", "", map[string]string{
		"email": "flow@example.com", "password": "longenough",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	if body["token"] == "" {
		t.Error("no token from login")
	}

	// logout kills the token
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/auth/logout", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/auth/me", token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("me after logout status = %d; want 401", resp.StatusCode)
	}
}

func TestChallengeGeneration(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/mentor/challenge", "", map[string]string{
		"difficulty": "beginner", "category": "react",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("challenge status = %d, body %v", resp.StatusCode, body)
	}
	if body["success"] != true {
		t.Errorf("success = %v", body["success"])
	}
	ch, _ := body["challenge"].(map[string]any)
	if ch["title"] == "" || ch["id"] == "" {
		t.Errorf("challenge = %v", ch)
	}
	if ch["difficulty"] != "beginner" || ch["category"] != "react" {
		t.Errorf("challenge enums = %v/%v", ch["difficulty"], ch["category"])
	}

	// Invalid enums are a 400
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/mentor/challenge", "", map[string]string{
		"difficulty": "impossible", "category": "react",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid difficulty status = %d; want 400", resp.StatusCode)
	}
}

// generateChallenge creates a challenge and returns its id.
func generateChallenge(t *testing.T, srv *httptest.Server, token string) string {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/mentor/challenge", token, map[string]string{
		"difficulty": "beginner", "category": "react",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("challenge status = %d", resp.StatusCode)
	}
	ch := body["challenge"].(map[string]any)
	return ch["id"].(string)
}

// pollReview polls review-code until the review is ready.
func pollReview(t *testing.T, srv *httptest.Server, submissionID string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/mentor/review-code", "", map[string]string{
			"submissionId": submissionID,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("review-code status = %d, body %v", resp.StatusCode, body)
		}
		if body["success"] == true {
			return body["review"].(map[string]any)
		}
		if body["status"] != "pending" {
			t.Fatalf("unexpected review body %v", body)
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("review never became ready")
	return nil
}

func TestSubmitAndReviewFlow(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "reviewer@example.com")
	challengeID := generateChallenge(t, srv, token)

	code := "const x = 1; // test\nfunction foo(){return x;}"
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/v1/mentor/submit-code", token, map[string]string{
		"challengeId":      challengeID,
		"code":             code,
		"language":         "javascript",
		"submissionMethod": "direct",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit status = %d, body %v", resp.StatusCode, body)
	}
	sub := body["submission"].(map[string]any)
	submissionID := sub["id"].(string)
	if sub["isReviewed"] != false {
		t.Error("fresh submission marked reviewed")
	}

	review := pollReview(t, srv, submissionID)
	if review["overallScore"] != float64(5) {
		t.Errorf("overallScore = %v; want 5", review["overallScore"])
	}
	if review["model"] != "heuristic-v1" {
		t.Errorf("model = %v; want heuristic-v1", review["model"])
	}

	// Polling again returns the same review
	again := pollReview(t, srv, submissionID)
	if again["id"] != review["id"] {
		t.Errorf("review id changed between polls: %v vs %v", again["id"], review["id"])
	}

	// Duplicate submission rejected with the existing id
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/mentor/submit-code", token, map[string]string{
		"challengeId":      challengeID,
		"code":             "const y = 2;",
		"language":         "javascript",
		"submissionMethod": "direct",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate submit status = %d; want 400", resp.StatusCode)
	}
	if body["existingSubmissionId"] != submissionID {
		t.Errorf("existingSubmissionId = %v; want %v", body["existingSubmissionId"], submissionID)
	}

	// Progress reflects the completed review
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/v1/mentor/progress", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("progress status = %d", resp.StatusCode)
	}
	prog := body["progress"].(map[string]any)
	if prog["completedChallenges"] != float64(1) {
		t.Errorf("completedChallenges = %v; want 1", prog["completedChallenges"])
	}
	if prog["averageScore"] != float64(5) {
		t.Errorf("averageScore = %v; want 5", prog["averageScore"])
	}
	skills := prog["skillScores"].(map[string]any)
	if skills["react"] != float64(5) {
		t.Errorf("skillScores.react = %v; want 5", skills["react"])
	}
	achievements := prog["achievements"].([]any)
	found := false
	for _, a := range achievements {
		if a.(map[string]any)["id"] == "first_challenge" {
			found = true
		}
	}
	if !found {
		t.Errorf("first_challenge achievement missing: %v", achievements)
	}
}

func TestSubmitValidation(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "validator@example.com")
	challengeID := generateChallenge(t, srv, token)

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{
			"unknown challenge",
			map[string]string{
				"challengeId": "00000000-0000-0000-0000-000000000001", "code": "x",
				"language": "javascript", "submissionMethod": "direct",
			},
			http.StatusNotFound,
		},
		{
			"missing code",
			map[string]string{
				"challengeId": challengeID, "language": "javascript", "submissionMethod": "direct",
			},
			http.StatusBadRequest,
		},
		{
			"bad language",
			map[string]string{
				"challengeId": challengeID, "code": "x", "language": "cobol", "submissionMethod": "direct",
			},
			http.StatusBadRequest,
		},
		{
			"github without url",
			map[string]string{
				"challengeId": challengeID, "code": "x", "language": "javascript", "submissionMethod": "github",
			},
			http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/mentor/submit-code", token, tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d; want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestProgressEndpoints(t *testing.T) {
	srv := newTestServer(t)

	// 401 without a token, with the shared error envelope
	resp, errBody := doJSON(t, http.MethodGet, srv.URL+"/api/v1/mentor/progress", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("progress without token status = %d; want 401", resp.StatusCode)
	}
	if e, ok := errBody["error"].(map[string]any); !ok || e["code"] != "UNAUTHORIZED" {
		t.Errorf("error body = %v; want error.code UNAUTHORIZED", errBody["error"])
	}

	token := register(t, srv, "progress@example.com")

	// Fresh user gets defaults
	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/mentor/progress", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("progress status = %d", resp.StatusCode)
	}
	prog := body["progress"].(map[string]any)
	if prog["completedChallenges"] != float64(0) {
		t.Errorf("completedChallenges = %v; want 0", prog["completedChallenges"])
	}
	if prog["weeklyGoal"] != float64(3) {
		t.Errorf("weeklyGoal = %v; want 3", prog["weeklyGoal"])
	}

	// Update weekly goal
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/v1/mentor/progress", token, map[string]int{
		"weeklyGoal": 10,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update progress status = %d", resp.StatusCode)
	}
	prog = body["progress"].(map[string]any)
	if prog["weeklyGoal"] != float64(10) {
		t.Errorf("weeklyGoal = %v; want 10", prog["weeklyGoal"])
	}

	// Out of range goal
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/v1/mentor/progress", token, map[string]int{
		"weeklyGoal": 50,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("out of range goal status = %d; want 400", resp.StatusCode)
	}
}

func TestListChallengesAndGetSubmission(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "lister@example.com")

	for i := 0; i < 2; i++ {
		generateChallenge(t, srv, token)
	}

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/v1/mentor/challenges", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	challenges := body["challenges"].([]any)
	if len(challenges) != 2 {
		t.Errorf("listed %d challenges; want 2", len(challenges))
	}

	// Unknown submission is a 404
	resp, _ = doJSON(t, http.MethodGet,
		fmt.Sprintf("%s/api/v1/mentor/submissions/%s", srv.URL, "00000000-0000-0000-0000-000000000001"), "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown submission status = %d; want 404", resp.StatusCode)
	}
}
