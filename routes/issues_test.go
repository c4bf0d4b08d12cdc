package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"standwithnepal-server/storage"
	"standwithnepal-server/utils"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	redis "github.com/go-redis/redis/v8"
	"github.com/kataras/iris/v12"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB swaps the global DB handle for a sqlmock-backed one.
func newMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn, PreferSimpleProtocol: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	storage.DB = db
	return mock
}

// buildIssuesApp creates a minimal Iris app with the issue routes and the
// session middleware, mirroring the production wiring.
func buildIssuesApp() *iris.Application {
	app := iris.New()
	app.Validator = validator.New()
	app.Use(utils.Sessions.Handler())
	app.Get("/api/issues", IssuesGet)
	app.Post("/api/issues", IssuesPost)
	return app
}

func postJSON(app *iris.Application, url, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.Build()
	app.ServeHTTP(resp, req)
	return resp
}

func TestListIssuesEnvelope(t *testing.T) {
	mock := newMockDB(t)
	app := buildIssuesApp()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "issues"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(120))
	mock.ExpectQuery(`SELECT issues\.\*, users\.full_name AS reporter_name`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "category", "status", "anonymous", "reporter_name", "upvotes", "comments"}).
			AddRow(2, "Broken streetlight", "electricity", "new", true, "Sita Sharma", 4, 1).
			AddRow(1, "Potholes on ring road", "road", "acknowledged", false, "Hari Prasad", 12, 3))

	req := httptest.NewRequest(http.MethodGet, "/api/issues?action=list", nil)
	resp := httptest.NewRecorder()
	app.Build()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if got := resp.Header().Get("X-Cache"); got != "MISS" {
		t.Fatalf("expected X-Cache MISS, got %q", got)
	}

	var body struct {
		Success bool `json:"success"`
		Issues  []struct {
			Title        string `json:"title"`
			ReporterName string `json:"reporter_name"`
			Upvotes      int64  `json:"upvotes"`
		} `json:"issues"`
		Pagination struct {
			Total   int64 `json:"total"`
			Limit   int   `json:"limit"`
			Offset  int   `json:"offset"`
			HasMore bool  `json:"has_more"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || len(body.Issues) != 2 {
		t.Fatalf("unexpected envelope: %s", resp.Body.String())
	}
	if body.Issues[0].ReporterName != "Anonymous" {
		t.Fatalf("anonymous reporter leaked: %q", body.Issues[0].ReporterName)
	}
	if body.Issues[1].ReporterName != "Hari Prasad" {
		t.Fatalf("named reporter changed: %q", body.Issues[1].ReporterName)
	}
	if body.Pagination.Total != 120 || body.Pagination.Limit != 50 || !body.Pagination.HasMore {
		t.Fatalf("unexpected pagination: %+v", body.Pagination)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListIssuesCacheHit(t *testing.T) {
	mock := newMockDB(t)
	mr := miniredis.RunT(t)
	storage.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { storage.Redis = nil })
	app := buildIssuesApp()

	// Only the first request may touch the database.
	mock.ExpectQuery(`SELECT count\(\*\) FROM "issues"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT issues\.\*, users\.full_name AS reporter_name`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "anonymous", "reporter_name", "upvotes", "comments"}).
			AddRow(1, "Potholes on ring road", false, "Hari Prasad", 12, 3))

	req := httptest.NewRequest(http.MethodGet, "/api/issues?action=list", nil)
	resp := httptest.NewRecorder()
	app.Build()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || resp.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("first request: code=%d cache=%q", resp.Code, resp.Header().Get("X-Cache"))
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/issues?action=list", nil)
	resp2 := httptest.NewRecorder()
	app.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusOK || resp2.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("second request: code=%d cache=%q", resp2.Code, resp2.Header().Get("X-Cache"))
	}
	if resp.Body.String() != resp2.Body.String() {
		t.Fatal("hit and miss must serve identical bodies")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGetIssueNotFound(t *testing.T) {
	mock := newMockDB(t)
	app := buildIssuesApp()

	mock.ExpectQuery(`SELECT issues\.\*`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	req := httptest.NewRequest(http.MethodGet, "/api/issues?action=get&id=99", nil)
	resp := httptest.NewRecorder()
	app.Build()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestInvalidAction(t *testing.T) {
	newMockDB(t)
	app := buildIssuesApp()

	req := httptest.NewRequest(http.MethodGet, "/api/issues?action=explode", nil)
	resp := httptest.NewRecorder()
	app.Build()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCreateIssueRejectsUnknownCategory(t *testing.T) {
	newMockDB(t)
	app := buildIssuesApp()

	resp := postJSON(app, "/api/issues?action=create", `{
		"title": "x", "description": "y", "category": "aliens",
		"province": "3", "district": "Kathmandu", "municipality": "KMC", "ward": "5"
	}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown category, got %d", resp.Code)
	}
}

func TestCreateIssue(t *testing.T) {
	mock := newMockDB(t)
	app := buildIssuesApp()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "issues"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(`INSERT INTO "activity_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	resp := postJSON(app, "/api/issues?action=create", `{
		"title": "No drinking water", "description": "Taps dry for a week",
		"category": "water", "province": "3",
		"district": "Kathmandu", "municipality": "KMC", "ward": "5",
		"anonymous": true
	}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Success bool `json:"success"`
		IssueID uint `json:"issue_id"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.IssueID != 7 {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateStatusRequiresOfficial(t *testing.T) {
	newMockDB(t)
	app := buildIssuesApp()

	resp := postJSON(app, "/api/issues?action=update_status", `{"issue_id": 1, "status": "resolved"}`)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous status update, got %d", resp.Code)
	}
}

func TestUpdateStatusAppendsTrail(t *testing.T) {
	mock := newMockDB(t)
	app := buildIssuesApp()
	app.Post("/api/auth", AuthHandler)

	hash := hashPassword(t, "officialpass")
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE official_id =`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "password", "user_type", "district", "jurisdiction", "ward_no"}).
			AddRow(8, "Ward Officer", hash, "official", "Kathmandu", "ward", 5))

	login := postJSON(app, "/api/auth?action=login", `{
		"user_type": "official", "official_id": "KTM-W5-01", "password": "officialpass"
	}`)
	if login.Code != http.StatusOK {
		t.Fatalf("official login failed: %d %s", login.Code, login.Body.String())
	}

	mock.ExpectQuery(`SELECT \* FROM "issues"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(3, "new"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "issues" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "issue_updates"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	req := httptest.NewRequest(http.MethodPost, "/api/issues?action=update_status",
		bytes.NewBufferString(`{"issue_id": 3, "status": "acknowledged"}`))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range login.Result().Cookies() {
		req.AddCookie(c)
	}
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUpvoteIssue(t *testing.T) {
	mock := newMockDB(t)
	app := buildIssuesApp()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "issues"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "issue_upvotes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "issue_upvotes"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	resp := postJSON(app, "/api/issues?action=upvote", `{"issue_id": 3}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Success bool  `json:"success"`
		Upvotes int64 `json:"upvotes"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Upvotes != 5 {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}

func TestUpvoteIssueAlreadyUpvoted(t *testing.T) {
	mock := newMockDB(t)
	app := buildIssuesApp()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "issues"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectBegin()
	// Conflict: ON CONFLICT DO NOTHING returns no rows.
	mock.ExpectQuery(`INSERT INTO "issue_upvotes"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	resp := postJSON(app, "/api/issues?action=upvote", `{"issue_id": 3}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || body.Message != "Already upvoted" {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}

func TestUpvoteMissingIssue(t *testing.T) {
	mock := newMockDB(t)
	app := buildIssuesApp()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "issues"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	resp := postJSON(app, "/api/issues?action=upvote", `{"issue_id": 999}`)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestSanitizeText(t *testing.T) {
	got := sanitizeText("  <script>alert(1)</script>  ")
	if got != "&lt;script&gt;alert(1)&lt;/script&gt;" {
		t.Fatalf("unexpected sanitized text: %q", got)
	}
}

func TestHumanizeStatus(t *testing.T) {
	if got := humanizeStatus("in-progress"); got != "In progress" {
		t.Fatalf("got %q", got)
	}
	if got := humanizeStatus("resolved"); got != "Resolved" {
		t.Fatalf("got %q", got)
	}
}
