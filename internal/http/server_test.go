package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"ledgerly/internal/auth"
	"ledgerly/internal/core"
	"ledgerly/internal/events"
	"ledgerly/internal/log"
	"ledgerly/internal/models"
	"ledgerly/internal/storage"
)

type recordingPublisher struct {
	published []*events.TransactionEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev *events.TransactionEvent) error {
	p.published = append(p.published, ev)
	return nil
}

type testServer struct {
	srv       *Server
	repo      *storage.Repository
	sessions  *auth.Sessions
	publisher *recordingPublisher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	repo, err := storage.Open(t.TempDir() + "/ledgerly_http_test.db")
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	sessions := auth.NewSessions("test-secret-key-0123456789", time.Hour)
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	publisher := &recordingPublisher{}

	srv, err := NewServer("0", repo, sessions, publisher, logger)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	t.Cleanup(func() { srv.limiter.stop() })

	return &testServer{srv: srv, repo: repo, sessions: sessions, publisher: publisher}
}

func (ts *testServer) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := ts.repo.CreateUser(context.Background(), username, hash)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (ts *testServer) sessionCookie(t *testing.T, user *models.User) *http.Cookie {
	t.Helper()
	token, err := ts.sessions.Issue(user.ID, user.Username)
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	return &http.Cookie{Name: auth.CookieName, Value: token}
}

func (ts *testServer) do(t *testing.T, req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) seedTransaction(t *testing.T, userID uint, direction core.Direction, cents int64, name string, categoryID *uint, occurredOn time.Time) *models.Transaction {
	t.Helper()
	draft := core.TransactionDraft{
		Name:          name,
		Direction:     direction,
		AmountInCents: cents,
		CategoryID:    categoryID,
		OccurredOn:    occurredOn,
	}
	if err := draft.Validate(); err != nil {
		t.Fatalf("validate draft: %v", err)
	}
	txn, err := ts.repo.CreateTransaction(context.Background(), userID, draft)
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	return txn
}

func (ts *testServer) anyCategoryID(t *testing.T) *uint {
	t.Helper()
	cats, err := ts.repo.ActiveCategories(context.Background())
	if err != nil || len(cats) == 0 {
		t.Fatalf("active categories: %v (got %d)", err, len(cats))
	}
	return &cats[0].ID
}

func TestDashboardRequiresLogin(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("redirect = %q, want /login", loc)
	}
}

func TestDashboardTotalsAndPercents(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createUser(t, "alice")
	cookie := ts.sessionCookie(t, user)

	now := core.DateOnly(time.Now())
	ts.seedTransaction(t, user.ID, core.DirectionIncome, 12000, "Salary", nil, now)
	ts.seedTransaction(t, user.ID, core.DirectionOutgo, 3000, "Groceries", ts.anyCategoryID(t), now)

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/", nil), cookie)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"$120.00", "$30.00", "$90.00", "80%", "20%"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard body missing %q", want)
		}
	}
}

func TestAddTransactionViaDashboard(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createUser(t, "alice")
	cookie := ts.sessionCookie(t, user)
	catID := ts.anyCategoryID(t)

	form := url.Values{
		"action":          {"add_transaction"},
		"name":            {"Coffee"},
		"type":            {"OUTGO"},
		"category":        {fmt.Sprint(*catID)},
		"amount_in_cents": {"4.50"},
		"occurred_on":     {time.Now().Format("2006-01-02")},
		"note":            {"morning"},
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := ts.do(t, req, cookie)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303: %s", rec.Code, rec.Body.String())
	}
	txns, err := ts.repo.ListTransactions(context.Background(), user.ID)
	if err != nil || len(txns) != 1 {
		t.Fatalf("transactions after create: %v (got %d)", err, len(txns))
	}
	if txns[0].AmountInCents != 450 {
		t.Errorf("amount = %d, want 450", txns[0].AmountInCents)
	}
	if len(ts.publisher.published) != 1 || ts.publisher.published[0].Action != events.ActionCreated {
		t.Errorf("published events = %+v, want one created event", ts.publisher.published)
	}
}

func TestAddTransactionValidation(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createUser(t, "alice")
	cookie := ts.sessionCookie(t, user)

	tests := []struct {
		name string
		form url.Values
	}{
		{"missing category on expense", url.Values{
			"type": {"OUTGO"}, "name": {"Rent"}, "amount_in_cents": {"100"},
			"occurred_on": {"2026-01-05"},
		}},
		{"bad direction", url.Values{
			"type": {"SIDEWAYS"}, "name": {"Rent"}, "amount_in_cents": {"100"},
			"occurred_on": {"2026-01-05"},
		}},
		{"zero amount", url.Values{
			"type": {"INCOME"}, "name": {"Gift"}, "amount_in_cents": {"0.00"},
			"occurred_on": {"2026-01-05"},
		}},
		{"bad date", url.Values{
			"type": {"INCOME"}, "name": {"Gift"}, "amount_in_cents": {"10"},
			"occurred_on": {"not-a-date"},
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := ts.do(t, req, cookie)

			if rec.Code != http.StatusSeeOther {
				t.Fatalf("status = %d, want redirect back", rec.Code)
			}
			count, err := ts.repo.CountTransactions(context.Background(), user.ID)
			if err != nil || count != 0 {
				t.Fatalf("state changed on invalid input: count=%d err=%v", count, err)
			}
		})
	}
}

func TestTransactionOwnershipReturns404(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.createUser(t, "alice")
	bob := ts.createUser(t, "bob")

	txn := ts.seedTransaction(t, alice.ID, core.DirectionIncome, 1000, "Salary", nil, core.DateOnly(time.Now()))

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/transactions/%d", txn.ID), nil)
	rec := ts.do(t, req, ts.sessionCookie(t, bob))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign transaction status = %d, want 404", rec.Code)
	}
}

func TestTransactionUpdateAJAX(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createUser(t, "alice")
	cookie := ts.sessionCookie(t, user)
	catID := ts.anyCategoryID(t)

	txn := ts.seedTransaction(t, user.ID, core.DirectionOutgo, 2000, "Groceries", catID, core.DateOnly(time.Now()))

	form := url.Values{
		"name":            {"Groceries and more"},
		"type":            {"OUTGO"},
		"category":        {fmt.Sprint(*catID)},
		"amount_in_cents": {"25.00"},
		"occurred_on":     {"2026-02-10"},
	}
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/transactions/%d", txn.ID), strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	rec := ts.do(t, req, cookie)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || !resp["success"] {
		t.Fatalf("response = %s, want {\"success\":true}", rec.Body.String())
	}

	updated, err := ts.repo.GetTransaction(context.Background(), user.ID, txn.ID)
	if err != nil {
		t.Fatalf("get updated: %v", err)
	}
	if updated.AmountInCents != 2500 || updated.Name != "Groceries and more" {
		t.Errorf("updated = %q/%d, want Groceries and more/2500", updated.Name, updated.AmountInCents)
	}
}

func TestTransactionUpdateAJAXValidationError(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createUser(t, "alice")
	cookie := ts.sessionCookie(t, user)

	txn := ts.seedTransaction(t, user.ID, core.DirectionIncome, 2000, "Salary", nil, core.DateOnly(time.Now()))

	form := url.Values{
		"name":            {"Salary revised"},
		"type":            {"OUTGO"}, // expense without a category
		"amount_in_cents": {"25.50"},
		"occurred_on":     {"2026-02-10"},
	}
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/transactions/%d", txn.ID), strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	rec := ts.do(t, req, cookie)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "require a category") {
		t.Errorf("fragment missing validation message: %s", body)
	}
	// The rejected form must echo what was submitted, not the stored row.
	if !strings.Contains(body, `value="Salary revised"`) {
		t.Errorf("fragment does not echo the submitted name: %s", body)
	}
	if !strings.Contains(body, `value="25.50"`) {
		t.Errorf("fragment does not echo the submitted amount: %s", body)
	}
	if strings.Contains(body, `value="20.00"`) {
		t.Errorf("fragment still shows the stored amount: %s", body)
	}
}

func TestTransactionDelete(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createUser(t, "alice")
	cookie := ts.sessionCookie(t, user)

	txn := ts.seedTransaction(t, user.ID, core.DirectionIncome, 1000, "Salary", nil, core.DateOnly(time.Now()))

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/transactions/%d/delete", txn.ID), nil)
	rec := ts.do(t, req, cookie)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if _, err := ts.repo.GetTransaction(context.Background(), user.ID, txn.ID); err == nil {
		t.Fatal("transaction still present after delete")
	}
	if n := len(ts.publisher.published); n != 1 || ts.publisher.published[0].Action != events.ActionDeleted {
		t.Errorf("published = %+v, want one deleted event", ts.publisher.published)
	}
}

func TestCalendarMonthFallback(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createUser(t, "alice")
	cookie := ts.sessionCookie(t, user)

	req := httptest.NewRequest(http.MethodGet, "/transactions/calendar?year=2026&month=13", nil)
	rec := ts.do(t, req, cookie)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp calendarResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode calendar: %v", err)
	}
	if resp.Month != int(time.Now().Month()) {
		t.Errorf("month = %d, want fallback to current month %d", resp.Month, time.Now().Month())
	}
	if resp.Year != 2026 {
		t.Errorf("year = %d, want 2026 (in range)", resp.Year)
	}
}

func TestCalendarGroupsAndSignsAmounts(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createUser(t, "alice")
	cookie := ts.sessionCookie(t, user)

	day := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	ts.seedTransaction(t, user.ID, core.DirectionIncome, 5000, "Refund", nil, day)
	ts.seedTransaction(t, user.ID, core.DirectionOutgo, 1250, "Lunch", ts.anyCategoryID(t), day)

	req := httptest.NewRequest(http.MethodGet, "/transactions/calendar?year=2026&month=3", nil)
	rec := ts.do(t, req, cookie)

	var resp calendarResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode calendar: %v", err)
	}
	if len(resp.Days) != 1 || resp.Days[0].Date != "2026-03-14" {
		t.Fatalf("days = %+v, want single 2026-03-14 group", resp.Days)
	}
	entries := resp.Days[0].Transactions
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	// Ordered by name within the day: Lunch before Refund.
	if entries[0].AmountDisplay != "-$12.50" {
		t.Errorf("outgo display = %q, want -$12.50", entries[0].AmountDisplay)
	}
	if entries[1].AmountDisplay != "+$50.00" {
		t.Errorf("income display = %q, want +$50.00", entries[1].AmountDisplay)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createUser(t, "alice")
	cookie := ts.sessionCookie(t, user)

	ts.seedTransaction(t, user.ID, core.DirectionIncome, 1000, "Salary", nil, core.DateOnly(time.Now()))

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/search?q=", nil), cookie)

	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if resp.Count != 0 || resp.HTML != "" {
		t.Errorf("empty query returned %d results", resp.Count)
	}
}

func TestSearchMatchesNote(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createUser(t, "alice")
	cookie := ts.sessionCookie(t, user)

	draft := core.TransactionDraft{
		Name:          "Transfer",
		Direction:     core.DirectionIncome,
		AmountInCents: 1000,
		OccurredOn:    core.DateOnly(time.Now()),
		Note:          "birthday present",
	}
	if err := draft.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if _, err := ts.repo.CreateTransaction(context.Background(), user.ID, draft); err != nil {
		t.Fatalf("create: %v", err)
	}

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/search?q=birthday", nil), cookie)

	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("count = %d, want 1 (note substring match)", resp.Count)
	}
	if !strings.Contains(resp.HTML, "Transfer") {
		t.Errorf("html missing matched transaction: %s", resp.HTML)
	}
}

func TestSuggestionsMergeAndDedupe(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createUser(t, "alice")
	cookie := ts.sessionCookie(t, user)

	// "Groceries" exists as both a seeded category and a transaction name.
	ts.seedTransaction(t, user.ID, core.DirectionOutgo, 1000, "Groceries", ts.anyCategoryID(t), core.DateOnly(time.Now()))

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/suggestions?q=groc", nil), cookie)

	var resp suggestionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode suggestions: %v", err)
	}
	seen := map[string]int{}
	for _, sgg := range resp.Suggestions {
		seen[sgg]++
	}
	if seen["Groceries"] != 1 {
		t.Errorf("suggestions = %v, want Groceries exactly once", resp.Suggestions)
	}
}

func TestCurrencyUpdate(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createUser(t, "alice")
	cookie := ts.sessionCookie(t, user)

	form := url.Values{"currency_code": {"EUR"}}
	req := httptest.NewRequest(http.MethodPost, "/settings/currency", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := ts.do(t, req, cookie)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	settings, err := ts.repo.GetOrCreateSettings(context.Background(), user.ID, time.Now())
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if settings.CurrencyCode != "EUR" {
		t.Errorf("currency = %q, want EUR", settings.CurrencyCode)
	}
}

func TestCurrencyUpdateRejectsUnknownCode(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createUser(t, "alice")
	cookie := ts.sessionCookie(t, user)

	form := url.Values{"currency_code": {"XXX"}}
	req := httptest.NewRequest(http.MethodPost, "/settings/currency", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := ts.do(t, req, cookie)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestClearHistoryLeavesOtherUsersAlone(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.createUser(t, "alice")
	bob := ts.createUser(t, "bob")

	now := core.DateOnly(time.Now())
	ts.seedTransaction(t, alice.ID, core.DirectionIncome, 1000, "Salary", nil, now)
	ts.seedTransaction(t, bob.ID, core.DirectionIncome, 2000, "Salary", nil, now)

	req := httptest.NewRequest(http.MethodPost, "/account/clear-history", nil)
	rec := ts.do(t, req, ts.sessionCookie(t, alice))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	aliceCount, _ := ts.repo.CountTransactions(context.Background(), alice.ID)
	bobCount, _ := ts.repo.CountTransactions(context.Background(), bob.ID)
	if aliceCount != 0 || bobCount != 1 {
		t.Errorf("counts after clear = alice %d / bob %d, want 0 / 1", aliceCount, bobCount)
	}
}

func TestSignupLoginLogout(t *testing.T) {
	ts := newTestServer(t)

	signup := url.Values{"username": {"carol"}, "password": {"password123"}}
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(signup.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := ts.do(t, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("signup status = %d, want 303: %s", rec.Code, rec.Body.String())
	}
	var sessionSet bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName && c.Value != "" {
			sessionSet = true
		}
	}
	if !sessionSet {
		t.Fatal("signup did not set a session cookie")
	}

	badLogin := url.Values{"username": {"carol"}, "password": {"wrong-password"}}
	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(badLogin.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = ts.do(t, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want 401", rec.Code)
	}

	goodLogin := url.Values{"username": {"carol"}, "password": {"password123"}}
	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(goodLogin.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = ts.do(t, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want 303", rec.Code)
	}

	rec = ts.do(t, httptest.NewRequest(http.MethodPost, "/logout", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("logout = %d -> %q, want 303 -> /login", rec.Code, rec.Header().Get("Location"))
	}
}

func TestDeleteAccountCascades(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createUser(t, "alice")
	cookie := ts.sessionCookie(t, user)

	ts.seedTransaction(t, user.ID, core.DirectionIncome, 1000, "Salary", nil, core.DateOnly(time.Now()))

	req := httptest.NewRequest(http.MethodPost, "/account/delete", nil)
	rec := ts.do(t, req, cookie)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 success page", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "alice") {
		t.Errorf("success page missing username")
	}
	if _, err := ts.repo.UserByUsername(context.Background(), "alice"); err == nil {
		t.Fatal("user still present after account deletion")
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := ts.do(t, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestUpdateCycleStart(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createUser(t, "alice")
	cookie := ts.sessionCookie(t, user)

	form := url.Values{
		"action":           {"update_cycle_start"},
		"cycle_start_date": {"2026-08-15"},
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := ts.do(t, req, cookie)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	settings, err := ts.repo.GetOrCreateSettings(context.Background(), user.ID, time.Now())
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if got := settings.CycleStartDate.Format("2006-01-02"); got != "2026-08-15" {
		t.Errorf("cycle start = %s, want 2026-08-15", got)
	}
	if settings.CycleDay() != 15 {
		t.Errorf("cycle day = %d, want 15", settings.CycleDay())
	}
}

func TestUpdateCycleStartRejectsBadDate(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createUser(t, "alice")
	cookie := ts.sessionCookie(t, user)

	form := url.Values{
		"action":           {"update_cycle_start"},
		"cycle_start_date": {"15/08/2026"},
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := ts.do(t, req, cookie)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want redirect back", rec.Code)
	}
	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == flashLevelCookie && c.Value == "error" {
			found = true
		}
	}
	if !found {
		t.Error("expected an error flash for a malformed date")
	}
}
