package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/manikantaaddala217-hub/fin-backend/loan-service/internal/query"
	"github.com/manikantaaddala217-hub/fin-backend/shared/apperr"
	"github.com/manikantaaddala217-hub/fin-backend/shared/cqrs"
	"github.com/manikantaaddala217-hub/fin-backend/shared/middleware"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
)

// ---- mock implementations ----

type mockLoanCommander struct {
	createFn func(cqrs.CreateLoanCommand) (*models.LoanAccount, error)
	updateFn func(cqrs.UpdateLoanCommand) (*models.LoanAccount, error)
	renewFn  func(cqrs.RenewLoanCommand) (*models.LoanAccount, error)
	deleteFn func(cqrs.DeleteLoanCommand) error
	recordFn func(cqrs.RecordCollectionCommand) (*models.CollectionResult, error)
	amendFn  func(cqrs.AmendCollectionCommand) (*models.CollectionResult, error)
}

func (m *mockLoanCommander) CreateLoan(_ context.Context, cmd cqrs.CreateLoanCommand) (*models.LoanAccount, error) {
	if m.createFn != nil {
		return m.createFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockLoanCommander) UpdateLoan(_ context.Context, cmd cqrs.UpdateLoanCommand) (*models.LoanAccount, error) {
	if m.updateFn != nil {
		return m.updateFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockLoanCommander) RenewLoan(_ context.Context, cmd cqrs.RenewLoanCommand) (*models.LoanAccount, error) {
	if m.renewFn != nil {
		return m.renewFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockLoanCommander) DeleteLoan(_ context.Context, cmd cqrs.DeleteLoanCommand) error {
	if m.deleteFn != nil {
		return m.deleteFn(cmd)
	}
	return fmt.Errorf("not configured")
}
func (m *mockLoanCommander) RecordCollection(_ context.Context, cmd cqrs.RecordCollectionCommand) (*models.CollectionResult, error) {
	if m.recordFn != nil {
		return m.recordFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockLoanCommander) AmendCollection(_ context.Context, cmd cqrs.AmendCollectionCommand) (*models.CollectionResult, error) {
	if m.amendFn != nil {
		return m.amendFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}

type mockLoanQuerier struct {
	listFn     func(cqrs.ListLoansQuery) ([]models.LoanAccount, error)
	summaryFn  func(cqrs.SummaryQuery) (*models.LoanSummary, error)
	ledgerFn   func(cqrs.LoanLedgerQuery) (*models.LoanLedger, error)
	downloadFn func(cqrs.DownloadQuery) (*query.File, error)
}

func (m *mockLoanQuerier) ListLoans(_ context.Context, q cqrs.ListLoansQuery) ([]models.LoanAccount, error) {
	if m.listFn != nil {
		return m.listFn(q)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockLoanQuerier) Summary(_ context.Context, q cqrs.SummaryQuery) (*models.LoanSummary, error) {
	if m.summaryFn != nil {
		return m.summaryFn(q)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockLoanQuerier) LoanLedger(_ context.Context, q cqrs.LoanLedgerQuery) (*models.LoanLedger, error) {
	if m.ledgerFn != nil {
		return m.ledgerFn(q)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockLoanQuerier) Download(_ context.Context, q cqrs.DownloadQuery) (*query.File, error) {
	if m.downloadFn != nil {
		return m.downloadFn(q)
	}
	return nil, fmt.Errorf("not configured")
}

// ---- helpers ----

func fakeAuth(role string, areas ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetClaims(c, &middleware.Claims{UserID: "usr-test", Role: role, Areas: areas})
		c.Next()
	}
}

func newLoanTestRouter(cmds LoanCommander, qrys LoanQuerier, role string, areas ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(fakeAuth(role, areas...))
	h := NewLoanHandler(cmds, qrys)
	r.POST("/loan/create", h.CreateLoan)
	r.GET("/loan/all", h.ListLoans)
	r.PUT("/loan/update", h.UpdateLoan)
	r.DELETE("/loan/delete", h.DeleteLoan)
	r.POST("/loan/renew", h.RenewLoan)
	r.GET("/loan/summary", h.Summary)
	r.POST("/loan/download", h.Download)
	r.POST("/table/save", h.RecordCollection)
	r.PUT("/table/update", h.AmendCollection)
	r.GET("/table/loan", h.LoanLedger)
	return r
}

func doRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sampleLoan() *models.LoanAccount {
	return &models.LoanAccount{
		LoanID: "loan-1", SNo: 1, Section: models.SectionInterest, Area: "North", Day: "Monday",
		Name: "Ravi", GivenAmount: 10000, Interest: 500, TAmount: 10500, GivenDate: "2024-01-01",
	}
}

func validCreateBody() map[string]any {
	return map[string]any{
		"sno": 1, "section": "Interest", "area": "North", "name": "Ravi",
		"givenAmount": 10000, "interestPercent": 5, "givenDate": "2024-01-01",
	}
}

func with(body map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(body))
	for k, v := range body {
		out[k] = v
	}
	if value == nil {
		delete(out, key)
	} else {
		out[key] = value
	}
	return out
}

// ---- tests ----

func TestCreateLoan(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		createFn       func(cqrs.CreateLoanCommand) (*models.LoanAccount, error)
		expectedStatus int
	}{
		{
			name: "success",
			body: validCreateBody(),
			createFn: func(cmd cqrs.CreateLoanCommand) (*models.LoanAccount, error) {
				if cmd.SNo != 1 || cmd.GivenAmount != 10000 || cmd.InterestPercent.IntPart() != 5 {
					return nil, fmt.Errorf("unexpected command %+v", cmd)
				}
				return sampleLoan(), nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "conflict - sno taken in section",
			body: validCreateBody(),
			createFn: func(cqrs.CreateLoanCommand) (*models.LoanAccount, error) {
				return nil, apperr.Conflict("Loan with sNo 1 and section Interest already exists.")
			},
			expectedStatus: http.StatusConflict,
		},
		{"bad request - unknown section", with(validCreateBody(), "section", "Yearly"), nil, http.StatusBadRequest},
		{"bad request - missing givenDate", with(validCreateBody(), "givenDate", nil), nil, http.StatusBadRequest},
		{"bad request - malformed givenDate", with(validCreateBody(), "givenDate", "01-01-2024"), nil, http.StatusBadRequest},
		{"bad request - principal too large", with(validCreateBody(), "givenAmount", 10000001), nil, http.StatusBadRequest},
		{"bad request - missing name", with(validCreateBody(), "name", nil), nil, http.StatusBadRequest},
		{"bad request - not json", "nope", nil, http.StatusBadRequest},
		{
			name:           "internal error",
			body:           validCreateBody(),
			createFn:       func(cqrs.CreateLoanCommand) (*models.LoanAccount, error) { return nil, fmt.Errorf("db down") },
			expectedStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newLoanTestRouter(&mockLoanCommander{createFn: tt.createFn}, &mockLoanQuerier{}, models.RoleAgent, "North")
			w := doRequest(router, http.MethodPost, "/loan/create", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestListLoansScopesAreas(t *testing.T) {
	tests := []struct {
		name      string
		role      string
		areas     []string
		wantAreas []string
		wantNil   bool
	}{
		{"admin sees everything", models.RoleAdmin, nil, nil, true},
		{"agent sees own areas", models.RoleAgent, []string{"North", "East"}, []string{"North", "East"}, false},
		{"agent without areas sees nothing", models.RoleAgent, nil, []string{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got cqrs.ListLoansQuery
			qrys := &mockLoanQuerier{listFn: func(q cqrs.ListLoansQuery) ([]models.LoanAccount, error) {
				got = q
				return []models.LoanAccount{*sampleLoan()}, nil
			}}
			router := newLoanTestRouter(&mockLoanCommander{}, qrys, tt.role, tt.areas...)
			w := doRequest(router, http.MethodGet, "/loan/all?section=Weekly", nil)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200 got %d", w.Code)
			}
			if got.Section != models.SectionWeekly {
				t.Errorf("expected section Weekly, got %q", got.Section)
			}
			if tt.wantNil != (got.Areas == nil) {
				t.Errorf("expected nil areas=%v, got %v", tt.wantNil, got.Areas)
			}
			if !tt.wantNil && strings.Join(got.Areas, ",") != strings.Join(tt.wantAreas, ",") {
				t.Errorf("expected areas %v, got %v", tt.wantAreas, got.Areas)
			}
		})
	}
}

func TestUpdateLoanBuildsPatch(t *testing.T) {
	var got cqrs.UpdateLoanCommand
	cmds := &mockLoanCommander{updateFn: func(cmd cqrs.UpdateLoanCommand) (*models.LoanAccount, error) {
		got = cmd
		if cmd.LoanID == "missing" {
			return nil, apperr.NotFound("Loan not found")
		}
		return sampleLoan(), nil
	}}
	router := newLoanTestRouter(cmds, &mockLoanQuerier{}, models.RoleAgent)

	w := doRequest(router, http.MethodPut, "/loan/update", map[string]any{"loanId": "loan-1", "name": "Ravi Kumar", "referName": ""})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d; body: %s", w.Code, w.Body.String())
	}
	if got.Patch.Name == nil || *got.Patch.Name != "Ravi Kumar" {
		t.Errorf("expected name in patch, got %+v", got.Patch)
	}
	if got.Patch.ReferName == nil || *got.Patch.ReferName != "" {
		t.Errorf("expected empty referName to be present in patch")
	}
	if got.Patch.GivenAmount != nil || got.Patch.Section != nil || got.Patch.SNo != nil {
		t.Errorf("expected absent fields to stay nil, got %+v", got.Patch)
	}

	w = doRequest(router, http.MethodPut, "/loan/update", map[string]any{"name": "x"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without loanId, got %d", w.Code)
	}

	w = doRequest(router, http.MethodPut, "/loan/update", map[string]any{"loanId": "missing", "name": "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestRenewLoan(t *testing.T) {
	var got cqrs.RenewLoanCommand
	cmds := &mockLoanCommander{renewFn: func(cmd cqrs.RenewLoanCommand) (*models.LoanAccount, error) {
		got = cmd
		l := sampleLoan()
		l.GivenAmount, l.Interest, l.TAmount, l.Paid = 20000, 1000, 21000, 0
		return l, nil
	}}
	router := newLoanTestRouter(cmds, &mockLoanQuerier{}, models.RoleAgent)

	w := doRequest(router, http.MethodPost, "/loan/renew", map[string]any{"loanId": "loan-1", "givenAmount": 20000})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d; body: %s", w.Code, w.Body.String())
	}
	if got.Terms.GivenAmount == nil || *got.Terms.GivenAmount != 20000 || got.Terms.Section != nil {
		t.Errorf("unexpected terms %+v", got.Terms)
	}
	var resp struct {
		Data models.LoanAccount `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Paid != 0 || resp.Data.TAmount != 21000 {
		t.Errorf("unexpected renewed loan %+v", resp.Data)
	}

	w = doRequest(router, http.MethodPost, "/loan/renew", map[string]any{"loanId": "loan-1", "givenAmount": -1})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for negative principal, got %d", w.Code)
	}
}

func TestDeleteLoan(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		deleteFn       func(cqrs.DeleteLoanCommand) error
		expectedStatus int
	}{
		{"success", "/loan/delete?id=loan-1", func(cqrs.DeleteLoanCommand) error { return nil }, http.StatusOK},
		{"not found", "/loan/delete?id=loan-x", func(cqrs.DeleteLoanCommand) error { return apperr.NotFound("Loan not found") }, http.StatusNotFound},
		{"bad request - missing id", "/loan/delete", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newLoanTestRouter(&mockLoanCommander{deleteFn: tt.deleteFn}, &mockLoanQuerier{}, models.RoleAdmin)
			w := doRequest(router, http.MethodDelete, tt.url, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestRecordCollection(t *testing.T) {
	ok := func(cmd cqrs.RecordCollectionCommand) (*models.CollectionResult, error) {
		return &models.CollectionResult{
			Entry:       models.LedgerEntry{ID: 1, LoanID: cmd.LoanID, Date: cmd.Date, Amount: cmd.Amount},
			UpdatedPaid: 1000,
		}, nil
	}
	tests := []struct {
		name           string
		body           interface{}
		recordFn       func(cqrs.RecordCollectionCommand) (*models.CollectionResult, error)
		expectedStatus int
	}{
		{"success", map[string]any{"loanId": "loan-1", "date": "2024-02-01", "amount": 1000}, ok, http.StatusCreated},
		{"conflict - same day", map[string]any{"loanId": "loan-1", "date": "2024-02-01", "amount": 1000},
			func(cqrs.RecordCollectionCommand) (*models.CollectionResult, error) {
				return nil, apperr.Conflict("Entry for this date already exists for this loan")
			}, http.StatusConflict},
		{"not found - unknown loan", map[string]any{"loanId": "nope", "date": "2024-02-01", "amount": 1000},
			func(cqrs.RecordCollectionCommand) (*models.CollectionResult, error) {
				return nil, apperr.NotFound("Loan not found")
			}, http.StatusNotFound},
		{"bad request - zero amount", map[string]any{"loanId": "loan-1", "date": "2024-02-01", "amount": 0}, nil, http.StatusBadRequest},
		{"bad request - bad date", map[string]any{"loanId": "loan-1", "date": "2024-2-1", "amount": 10}, nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newLoanTestRouter(&mockLoanCommander{recordFn: tt.recordFn}, &mockLoanQuerier{}, models.RoleAgent)
			w := doRequest(router, http.MethodPost, "/table/save", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}

	router := newLoanTestRouter(&mockLoanCommander{recordFn: ok}, &mockLoanQuerier{}, models.RoleAgent)
	w := doRequest(router, http.MethodPost, "/table/save", map[string]any{"loanId": "loan-1", "date": "2024-02-01", "amount": 1000})
	var resp struct {
		Success     bool               `json:"success"`
		Data        models.LedgerEntry `json:"data"`
		UpdatedPaid int64              `json:"updatedPaid"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.UpdatedPaid != 1000 || resp.Data.Date != "2024-02-01" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestAmendCollection(t *testing.T) {
	var got cqrs.AmendCollectionCommand
	cmds := &mockLoanCommander{amendFn: func(cmd cqrs.AmendCollectionCommand) (*models.CollectionResult, error) {
		got = cmd
		if cmd.NewDate != nil && *cmd.NewDate == "2024-02-02" {
			return nil, apperr.Conflict("Entry for this date already exists for this loan")
		}
		return &models.CollectionResult{Entry: models.LedgerEntry{LoanID: cmd.LoanID, Date: cmd.Date, Amount: 1500}, UpdatedPaid: 1500}, nil
	}}
	router := newLoanTestRouter(cmds, &mockLoanQuerier{}, models.RoleAgent)

	w := doRequest(router, http.MethodPut, "/table/update", map[string]any{"loanId": "loan-1", "date": "2024-02-01", "amount": 1500})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d; body: %s", w.Code, w.Body.String())
	}
	if got.NewAmount == nil || *got.NewAmount != 1500 || got.NewDate != nil {
		t.Errorf("unexpected command %+v", got)
	}

	w = doRequest(router, http.MethodPut, "/table/update", map[string]any{"loanId": "loan-1", "date": "2024-02-01", "newDate": "2024-02-02"})
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 got %d", w.Code)
	}

	w = doRequest(router, http.MethodPut, "/table/update", map[string]any{"loanId": "loan-1"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without date, got %d", w.Code)
	}
}

func TestLoanLedgerResponseShape(t *testing.T) {
	qrys := &mockLoanQuerier{ledgerFn: func(q cqrs.LoanLedgerQuery) (*models.LoanLedger, error) {
		if q.Areas != nil && (len(q.Areas) != 1 || q.Areas[0] != "North") {
			return nil, fmt.Errorf("unexpected areas %v", q.Areas)
		}
		return &models.LoanLedger{
			Loan:    sampleLoan(),
			Entries: []models.LedgerEntry{{LoanID: "loan-1", Date: "2024-02-01", Amount: 1000}},
		}, nil
	}}
	router := newLoanTestRouter(&mockLoanCommander{}, qrys, models.RoleAgent, "North")

	w := doRequest(router, http.MethodGet, "/table/loan?loanId=loan-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d; body: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data []models.LedgerEntry `json:"data"`
		User models.LoanAccount   `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 1 || resp.User.LoanID != "loan-1" {
		t.Errorf("unexpected response %+v", resp)
	}

	w = doRequest(router, http.MethodGet, "/table/loan", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without loanId, got %d", w.Code)
	}
}

func TestSummaryHandler(t *testing.T) {
	qrys := &mockLoanQuerier{summaryFn: func(q cqrs.SummaryQuery) (*models.LoanSummary, error) {
		if q.Section == "Yearly" {
			return nil, apperr.Validation("section must be one of Daily, Weekly, Monthly, Interest")
		}
		return &models.LoanSummary{Total: models.SectionSummary{Section: "Total", TotalAmount: 10500, PaidAmount: 1000, BalanceAmount: 9500}}, nil
	}}
	router := newLoanTestRouter(&mockLoanCommander{}, qrys, models.RoleAgent)

	if w := doRequest(router, http.MethodGet, "/loan/summary", nil); w.Code != http.StatusOK {
		t.Errorf("expected 200 got %d", w.Code)
	}
	if w := doRequest(router, http.MethodGet, "/loan/summary?section=Yearly", nil); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 got %d", w.Code)
	}
}

func TestDownload(t *testing.T) {
	body := map[string]any{
		"dataType": "Collection", "areas": []string{"North", "South"},
		"fromDate": "2024-01-01", "toDate": "2024-01-31",
	}
	tests := []struct {
		name           string
		role           string
		areas          []string
		body           interface{}
		wantAreas      string
		expectedStatus int
	}{
		{"admin keeps requested areas", models.RoleAdmin, nil, body, "North,South", http.StatusOK},
		{"agent is narrowed to own areas", models.RoleAgent, []string{"North"}, body, "North", http.StatusOK},
		{"bad request - unknown dataType", models.RoleAdmin, nil, with(body, "dataType", "Everything"), "", http.StatusBadRequest},
		{"bad request - missing toDate", models.RoleAdmin, nil, with(body, "toDate", nil), "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got cqrs.DownloadQuery
			qrys := &mockLoanQuerier{downloadFn: func(q cqrs.DownloadQuery) (*query.File, error) {
				got = q
				return &query.File{Name: "collections_2024-01-01_2024-01-31.xlsx", ContentType: "application/test", Body: []byte("xlsx")}, nil
			}}
			router := newLoanTestRouter(&mockLoanCommander{}, qrys, tt.role, tt.areas...)
			w := doRequest(router, http.MethodPost, "/loan/download", tt.body)
			if w.Code != tt.expectedStatus {
				t.Fatalf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus != http.StatusOK {
				return
			}
			if strings.Join(got.Areas, ",") != tt.wantAreas {
				t.Errorf("expected areas %s, got %v", tt.wantAreas, got.Areas)
			}
			if cd := w.Header().Get("Content-Disposition"); cd != "attachment; filename=collections_2024-01-01_2024-01-31.xlsx" {
				t.Errorf("unexpected Content-Disposition %q", cd)
			}
			if w.Header().Get("Content-Type") != "application/test" || w.Body.String() != "xlsx" {
				t.Errorf("unexpected attachment %q %q", w.Header().Get("Content-Type"), w.Body.String())
			}
		})
	}
}

func TestScopeAreas(t *testing.T) {
	if got := scopeAreas(nil, nil); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
	if got := scopeAreas([]string{}, nil); got != nil {
		t.Errorf("expected nil for empty admin request, got %v", got)
	}
	if got := scopeAreas(nil, []string{"North"}); strings.Join(got, ",") != "North" {
		t.Errorf("expected allowed areas, got %v", got)
	}
	if got := scopeAreas([]string{"South"}, []string{"North"}); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil, got %v", got)
	}
}
