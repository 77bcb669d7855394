package proxy

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/manikantaaddala217-hub/fin-backend/shared/middleware"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
)

const testSecret = "gateway-test-secret"

type echo struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Query  string `json:"query"`
	Body   string `json:"body"`
	UserID string `json:"userId"`
}

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Upstream", "yes")
		w.WriteHeader(http.StatusTeapot)
		json.NewEncoder(w).Encode(echo{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   string(body),
			UserID: r.Header.Get("X-User-ID"),
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func token(t *testing.T, role string) string {
	t.Helper()
	claims := middleware.Claims{
		UserID: "usr-1",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func newGateway(t *testing.T, target string) *gin.Engine {
	t.Helper()
	if err := middleware.InitJWTSecret(testSecret); err != nil {
		t.Fatalf("init secret: %v", err)
	}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	Register(r, Routes(Targets{Auth: target, User: target, Loan: target}), NewClient(5*time.Second))
	return r
}

func TestGatewayRouting(t *testing.T) {
	upstream := newUpstream(t)
	router := newGateway(t, upstream.URL)

	tests := []struct {
		name           string
		method         string
		url            string
		role           string
		body           string
		expectedStatus int
	}{
		{"public login needs no token", http.MethodPost, "/login", "", `{"username":"a"}`, http.StatusTeapot},
		{"public send-otp", http.MethodGet, "/send-otp?username=a", "", "", http.StatusTeapot},
		{"loan routes need a token", http.MethodGet, "/loan/all", "", "", http.StatusUnauthorized},
		{"agent lists loans", http.MethodGet, "/loan/all?section=Daily", models.RoleAgent, "", http.StatusTeapot},
		{"agent records collection", http.MethodPost, "/table/save", models.RoleAgent, `{"loanId":"l1"}`, http.StatusTeapot},
		{"agent cannot create users", http.MethodPost, "/new-user", models.RoleAgent, `{}`, http.StatusForbidden},
		{"admin creates users", http.MethodPost, "/new-user", models.RoleAdmin, `{}`, http.StatusTeapot},
		{"agent cannot clear cash flow", http.MethodDelete, "/cf/clear", models.RoleAgent, "", http.StatusForbidden},
		{"unknown route", http.MethodGet, "/v1/accounts", models.RoleAdmin, "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(tt.method, tt.url, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.role != "" {
				req.Header.Set("Authorization", "Bearer "+token(t, tt.role))
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestProxyForwardsRequest(t *testing.T) {
	upstream := newUpstream(t)
	router := newGateway(t, upstream.URL)

	req, _ := http.NewRequest(http.MethodPut, "/table/update?x=1", strings.NewReader(`{"loanId":"l1","date":"2024-02-01"}`))
	req.Header.Set("Authorization", "Bearer "+token(t, models.RoleAgent))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Header().Get("X-Upstream") != "yes" {
		t.Errorf("expected upstream headers to be copied")
	}
	var got echo
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := echo{Method: http.MethodPut, Path: "/table/update", Query: "x=1", Body: `{"loanId":"l1","date":"2024-02-01"}`, UserID: "usr-1"}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestProxyUpstreamDown(t *testing.T) {
	upstream := newUpstream(t)
	url := upstream.URL
	upstream.Close()
	router := newGateway(t, url)

	req, _ := http.NewRequest(http.MethodPost, "/login", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502 got %d", w.Code)
	}
}
