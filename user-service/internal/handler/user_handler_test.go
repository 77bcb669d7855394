package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/manikantaaddala217-hub/fin-backend/shared/apperr"
	"github.com/manikantaaddala217-hub/fin-backend/shared/cqrs"
	"github.com/manikantaaddala217-hub/fin-backend/shared/middleware"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
)

// ---- mock implementations ----

type mockUserCommander struct {
	createFn  func(cqrs.CreateUserCommand) (*models.UserView, error)
	updateFn  func(cqrs.UpdateUserCommand) (*models.UserView, error)
	deleteFn  func(cqrs.DeleteUserCommand) error
	addAreaFn func(cqrs.AddAreaCommand) (string, error)
}

func (m *mockUserCommander) CreateUser(_ context.Context, cmd cqrs.CreateUserCommand) (*models.UserView, error) {
	if m.createFn != nil {
		return m.createFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockUserCommander) UpdateUser(_ context.Context, cmd cqrs.UpdateUserCommand) (*models.UserView, error) {
	if m.updateFn != nil {
		return m.updateFn(cmd)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockUserCommander) DeleteUser(_ context.Context, cmd cqrs.DeleteUserCommand) error {
	if m.deleteFn != nil {
		return m.deleteFn(cmd)
	}
	return fmt.Errorf("not configured")
}
func (m *mockUserCommander) AddArea(_ context.Context, cmd cqrs.AddAreaCommand) (string, error) {
	if m.addAreaFn != nil {
		return m.addAreaFn(cmd)
	}
	return "", fmt.Errorf("not configured")
}

type mockUserQuerier struct {
	getFn  func(cqrs.GetUserQuery) (*models.UserView, error)
	listFn func() ([]*models.UserView, error)
}

func (m *mockUserQuerier) GetUser(_ context.Context, q cqrs.GetUserQuery) (*models.UserView, error) {
	if m.getFn != nil {
		return m.getFn(q)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockUserQuerier) ListUsers(_ context.Context) ([]*models.UserView, error) {
	if m.listFn != nil {
		return m.listFn()
	}
	return nil, fmt.Errorf("not configured")
}

// ---- helpers ----

func fakeAuthUser(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetClaims(c, &middleware.Claims{UserID: userID, Role: role})
		c.Next()
	}
}

func newUserTestRouter(cmds UserCommander, qrys UserQuerier, authUserID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(fakeAuthUser(authUserID, role))
	h := NewUserHandler(cmds, qrys)
	admin := middleware.RequireRole(models.RoleAdmin)
	r.POST("/new-user", admin, h.CreateUser)
	r.GET("/all-users", admin, h.ListUsers)
	r.GET("/userById", h.GetUser)
	r.POST("/update-user", admin, h.UpdateUser)
	r.DELETE("/delete-user", admin, h.DeleteUser)
	r.POST("/add-area", admin, h.AddArea)
	return r
}

func userDoRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
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

func sampleView(id string) *models.UserView {
	return &models.UserView{
		ID:        id,
		Username:  "ravi",
		Name:      "Ravi",
		Role:      models.RoleAgent,
		Areas:     []string{"North"},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// ---- tests ----

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name           string
		role           string
		body           interface{}
		createFn       func(cqrs.CreateUserCommand) (*models.UserView, error)
		expectedStatus int
	}{
		{
			name: "success - admin creates agent",
			role: models.RoleAdmin,
			body: map[string]any{"username": "ravi", "password": "secret1", "name": "Ravi", "linesHandle": []string{"North"}},
			createFn: func(cmd cqrs.CreateUserCommand) (*models.UserView, error) {
				if cmd.Username != "ravi" || len(cmd.Areas) != 1 {
					return nil, fmt.Errorf("unexpected command %+v", cmd)
				}
				return sampleView("usr-1"), nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "conflict - username taken",
			role:           models.RoleAdmin,
			body:           map[string]any{"username": "ravi", "password": "secret1", "name": "Ravi"},
			createFn:       func(cmd cqrs.CreateUserCommand) (*models.UserView, error) { return nil, apperr.Conflict("Username already exists") },
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "bad request - missing name",
			role:           models.RoleAdmin,
			body:           map[string]any{"username": "ravi", "password": "secret1"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - invalid email",
			role:           models.RoleAdmin,
			body:           map[string]any{"username": "ravi", "password": "secret1", "name": "Ravi", "email": "nope"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "forbidden - agent cannot create users",
			role:           models.RoleAgent,
			body:           map[string]any{"username": "ravi", "password": "secret1", "name": "Ravi"},
			expectedStatus: http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newUserTestRouter(&mockUserCommander{createFn: tt.createFn}, &mockUserQuerier{}, "usr-admin", tt.role)
			w := userDoRequest(router, http.MethodPost, "/new-user", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetUser(t *testing.T) {
	found := func(q cqrs.GetUserQuery) (*models.UserView, error) { return sampleView(q.UserID), nil }
	tests := []struct {
		name           string
		authUserID     string
		role           string
		url            string
		getFn          func(cqrs.GetUserQuery) (*models.UserView, error)
		expectedStatus int
	}{
		{"success - own profile", "usr-1", models.RoleAgent, "/userById?id=usr-1", found, http.StatusOK},
		{"success - admin reads anyone", "usr-admin", models.RoleAdmin, "/userById?id=usr-1", found, http.StatusOK},
		{"forbidden - agent reads other", "usr-2", models.RoleAgent, "/userById?id=usr-1", found, http.StatusForbidden},
		{"not found", "usr-admin", models.RoleAdmin, "/userById?id=usr-x", func(q cqrs.GetUserQuery) (*models.UserView, error) {
			return nil, apperr.NotFound("User not found")
		}, http.StatusNotFound},
		{"bad request - missing id", "usr-admin", models.RoleAdmin, "/userById", nil, http.StatusBadRequest},
		{"bad request - malformed id", "usr-admin", models.RoleAdmin, "/userById?id=42", found, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newUserTestRouter(&mockUserCommander{}, &mockUserQuerier{getFn: tt.getFn}, tt.authUserID, tt.role)
			w := userDoRequest(router, http.MethodGet, tt.url, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestListUsers(t *testing.T) {
	router := newUserTestRouter(&mockUserCommander{}, &mockUserQuerier{
		listFn: func() ([]*models.UserView, error) {
			return []*models.UserView{sampleView("usr-1"), sampleView("usr-2")}, nil
		},
	}, "usr-admin", models.RoleAdmin)

	w := userDoRequest(router, http.MethodGet, "/all-users", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var resp struct {
		Success bool               `json:"success"`
		Data    []*models.UserView `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !resp.Success || len(resp.Data) != 2 {
		t.Errorf("unexpected response: %s", w.Body.String())
	}
}

func TestUpdateUser(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		body           interface{}
		updateFn       func(cqrs.UpdateUserCommand) (*models.UserView, error)
		expectedStatus int
	}{
		{
			name: "success - partial update keeps absent fields nil",
			url:  "/update-user?id=usr-1",
			body: map[string]any{"name": "Ravi Kumar"},
			updateFn: func(cmd cqrs.UpdateUserCommand) (*models.UserView, error) {
				if cmd.Name == nil || *cmd.Name != "Ravi Kumar" || cmd.Email != nil || cmd.Password != nil || cmd.Areas != nil {
					return nil, fmt.Errorf("unexpected command %+v", cmd)
				}
				return sampleView(cmd.UserID), nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "not found",
			url:            "/update-user?id=usr-x",
			body:           map[string]any{"name": "X"},
			updateFn:       func(cmd cqrs.UpdateUserCommand) (*models.UserView, error) { return nil, apperr.NotFound("User not found") },
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bad request - short password",
			url:            "/update-user?id=usr-1",
			body:           map[string]any{"password": "abc"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - malformed id",
			url:            "/update-user?id=admin",
			body:           map[string]any{"name": "X"},
			updateFn:       func(cmd cqrs.UpdateUserCommand) (*models.UserView, error) { return sampleView(cmd.UserID), nil },
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - missing id",
			url:            "/update-user",
			body:           map[string]any{"name": "X"},
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newUserTestRouter(&mockUserCommander{updateFn: tt.updateFn}, &mockUserQuerier{}, "usr-admin", models.RoleAdmin)
			w := userDoRequest(router, http.MethodPost, tt.url, tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestDeleteUser(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		deleteFn       func(cqrs.DeleteUserCommand) error
		expectedStatus int
	}{
		{"success", "/delete-user?id=usr-1", func(cmd cqrs.DeleteUserCommand) error { return nil }, http.StatusOK},
		{"not found", "/delete-user?id=usr-x", func(cmd cqrs.DeleteUserCommand) error { return apperr.NotFound("User not found") }, http.StatusNotFound},
		{"internal error", "/delete-user?id=usr-1", func(cmd cqrs.DeleteUserCommand) error { return fmt.Errorf("db down") }, http.StatusInternalServerError},
		{"bad request - malformed id", "/delete-user?id=1", func(cmd cqrs.DeleteUserCommand) error { return nil }, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newUserTestRouter(&mockUserCommander{deleteFn: tt.deleteFn}, &mockUserQuerier{}, "usr-admin", models.RoleAdmin)
			w := userDoRequest(router, http.MethodDelete, tt.url, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestAddArea(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		addAreaFn      func(cqrs.AddAreaCommand) (string, error)
		expectedStatus int
	}{
		{"success", map[string]string{"areaName": " West "}, func(cmd cqrs.AddAreaCommand) (string, error) { return "West", nil }, http.StatusOK},
		{"no admins", map[string]string{"areaName": "West"}, func(cmd cqrs.AddAreaCommand) (string, error) {
			return "", apperr.NotFound("No Admin users found")
		}, http.StatusNotFound},
		{"bad request - missing area", map[string]string{}, nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newUserTestRouter(&mockUserCommander{addAreaFn: tt.addAreaFn}, &mockUserQuerier{}, "usr-admin", models.RoleAdmin)
			w := userDoRequest(router, http.MethodPost, "/add-area", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}
