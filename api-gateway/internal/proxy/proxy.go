// Package proxy forwards gateway requests to the backing services.
package proxy

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/manikantaaddala217-hub/fin-backend/shared/middleware"
	"github.com/manikantaaddala217-hub/fin-backend/shared/models"
	"github.com/rs/zerolog/log"
)

// Targets are the base URLs of the services behind the gateway.
type Targets struct {
	Auth string
	User string
	Loan string
}

// Route is one public route and the service that serves it.
type Route struct {
	Method string
	Path   string
	Target string
	Public bool
	Admin  bool
}

// Routes lists every route the gateway exposes.
func Routes(t Targets) []Route {
	return []Route{
		{http.MethodPost, "/login", t.Auth, true, false},
		{http.MethodPost, "/refresh", t.Auth, true, false},
		{http.MethodGet, "/send-otp", t.Auth, true, false},
		{http.MethodPost, "/validate-otp", t.Auth, true, false},
		{http.MethodPost, "/update-password", t.Auth, true, false},

		{http.MethodPost, "/new-user", t.User, false, true},
		{http.MethodGet, "/all-users", t.User, false, true},
		{http.MethodGet, "/userById", t.User, false, false},
		{http.MethodPost, "/update-user", t.User, false, true},
		{http.MethodDelete, "/delete-user", t.User, false, true},
		{http.MethodPost, "/add-area", t.User, false, true},

		{http.MethodPost, "/loan/create", t.Loan, false, false},
		{http.MethodGet, "/loan/all", t.Loan, false, false},
		{http.MethodPut, "/loan/update", t.Loan, false, false},
		{http.MethodDelete, "/loan/delete", t.Loan, false, false},
		{http.MethodPost, "/loan/renew", t.Loan, false, false},
		{http.MethodGet, "/loan/summary", t.Loan, false, false},
		{http.MethodPost, "/loan/download", t.Loan, false, false},
		{http.MethodPost, "/table/save", t.Loan, false, false},
		{http.MethodPut, "/table/update", t.Loan, false, false},
		{http.MethodGet, "/table/loan", t.Loan, false, false},

		{http.MethodPost, "/cf/save", t.Loan, false, false},
		{http.MethodDelete, "/cf/clear", t.Loan, false, true},
		{http.MethodGet, "/cf/all", t.Loan, false, false},
		{http.MethodPost, "/bkp/save", t.Loan, false, false},
		{http.MethodDelete, "/bkp/delete", t.Loan, false, false},
		{http.MethodGet, "/bkp/all", t.Loan, false, false},
	}
}

// Register mounts routes on router. Non-public routes require a valid
// bearer token; admin routes also require the Admin role.
func Register(router gin.IRoutes, routes []Route, client *http.Client) {
	for _, r := range routes {
		handlers := []gin.HandlerFunc{}
		if !r.Public {
			handlers = append(handlers, middleware.AuthMiddleware())
		}
		if r.Admin {
			handlers = append(handlers, middleware.RequireRole(models.RoleAdmin))
		}
		handlers = append(handlers, To(r.Target, client))
		router.Handle(r.Method, r.Path, handlers...)
	}
}

// NewClient returns the HTTP client used for upstream calls.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// To forwards the request to serviceURL with the same path, query, headers
// and body, and copies the upstream response back.
func To(serviceURL string, client *http.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetURL := serviceURL + c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			targetURL += "?" + c.Request.URL.RawQuery
		}

		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
		}

		req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, targetURL, bytes.NewReader(bodyBytes))
		if err != nil {
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to create request")
			return
		}
		for key, values := range c.Request.Header {
			for _, value := range values {
				req.Header.Add(key, value)
			}
		}

		// Forward user context from the JWT middleware if authenticated
		if claims, ok := middleware.GetClaims(c); ok {
			req.Header.Set("X-User-ID", claims.UserID)
			req.Header.Set("X-User-Role", claims.Role)
		}

		resp, err := client.Do(req)
		if err != nil {
			log.Error().Err(err).Str("target", targetURL).Msg("error proxying request")
			middleware.RespondWithError(c, http.StatusBadGateway, "Service unavailable")
			return
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			middleware.RespondWithError(c, http.StatusBadGateway, "Failed to read response")
			return
		}

		for key, values := range resp.Header {
			for _, value := range values {
				c.Header(key, value)
			}
		}
		c.Data(resp.StatusCode, resp.Header.Get("Content-Type"), respBody)
	}
}
