package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/coursebridge-backend/internal/handlers"
	"github.com/yungbote/coursebridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursebridge-backend/internal/platform/logger"
	"github.com/yungbote/coursebridge-backend/internal/services"
)

const testSecret = "middleware-test-secret"

func mintToken(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	claims := services.JWTClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()
	am := NewAuthMiddleware(log, services.NewAuthService(log, testSecret))

	router := gin.New()
	authed := router.Group("/", am.RequireAuth())
	authed.GET("/me", func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user_id": rd.UserID, "role": rd.Role})
	})
	instructor := router.Group("/instructor", am.RequireAuth(), am.RequireRole(ctxutil.RoleInstructor, ctxutil.RoleAdmin))
	instructor.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

func TestRequireAuth(t *testing.T) {
	router := newTestRouter(t)
	userID := uuid.New()

	cases := []struct {
		name       string
		authHeader string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "no_token",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
			wantCode:   "unauthorized",
		},
		{
			name:       "malformed_header",
			authHeader: "Token abc",
			wantStatus: http.StatusUnauthorized,
			wantCode:   "unauthorized",
		},
		{
			name:       "bad_token",
			authHeader: "Bearer not.a.token",
			wantStatus: http.StatusUnauthorized,
			wantCode:   "unauthorized",
		},
		{
			name:       "valid_token",
			authHeader: "Bearer " + mintToken(t, userID, ctxutil.RoleStudent),
			wantStatus: http.StatusOK,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status=%d, want %d (body %s)", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if tc.wantCode != "" {
				var env handlers.ErrorEnvelope
				if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
					t.Fatalf("decode body: %v", err)
				}
				if env.Error.Code != tc.wantCode {
					t.Fatalf("code=%q, want %q", env.Error.Code, tc.wantCode)
				}
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	router := newTestRouter(t)
	userID := uuid.New()

	cases := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{name: "instructor_allowed", role: ctxutil.RoleInstructor, wantStatus: http.StatusOK},
		{name: "admin_allowed", role: ctxutil.RoleAdmin, wantStatus: http.StatusOK},
		{name: "student_rejected", role: ctxutil.RoleStudent, wantStatus: http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/instructor/ping", nil)
			req.Header.Set("Authorization", "Bearer "+mintToken(t, userID, tc.role))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status=%d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}
