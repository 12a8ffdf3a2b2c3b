package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursebridge-backend/internal/platform/apierr"
)

func TestRespondErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not_found",
			err:        apierr.NotFound(fmt.Errorf("course not found")),
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "forbidden",
			err:        apierr.Forbidden(fmt.Errorf("nope")),
			wantStatus: http.StatusForbidden,
			wantCode:   "forbidden",
		},
		{
			name:       "not_restorable",
			err:        apierr.NotRestorable(fmt.Errorf("window closed")),
			wantStatus: http.StatusConflict,
			wantCode:   "not_restorable",
		},
		{
			name:       "validation",
			err:        apierr.Validation(fmt.Errorf("title required")),
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation",
		},
		{
			name:       "upstream_io",
			err:        apierr.UpstreamIO(fmt.Errorf("bucket down")),
			wantStatus: http.StatusBadGateway,
			wantCode:   "upstream_io",
		},
		{
			name:       "wrapped_classified_error",
			err:        fmt.Errorf("outer: %w", apierr.NotFound(fmt.Errorf("gone"))),
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "unclassified_error",
			err:        fmt.Errorf("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			RespondError(c, tc.err)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status=%d, want %d", rec.Code, tc.wantStatus)
			}
			var env ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if env.Error.Code != tc.wantCode {
				t.Fatalf("code=%q, want %q", env.Error.Code, tc.wantCode)
			}
			if tc.name == "unclassified_error" && env.Error.Message == tc.err.Error() {
				t.Fatalf("internal error message leaked to the client")
			}
		})
	}
}

func TestRequestShapingErrorsUseEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		respond    func(c *gin.Context)
		wantStatus int
		wantCode   string
	}{
		{
			name:       "unauthorized",
			respond:    respondUnauthorized,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "unauthorized",
		},
		{
			name:       "invalid_body",
			respond:    respondInvalidBody,
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation",
		},
		{
			name: "bad_id_param",
			respond: func(c *gin.Context) {
				c.Params = gin.Params{{Key: "courseId", Value: "not-a-uuid"}}
				if _, ok := parseIDParam(c, "courseId"); ok {
					t.Fatalf("parseIDParam accepted a bad uuid")
				}
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			tc.respond(c)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status=%d, want %d", rec.Code, tc.wantStatus)
			}
			var env ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if env.Error.Code != tc.wantCode {
				t.Fatalf("code=%q, want %q", env.Error.Code, tc.wantCode)
			}
		})
	}
}
