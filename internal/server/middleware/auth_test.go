package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"medsupply/internal/identity/service"
	sessiondomain "medsupply/internal/session/domain"
	userdomain "medsupply/internal/user/domain"
)

// fakeTokens treats "signed:<sid>" as a valid token.
type fakeTokens struct{}

func (fakeTokens) IssueSession(sid string) (string, time.Time, error) {
	return "signed:" + sid, time.Now().Add(time.Hour), nil
}

func (fakeTokens) ValidateSession(token string) (string, error) {
	if sid, ok := strings.CutPrefix(token, "signed:"); ok && sid != "" {
		return sid, nil
	}
	return "", errors.New("invalid token")
}

type fakeAuthenticator struct {
	sessions map[string]*service.AuthContext
	err      error
	calls    int
}

func (f *fakeAuthenticator) Authenticate(ctx context.Context, sessionID string) (*service.AuthContext, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	ac, ok := f.sessions[sessionID]
	if !ok {
		return nil, service.ErrNotAuthenticated
	}
	return ac, nil
}

func newAuthRouter(auth Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/dashboard", RequireFullyAuthenticated(fakeTokens{}, auth), func(c *gin.Context) {
		ac, ok := AuthFromContext(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		uid, _ := GetUserID(c.Request.Context())
		sid, _ := GetSessionID(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user": ac.User.ID, "ctx_user": uid, "ctx_session": sid})
	})
	return r
}

func TestRequireFullyAuthenticated(t *testing.T) {
	ac := &service.AuthContext{
		Session: &sessiondomain.Session{ID: "s-1", UserID: "u-1"},
		User:    &userdomain.User{ID: "u-1", Role: userdomain.RoleHospital},
	}
	testCases := []struct {
		name       string
		cookie     string
		authErr    error
		wantStatus int
		wantCalls  int
	}{
		{"no cookie", "", nil, http.StatusUnauthorized, 0},
		{"forged cookie", "s-1", nil, http.StatusUnauthorized, 0},
		{"unknown session", "signed:s-404", nil, http.StatusUnauthorized, 1},
		{"valid session", "signed:s-1", nil, http.StatusOK, 1},
		{"store failure", "signed:s-1", errors.New("db down"), http.StatusInternalServerError, 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			auth := &fakeAuthenticator{sessions: map[string]*service.AuthContext{"s-1": ac}, err: tc.authErr}
			r := newAuthRouter(auth)
			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tc.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}
			if auth.calls != tc.wantCalls {
				t.Errorf("Authenticate calls = %d, want %d", auth.calls, tc.wantCalls)
			}
			switch w.Code {
			case http.StatusUnauthorized:
				if !strings.Contains(w.Body.String(), `"redirect":"/login"`) {
					t.Errorf("401 body missing redirect hint: %s", w.Body.String())
				}
			case http.StatusOK:
				want := `{"ctx_session":"s-1","ctx_user":"u-1","user":"u-1"}`
				if w.Body.String() != want {
					t.Errorf("body = %s, want %s", w.Body.String(), want)
				}
			}
		})
	}
}

func TestSessionCookieHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/login", nil)
	SetSessionCookie(c, "header.payload.sig", time.Now().Add(30*time.Minute), true)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}
	ck := cookies[0]
	if ck.Name != SessionCookieName || ck.Value != "header.payload.sig" || !ck.HttpOnly || !ck.Secure || ck.SameSite != http.SameSiteLaxMode {
		t.Errorf("unexpected cookie: %+v", ck)
	}
	if ck.MaxAge <= 0 {
		t.Errorf("MaxAge = %d, want > 0", ck.MaxAge)
	}

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/logout", nil)
	ClearSessionCookie(c, false)
	cookies = w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("clear cookie = %+v, want expired", cookies)
	}
}
