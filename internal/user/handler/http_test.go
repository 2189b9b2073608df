package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"medsupply/internal/identity/service"
	"medsupply/internal/policy/engine"
	"medsupply/internal/server/middleware"
	sessiondomain "medsupply/internal/session/domain"
	"medsupply/internal/user/domain"
)

// mockUsers implements UserReader for tests.
type mockUsers struct {
	users map[string]*domain.User
	err   error
}

func (m *mockUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.users[id], nil
}

// mockPolicy allows what the same-user or staff rule would, or fails with err.
type mockPolicy struct {
	err error
}

func (m *mockPolicy) Allow(ctx context.Context, req engine.AccessRequest) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return req.Caller.Role != domain.RoleHospital || req.Caller.ID == req.TargetUserID, nil
}

var (
	hospital = &domain.User{ID: "u-1", HospitalName: "Addis General Hospital", Email: "addis.general@medsupply.local", PasswordHash: "$2a$secret", Role: domain.RoleHospital}
	other    = &domain.User{ID: "u-2", HospitalName: "Bahir Dar Clinic", Email: "bahirdar.clinic@medsupply.local", PasswordHash: "$2a$secret", Role: domain.RoleHospital}
	support  = &domain.User{ID: "u-3", HospitalName: "MedSupply Support", Email: "support@medsupply.local", PasswordHash: "$2a$secret", Role: domain.RoleSupport}
)

// asCaller stands in for RequireFullyAuthenticated by placing caller on the gin context.
func asCaller(caller *domain.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetAuthContext(c, &service.AuthContext{Session: &sessiondomain.Session{ID: "s", UserID: caller.ID}, User: caller})
		c.Next()
	}
}

func serve(t *testing.T, caller *domain.User, users UserReader, policy engine.Evaluator, path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if caller != nil {
		r.Use(asCaller(caller))
	}
	NewServer(users, policy).Register(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestProfile(t *testing.T) {
	users := &mockUsers{}
	w := serve(t, hospital, users, &mockPolicy{}, "/profile")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"hospital_name":"Addis General Hospital"`) {
		t.Errorf("body = %s", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "secret") {
		t.Errorf("profile leaks password hash: %s", w.Body.String())
	}

	if w := serve(t, nil, users, &mockPolicy{}, "/profile"); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", w.Code)
	}
}

func TestAccountDetails(t *testing.T) {
	users := &mockUsers{users: map[string]*domain.User{"u-1": hospital, "u-2": other, "u-3": support}}
	testCases := []struct {
		name       string
		caller     *domain.User
		users      UserReader
		policy     engine.Evaluator
		path       string
		wantStatus int
	}{
		{"missing user_id", hospital, users, &mockPolicy{}, "/internal/api/account/details", http.StatusBadRequest},
		{"self", hospital, users, &mockPolicy{}, "/internal/api/account/details?user_id=u-1", http.StatusOK},
		{"other hospital", hospital, users, &mockPolicy{}, "/internal/api/account/details?user_id=u-2", http.StatusForbidden},
		{"support reads other", support, users, &mockPolicy{}, "/internal/api/account/details?user_id=u-2", http.StatusOK},
		{"support reads missing", support, users, &mockPolicy{}, "/internal/api/account/details?user_id=u-404", http.StatusNotFound},
		{"policy error", support, users, &mockPolicy{err: errors.New("eval")}, "/internal/api/account/details?user_id=u-2", http.StatusInternalServerError},
		{"store error", support, &mockUsers{err: errors.New("db down")}, &mockPolicy{}, "/internal/api/account/details?user_id=u-2", http.StatusInternalServerError},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(t, tc.caller, tc.users, tc.policy, tc.path)
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}
			if strings.Contains(w.Body.String(), "secret") || strings.Contains(w.Body.String(), "password") {
				t.Errorf("response leaks credentials: %s", w.Body.String())
			}
		})
	}
}
