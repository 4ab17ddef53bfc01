package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"rps_backend/internal/common"
	"rps_backend/internal/middleware"
	"rps_backend/internal/permission"
	"rps_backend/internal/platform/database/dbtest"
	"rps_backend/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(ctx context.Context, idToken string) (*user.Claims, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.Claims), args.Error(1)
}

type HandlerSuite struct {
	suite.Suite
	repo     user.Repository
	verifier *mockVerifier
	router   *gin.Engine
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db := dbtest.New(s.T(), &user.User{})
	s.repo = user.NewGORMRepository(db)
	svc := user.NewService(s.repo, zap.NewNop())
	s.verifier = new(mockVerifier)
	sessions := NewSessionManager(testConfig(), zap.NewNop())

	s.router = gin.New()
	s.router.Use(sessions.Middleware(), middleware.LoadCurrentUser(sessions, svc, zap.NewNop()))
	NewHandler(svc, s.verifier, sessions, zap.NewNop()).RegisterRoutes(s.router.Group("/api"))
}

func (s *HandlerSuite) claims() *user.Claims {
	return &user.Claims{
		Subject:    "sub-1",
		Email:      "ada@example.com",
		Name:       "Ada Lovelace",
		Picture:    "https://example.com/ada.png",
		GivenName:  "Ada",
		FamilyName: "Lovelace",
		Locale:     "en",
	}
}

func (s *HandlerSuite) login(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) cookieFrom(w *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == CookieName {
			return ck
		}
	}
	return nil
}

func (s *HandlerSuite) me(ck *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	if ck != nil {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) TestLogin_CreatesUserAndSession() {
	s.verifier.On("Verify", mock.Anything, "good-token").Return(s.claims(), nil)

	w := s.login(`{"id_token":"good-token"}`)

	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	ck := s.cookieFrom(w)
	s.Require().NotNil(ck, "login must set the session cookie")

	stored, err := s.repo.FindByID(context.Background(), "sub-1")
	s.Require().NoError(err)
	s.Equal("ada@example.com", stored.Email)
	s.Empty(stored.Permissions)

	w = s.me(ck)
	s.Require().Equal(http.StatusOK, w.Code)
	var resp struct {
		Data user.User `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("sub-1", resp.Data.ID)
	s.Equal("Ada", resp.Data.GivenName)
}

func (s *HandlerSuite) TestLogin_RefreshesProfileKeepsPermissions() {
	ctx := context.Background()
	_, err := s.repo.Upsert(ctx, &user.NewUser{ID: "sub-1", Email: "old@example.com", Name: "Old",
		Picture: "p", GivenName: "Old", FamilyName: "Name", Locale: "fr"})
	s.Require().NoError(err)
	_, err = s.repo.SetPermissions(ctx, "sub-1", permission.Unique(permission.ManageUsers))
	s.Require().NoError(err)

	s.verifier.On("Verify", mock.Anything, "good-token").Return(s.claims(), nil)
	w := s.login(`{"id_token":"good-token"}`)
	s.Require().Equal(http.StatusOK, w.Code)

	stored, err := s.repo.FindByID(ctx, "sub-1")
	s.Require().NoError(err)
	s.Equal("ada@example.com", stored.Email)
	s.Equal("en", stored.Locale)
	s.Equal(permission.Set{permission.ManageUsers}, stored.Permissions)
}

func (s *HandlerSuite) TestLogin_MissingClaims() {
	c := s.claims()
	c.Locale = ""
	c.Picture = ""
	s.verifier.On("Verify", mock.Anything, "thin-token").Return(c, nil)

	w := s.login(`{"id_token":"thin-token"}`)

	s.Equal(http.StatusBadRequest, w.Code)
	s.Nil(s.cookieFrom(w))
	var apiErr common.APIError
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &apiErr))
	s.Equal(common.ErrMissingUserFields.Code, apiErr.Code)
	s.ElementsMatch([]interface{}{"picture", "locale"}, apiErr.Details)

	_, err := s.repo.FindByID(context.Background(), "sub-1")
	s.ErrorIs(err, common.ErrNotFound)
}

func (s *HandlerSuite) TestLogin_RejectedToken() {
	s.verifier.On("Verify", mock.Anything, "bad-token").Return(nil, common.ErrUnauthorized)

	w := s.login(`{"id_token":"bad-token"}`)

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Nil(s.cookieFrom(w))
}

func (s *HandlerSuite) TestLogin_MissingToken() {
	w := s.login(`{}`)

	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.verifier.AssertNotCalled(s.T(), "Verify", mock.Anything, mock.Anything)
}

func (s *HandlerSuite) TestMe_Anonymous() {
	w := s.me(nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerSuite) TestMe_DeletedUserIsAnonymous() {
	s.verifier.On("Verify", mock.Anything, "good-token").Return(s.claims(), nil)
	ck := s.cookieFrom(s.login(`{"id_token":"good-token"}`))
	s.Require().NotNil(ck)

	_, err := s.repo.Delete(context.Background(), "sub-1")
	s.Require().NoError(err)

	w := s.me(ck)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerSuite) TestLogout() {
	s.verifier.On("Verify", mock.Anything, "good-token").Return(s.claims(), nil)
	ck := s.cookieFrom(s.login(`{"id_token":"good-token"}`))
	s.Require().NotNil(ck)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(ck)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusNoContent, w.Code)
	cleared := s.cookieFrom(w)
	s.Require().NotNil(cleared)
	s.True(cleared.MaxAge < 0)
}
