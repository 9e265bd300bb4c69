package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"auth-service/internal/config"
	"auth-service/internal/handlers"
	"auth-service/internal/models"
	"auth-service/internal/repository"
	"auth-service/internal/server"
	"auth-service/internal/services"
	"auth-service/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// stubAuthService lets each test pin the exact service outcome.
type stubAuthService struct {
	signup         func(ctx context.Context, req *models.SignupRequest) (*services.SignupResult, error)
	login          func(ctx context.Context, email, password string) (*services.LoginResult, error)
	verifyEmail    func(ctx context.Context, userID, token string) (bool, error)
	logout         func(ctx context.Context, refreshToken string) error
	refreshTokens  func(ctx context.Context, refreshToken string) (*models.AuthTokens, error)
	forgotPassword func(ctx context.Context, email string) (string, error)
	resetPassword  func(ctx context.Context, userID, token, password, confirmPassword string) (string, error)
	getProfile     func(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error)
	updateProfile  func(ctx context.Context, actor *models.User, userID string, req *models.UpdateProfileRequest, imagePath string) (*models.Profile, error)
	remove         func(ctx context.Context, actor *models.User, userID string) error
}

func (s *stubAuthService) Signup(ctx context.Context, req *models.SignupRequest) (*services.SignupResult, error) {
	return s.signup(ctx, req)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*services.LoginResult, error) {
	return s.login(ctx, email, password)
}

func (s *stubAuthService) VerifyEmail(ctx context.Context, userID, token string) (bool, error) {
	return s.verifyEmail(ctx, userID, token)
}

func (s *stubAuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.logout(ctx, refreshToken)
}

func (s *stubAuthService) RefreshTokens(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	return s.refreshTokens(ctx, refreshToken)
}

func (s *stubAuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	return s.forgotPassword(ctx, email)
}

func (s *stubAuthService) ResetPassword(ctx context.Context, userID, token, password, confirmPassword string) (string, error) {
	return s.resetPassword(ctx, userID, token, password, confirmPassword)
}

func (s *stubAuthService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	return s.getProfile(ctx, userID)
}

func (s *stubAuthService) UpdateProfile(ctx context.Context, actor *models.User, userID string, req *models.UpdateProfileRequest, imagePath string) (*models.Profile, error) {
	return s.updateProfile(ctx, actor, userID, req, imagePath)
}

func (s *stubAuthService) Remove(ctx context.Context, actor *models.User, userID string) error {
	return s.remove(ctx, actor, userID)
}

// stubUserRepo backs the auth middleware's user lookup.
type stubUserRepo struct {
	byID map[primitive.ObjectID]*models.User
}

func (r *stubUserRepo) Create(context.Context, *models.User) error { return nil }

func (r *stubUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(context.Context, string) (*models.User, error) {
	return nil, repository.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmailFold(context.Context, string) (*models.User, error) {
	return nil, repository.ErrUserNotFound
}

func (r *stubUserRepo) Update(context.Context, *models.User) error       { return nil }
func (r *stubUserRepo) Delete(context.Context, primitive.ObjectID) error { return nil }

type testApp struct {
	app   *fiber.App
	svc   *stubAuthService
	users *stubUserRepo
	tm    *utils.TokenManager
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithUploadDir(t, t.TempDir())
}

func newTestAppWithUploadDir(t *testing.T, uploadDir string) *testApp {
	t.Helper()
	svc := &stubAuthService{}
	users := &stubUserRepo{byID: make(map[primitive.ObjectID]*models.User)}
	tm := utils.NewTokenManager("access-secret", "refresh-secret", "auth-service", time.Minute, time.Hour, time.Minute)

	cfg := &config.Config{App: config.AppCfg{
		Env:       "test",
		ClientURL: "http://client.test",
		UploadDir: uploadDir,
	}}
	h := handlers.NewHandler(svc, cfg.App.UploadDir, cfg.IsProduction(), zap.NewNop())
	app := server.New(cfg, h, tm, users, zap.NewNop())
	return &testApp{app: app, svc: svc, users: users, tm: tm}
}

// authedUser registers a user in the repo and returns a bearer token for it.
func (ta *testApp) authedUser(t *testing.T, role string) (*models.User, string) {
	t.Helper()
	u := &models.User{
		ID:     primitive.NewObjectID(),
		Name:   "Test User",
		Email:  "a@x.com",
		Role:   role,
		Status: models.StatusActive,
	}
	ta.users.byID[u.ID] = u
	token, err := ta.tm.SignAccessToken(u.ID.Hex())
	require.NoError(t, err)
	return u, token
}

func jsonRequest(method, target string, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

type envelope struct {
	Data    map[string]interface{} `json:"data"`
	Success bool                   `json:"success"`
	Error   bool                   `json:"error"`
	Message string                 `json:"message"`
	Status  int                    `json:"status"`
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(b, &env))
	return env
}

func cookieByName(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSignupReturns201WithCredentials(t *testing.T) {
	ta := newTestApp(t)
	ta.svc.signup = func(_ context.Context, req *models.SignupRequest) (*services.SignupResult, error) {
		require.Equal(t, "alice@x.com", req.Email)
		return &services.SignupResult{
			Tokens:          models.AuthTokens{AccessToken: "acc", RefreshToken: "ref"},
			VerifyEmailLink: "http://client.test/verify-email.html?id=1&token=ref",
		}, nil
	}

	resp, err := ta.app.Test(jsonRequest(fiber.MethodPost, "/api/v1/auth/signup",
		`{"name":"Alice","email":"alice@x.com","password":"Secret1!","confirmPassword":"Secret1!"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	require.True(t, env.Success)
	require.False(t, env.Error)
	require.Equal(t, fiber.StatusCreated, env.Status)
	require.Contains(t, env.Message, "alice@x.com")

	user := env.Data["user"].(map[string]interface{})
	require.Equal(t, "acc", user["accessToken"])
	require.Equal(t, "ref", user["refreshToken"])
	require.Contains(t, user["verifyEmailLink"], "verify-email.html")
}

func TestSignupDuplicateEmailReturns422(t *testing.T) {
	ta := newTestApp(t)
	ta.svc.signup = func(context.Context, *models.SignupRequest) (*services.SignupResult, error) {
		return nil, services.ErrEmailTaken
	}

	resp, err := ta.app.Test(jsonRequest(fiber.MethodPost, "/api/v1/auth/signup",
		`{"name":"Alice","email":"alice@x.com","password":"Secret1!","confirmPassword":"Secret1!"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	require.True(t, env.Error)
	require.Contains(t, env.Message, "alice@x.com already exists")
}

func TestSignupValidationFailureReturns422(t *testing.T) {
	ta := newTestApp(t)
	// Service must not be reached.
	ta.svc.signup = func(context.Context, *models.SignupRequest) (*services.SignupResult, error) {
		t.Fatal("service reached with invalid payload")
		return nil, nil
	}

	resp, err := ta.app.Test(jsonRequest(fiber.MethodPost, "/api/v1/auth/signup",
		`{"name":"Alice","password":"Secret1!","confirmPassword":"Secret1!"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestLoginSetsCookiesAndReturnsUser(t *testing.T) {
	ta := newTestApp(t)
	uid := primitive.NewObjectID()
	ta.svc.login = func(_ context.Context, email, password string) (*services.LoginResult, error) {
		require.Equal(t, "a@x.com", email)
		require.Equal(t, "Secret1!", password)
		return &services.LoginResult{
			User:     &models.User{ID: uid, Email: email, Name: "Alice", Role: models.RoleUser, Status: models.StatusActive, IsVerified: true},
			Tokens:   models.AuthTokens{AccessToken: "acc", RefreshToken: "ref"},
			Verified: true,
		}, nil
	}

	resp, err := ta.app.Test(jsonRequest(fiber.MethodPost, "/api/v1/auth/login",
		`{"email":"a@x.com","password":"Secret1!"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	access := cookieByName(resp, "accessToken")
	require.NotNil(t, access)
	require.Equal(t, "acc", access.Value)
	require.True(t, access.HttpOnly)
	require.Equal(t, 24*60*60, access.MaxAge)

	refresh := cookieByName(resp, "refreshToken")
	require.NotNil(t, refresh)
	require.Equal(t, "ref", refresh.Value)
	require.Equal(t, 7*24*60*60, refresh.MaxAge)

	env := decodeEnvelope(t, resp)
	require.True(t, env.Success)
	user := env.Data["user"].(map[string]interface{})
	require.Equal(t, "a@x.com", user["email"])
	require.Equal(t, "acc", user["accessToken"])
}

func TestLoginUnknownEmailReturns404(t *testing.T) {
	ta := newTestApp(t)
	ta.svc.login = func(context.Context, string, string) (*services.LoginResult, error) {
		return nil, services.ErrUserNotFound
	}

	resp, err := ta.app.Test(jsonRequest(fiber.MethodPost, "/api/v1/auth/login",
		`{"email":"a@x.com","password":"Secret1!"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	require.Equal(t, "Auth Failed (Invalid Credentials)", env.Message)
}

func TestLoginWrongPasswordReturns401(t *testing.T) {
	ta := newTestApp(t)
	ta.svc.login = func(context.Context, string, string) (*services.LoginResult, error) {
		return nil, services.ErrInvalidCredentials
	}

	resp, err := ta.app.Test(jsonRequest(fiber.MethodPost, "/api/v1/auth/login",
		`{"email":"a@x.com","password":"wrong"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLoginUnverifiedReturns401WithCredentials(t *testing.T) {
	ta := newTestApp(t)
	uid := primitive.NewObjectID()
	ta.svc.login = func(_ context.Context, email, _ string) (*services.LoginResult, error) {
		return &services.LoginResult{
			User:            &models.User{ID: uid, Email: email, Name: "Alice"},
			Tokens:          models.AuthTokens{AccessToken: "acc", RefreshToken: "ref"},
			Verified:        false,
			VerifyEmailLink: "http://client.test/verify-email.html?id=" + uid.Hex() + "&token=ref",
		}, nil
	}

	resp, err := ta.app.Test(jsonRequest(fiber.MethodPost, "/api/v1/auth/login",
		`{"email":"a@x.com","password":"Secret1!"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// The failure envelope still carries a usable credential pair.
	env := decodeEnvelope(t, resp)
	require.False(t, env.Success)
	require.True(t, env.Error)
	require.Contains(t, env.Message, "has not been verified")
	require.Equal(t, "acc", env.Data["accessToken"])
	require.Equal(t, "ref", env.Data["refreshToken"])
	require.Contains(t, env.Data["verifyEmailLink"], uid.Hex())

	// No auth cookies on a failed login.
	require.Nil(t, cookieByName(resp, "accessToken"))
}

func TestVerifyEmailMessages(t *testing.T) {
	ta := newTestApp(t)
	uid := primitive.NewObjectID().Hex()

	ta.svc.verifyEmail = func(_ context.Context, userID, token string) (bool, error) {
		require.Equal(t, uid, userID)
		require.Equal(t, "tok", token)
		return false, nil
	}
	resp, err := ta.app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/auth/verify-email/"+uid+"/tok", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, decodeEnvelope(t, resp).Message, "successfully verified")

	ta.svc.verifyEmail = func(context.Context, string, string) (bool, error) { return true, nil }
	resp, err = ta.app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/auth/verify-email/"+uid+"/tok", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, decodeEnvelope(t, resp).Message, "already been verified")

	ta.svc.verifyEmail = func(context.Context, string, string) (bool, error) {
		return false, services.ErrTokenNotFound
	}
	resp, err = ta.app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/auth/verify-email/"+uid+"/tok", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Contains(t, decodeEnvelope(t, resp).Message, "invalid or has expired")
}

func TestLogoutClearsCookies(t *testing.T) {
	ta := newTestApp(t)
	ta.svc.logout = func(_ context.Context, refreshToken string) error {
		require.Equal(t, "ref", refreshToken)
		return nil
	}

	resp, err := ta.app.Test(jsonRequest(fiber.MethodPost, "/api/v1/auth/logout", `{"refreshToken":"ref"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	access := cookieByName(resp, "accessToken")
	require.NotNil(t, access)
	require.Empty(t, access.Value)
	require.LessOrEqual(t, access.MaxAge, 0)

	require.Contains(t, decodeEnvelope(t, resp).Message, "logged out")
}

func TestLogoutBadRequests(t *testing.T) {
	ta := newTestApp(t)
	ta.svc.logout = func(context.Context, string) error { return services.ErrTokenNotFound }

	resp, err := ta.app.Test(jsonRequest(fiber.MethodPost, "/api/v1/auth/logout", `{"refreshToken":"missing"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// Missing body field never reaches the service.
	ta.svc.logout = func(context.Context, string) error {
		t.Fatal("service reached without refresh token")
		return nil
	}
	resp, err = ta.app.Test(jsonRequest(fiber.MethodPost, "/api/v1/auth/logout", `{}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRefreshTokenReturnsNewPair(t *testing.T) {
	ta := newTestApp(t)
	ta.svc.refreshTokens = func(_ context.Context, refreshToken string) (*models.AuthTokens, error) {
		require.Equal(t, "old", refreshToken)
		return &models.AuthTokens{AccessToken: "acc2", RefreshToken: "ref2"}, nil
	}

	resp, err := ta.app.Test(jsonRequest(fiber.MethodPost, "/api/v1/auth/refresh-token", `{"refreshToken":"old"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	user := env.Data["user"].(map[string]interface{})
	require.Equal(t, "acc2", user["accessToken"])
	require.Equal(t, "ref2", user["refreshToken"])

	require.Equal(t, "acc2", cookieByName(resp, "accessToken").Value)
	require.Equal(t, "ref2", cookieByName(resp, "refreshToken").Value)
}

func TestForgotPasswordDisclosesUnknownAccount(t *testing.T) {
	ta := newTestApp(t)
	ta.svc.forgotPassword = func(context.Context, string) (string, error) {
		return "", services.ErrEmailNotRegistered
	}

	resp, err := ta.app.Test(jsonRequest(fiber.MethodPost, "/api/v1/auth/forgot-password", `{"email":"nobody@x.com"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, decodeEnvelope(t, resp).Message, "nobody@x.com is not associated with any account")
}

func TestForgotPasswordReturnsResetLink(t *testing.T) {
	ta := newTestApp(t)
	link := "http://client.test/reset-password.html?id=1&token=t"
	ta.svc.forgotPassword = func(_ context.Context, email string) (string, error) {
		require.Equal(t, "a@x.com", email)
		return link, nil
	}

	resp, err := ta.app.Test(jsonRequest(fiber.MethodPost, "/api/v1/auth/forgot-password", `{"email":"a@x.com"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	user := env.Data["user"].(map[string]interface{})
	require.Equal(t, link, user["resetPasswordToken"])
}

func TestResetPasswordReturnsLoginLink(t *testing.T) {
	ta := newTestApp(t)
	uid := primitive.NewObjectID().Hex()
	ta.svc.resetPassword = func(_ context.Context, userID, token, password, confirmPassword string) (string, error) {
		require.Equal(t, uid, userID)
		require.Equal(t, "tok", token)
		require.Equal(t, "NewSecret1!", password)
		return "http://client.test/login.html", nil
	}

	resp, err := ta.app.Test(jsonRequest(fiber.MethodPost, "/api/v1/auth/reset-password/"+uid+"/tok",
		`{"password":"NewSecret1!","confirmPassword":"NewSecret1!"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	user := env.Data["user"].(map[string]interface{})
	require.Equal(t, "http://client.test/login.html", user["loginLink"])
}

func TestResetPasswordInvalidTokenReturns401(t *testing.T) {
	ta := newTestApp(t)
	ta.svc.resetPassword = func(context.Context, string, string, string, string) (string, error) {
		return "", services.ErrTokenNotFound
	}

	resp, err := ta.app.Test(jsonRequest(fiber.MethodPost, "/api/v1/auth/reset-password/abc/tok",
		`{"password":"NewSecret1!","confirmPassword":"NewSecret1!"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, decodeEnvelope(t, resp).Message, "invalid or has expired")
}

func TestProfileRequiresAuth(t *testing.T) {
	ta := newTestApp(t)

	resp, err := ta.app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/auth/profile", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Auth Failed", decodeEnvelope(t, resp).Message)
}

func TestProfileWithBearerToken(t *testing.T) {
	ta := newTestApp(t)
	u, token := ta.authedUser(t, models.RoleUser)
	ta.svc.getProfile = func(_ context.Context, userID primitive.ObjectID) (*models.Profile, error) {
		require.Equal(t, u.ID, userID)
		return u.ToProfile(), nil
	}

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/auth/profile", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	require.Contains(t, env.Message, "user profile")
	user := env.Data["user"].(map[string]interface{})
	require.Equal(t, "a@x.com", user["email"])
}

func TestProfileWithCookieFallback(t *testing.T) {
	ta := newTestApp(t)
	u, token := ta.authedUser(t, models.RoleUser)
	ta.svc.getProfile = func(context.Context, primitive.ObjectID) (*models.Profile, error) {
		return u.ToProfile(), nil
	}

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/auth/profile", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestProfileRejectsGarbageToken(t *testing.T) {
	ta := newTestApp(t)

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/auth/profile", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer not-a-jwt")
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestUpdateProfileForbiddenReturns403(t *testing.T) {
	ta := newTestApp(t)
	_, token := ta.authedUser(t, models.RoleUser)
	ta.svc.updateProfile = func(context.Context, *models.User, string, *models.UpdateProfileRequest, string) (*models.Profile, error) {
		return nil, services.ErrForbidden
	}

	req := jsonRequest(fiber.MethodPatch, "/api/v1/auth/update/"+primitive.NewObjectID().Hex(), `{"name":"New"}`)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Equal(t, "Auth Failed (Unauthorized)", decodeEnvelope(t, resp).Message)
}

func TestUpdateProfileRejectsMalformedID(t *testing.T) {
	ta := newTestApp(t)
	_, token := ta.authedUser(t, models.RoleUser)
	ta.svc.updateProfile = func(context.Context, *models.User, string, *models.UpdateProfileRequest, string) (*models.Profile, error) {
		t.Fatal("service reached with malformed user id")
		return nil, nil
	}

	req := jsonRequest(fiber.MethodPatch, "/api/v1/auth/update/not-an-id", `{"name":"New"}`)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestUpdateProfileReturnsUpdatedUser(t *testing.T) {
	ta := newTestApp(t)
	u, token := ta.authedUser(t, models.RoleUser)
	ta.svc.updateProfile = func(_ context.Context, actor *models.User, userID string, req *models.UpdateProfileRequest, imagePath string) (*models.Profile, error) {
		require.Equal(t, u.ID, actor.ID)
		require.Equal(t, u.ID.Hex(), userID)
		require.Equal(t, "Renamed", req.Name)
		require.Empty(t, imagePath)
		p := u.ToProfile()
		p.Name = req.Name
		return p, nil
	}

	req := jsonRequest(fiber.MethodPatch, "/api/v1/auth/update/"+u.ID.Hex(), `{"name":"Renamed"}`)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	require.Contains(t, env.Message, u.ID.Hex())
	user := env.Data["user"].(map[string]interface{})
	require.Equal(t, "Renamed", user["name"])
}

func TestUpdateProfileUploadCreatesMissingDir(t *testing.T) {
	// The upload dir does not exist on a fresh deployment; the handler has to
	// create it before storing the file.
	dir := filepath.Join(t.TempDir(), "static", "uploads", "users")
	ta := newTestAppWithUploadDir(t, dir)
	u, token := ta.authedUser(t, models.RoleUser)

	var gotImage string
	ta.svc.updateProfile = func(_ context.Context, _ *models.User, _ string, req *models.UpdateProfileRequest, imagePath string) (*models.Profile, error) {
		gotImage = imagePath
		p := u.ToProfile()
		p.Name = req.Name
		p.ProfileImage = imagePath
		return p, nil
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("profileImage", "avatar.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, err)
	require.NoError(t, w.WriteField("name", "Renamed"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(fiber.MethodPatch, "/api/v1/auth/update/"+u.ID.Hex(), &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.True(t, strings.HasPrefix(gotImage, "/static/uploads/users/"))
	require.True(t, strings.HasSuffix(gotImage, ".png"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestUpdateProfileRejectsUnknownImageType(t *testing.T) {
	ta := newTestApp(t)
	u, token := ta.authedUser(t, models.RoleUser)
	ta.svc.updateProfile = func(context.Context, *models.User, string, *models.UpdateProfileRequest, string) (*models.Profile, error) {
		t.Fatal("service reached with rejected upload")
		return nil, nil
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("profileImage", "payload.svg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("<svg/>"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(fiber.MethodPatch, "/api/v1/auth/update/"+u.ID.Hex(), &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	require.Contains(t, decodeEnvelope(t, resp).Message, "images are allowed")
}

func TestRemoveUser(t *testing.T) {
	ta := newTestApp(t)
	u, token := ta.authedUser(t, models.RoleUser)
	ta.svc.remove = func(_ context.Context, actor *models.User, userID string) error {
		require.Equal(t, u.ID, actor.ID)
		require.Equal(t, u.ID.Hex(), userID)
		return nil
	}

	req := httptest.NewRequest(fiber.MethodDelete, "/api/v1/auth/remove/"+u.ID.Hex(), nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, decodeEnvelope(t, resp).Message, "Successfully deleted user")
}

func TestUnexpectedServiceErrorCollapsesTo500(t *testing.T) {
	ta := newTestApp(t)
	ta.svc.login = func(context.Context, string, string) (*services.LoginResult, error) {
		return nil, errors.New("mongo: connection reset")
	}

	resp, err := ta.app.Test(jsonRequest(fiber.MethodPost, "/api/v1/auth/login",
		`{"email":"a@x.com","password":"Secret1!"}`))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	// The cause never leaks into the response body.
	env := decodeEnvelope(t, resp)
	require.Equal(t, "Internal Server Error", env.Message)
	require.True(t, env.Error)
}

func TestHealthEndpoint(t *testing.T) {
	ta := newTestApp(t)
	resp, err := ta.app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
