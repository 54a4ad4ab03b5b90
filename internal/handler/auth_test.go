package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hepuentes/creditappweb/internal/config"
	"github.com/hepuentes/creditappweb/internal/dto"
	"github.com/hepuentes/creditappweb/internal/handler"
	"github.com/hepuentes/creditappweb/internal/middleware"
	"github.com/hepuentes/creditappweb/internal/model"
	"github.com/hepuentes/creditappweb/internal/repository"
	"github.com/hepuentes/creditappweb/internal/repository/memstore"
	"github.com/hepuentes/creditappweb/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ───────────────────────────────────────────────────────────────────

const testSecret = "test_jwt_secret_32_chars_minimum!"

func newTestCfg() *config.Config {
	return &config.Config{
		JWTSecret:          testSecret,
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
	}
}

func seedUser(t *testing.T, repo repository.UsuarioRepository, email, password string, rol model.Rol) *model.Usuario {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.Usuario{
		Nombre: "Test User", Email: email,
		PasswordHash: string(hash), Rol: rol, Activo: true,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func signToken(t *testing.T, userID, rol string, dur time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID, "email": "test@creditapp.co", "rol": rol,
		"exp": time.Now().Add(dur).Unix(), "iat": time.Now().Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func doLoginRequest(t *testing.T, svc service.AuthService, req dto.LoginRequest) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	authH := handler.NewAuthHandler(svc)
	r.POST("/login", authH.Login)

	body, _ := json.Marshal(req)
	w := httptest.NewRecorder()
	httpReq, _ := http.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, httpReq)
	return w
}

func ginTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.JWTAuth(testSecret))
	r.GET("/protected", func(c *gin.Context) {
		claims := middleware.GetClaims(c)
		c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID, "rol": claims.Rol})
	})
	r.GET("/admin", middleware.RequireRole(model.RolAdministrador), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

// ── Tests: Login ──────────────────────────────────────────────────────────────

func TestLogin_Success(t *testing.T) {
	repo := memstore.New().Usuarios()
	seedUser(t, repo, "admin@creditapp.co", "password123", model.RolAdministrador)
	svc := service.NewAuthService(repo, newTestCfg())

	w := doLoginRequest(t, svc, dto.LoginRequest{Email: "Admin@CreditApp.co", Password: "password123"})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, "administrador", resp.User.Rol)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	repo := memstore.New().Usuarios()
	seedUser(t, repo, "cobrador@creditapp.co", "correctpass", model.RolCobrador)
	svc := service.NewAuthService(repo, newTestCfg())

	w := doLoginRequest(t, svc, dto.LoginRequest{Email: "cobrador@creditapp.co", Password: "wrongpass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_UserNotFound(t *testing.T) {
	svc := service.NewAuthService(memstore.New().Usuarios(), newTestCfg())

	w := doLoginRequest(t, svc, dto.LoginRequest{Email: "noexiste@creditapp.co", Password: "anypass123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_InactiveUser(t *testing.T) {
	repo := memstore.New().Usuarios()
	u := seedUser(t, repo, "ido@creditapp.co", "pass12345", model.RolVendedor)
	require.NoError(t, repo.SoftDelete(context.Background(), u.ID))
	svc := service.NewAuthService(repo, newTestCfg())

	w := doLoginRequest(t, svc, dto.LoginRequest{Email: "ido@creditapp.co", Password: "pass12345"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_MalformedRequest_Rejected(t *testing.T) {
	svc := service.NewAuthService(memstore.New().Usuarios(), newTestCfg())

	// 422 Unprocessable Entity from bindAndValidate
	w := doLoginRequest(t, svc, dto.LoginRequest{Email: "no-es-email", Password: "12"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// ── Tests: Refresh ────────────────────────────────────────────────────────────

func TestRefresh_Success(t *testing.T) {
	repo := memstore.New().Usuarios()
	u := seedUser(t, repo, "vendedor@creditapp.co", "pass1234", model.RolVendedor)
	svc := service.NewAuthService(repo, newTestCfg())

	loginW := doLoginRequest(t, svc, dto.LoginRequest{Email: "vendedor@creditapp.co", Password: "pass1234"})
	require.Equal(t, http.StatusOK, loginW.Code)
	var loginResp dto.LoginResponse
	require.NoError(t, json.Unmarshal(loginW.Body.Bytes(), &loginResp))

	resp, err := svc.Refresh(context.Background(), loginResp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, u.ID.String(), resp.User.ID)
}

func TestRefresh_InvalidToken(t *testing.T) {
	svc := service.NewAuthService(memstore.New().Usuarios(), newTestCfg())

	_, err := svc.Refresh(context.Background(), "this.is.garbage")
	assert.Error(t, err)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	repo := memstore.New().Usuarios()
	u := seedUser(t, repo, "cobrador2@creditapp.co", "pass12345", model.RolCobrador)
	svc := service.NewAuthService(repo, newTestCfg())

	expired := signToken(t, u.ID.String(), "cobrador", -1*time.Second)
	_, err := svc.Refresh(context.Background(), expired)
	assert.Error(t, err)
}

func TestRefresh_DeactivatedUser(t *testing.T) {
	repo := memstore.New().Usuarios()
	u := seedUser(t, repo, "baja@creditapp.co", "pass12345", model.RolCobrador)
	svc := service.NewAuthService(repo, newTestCfg())
	tok := signToken(t, u.ID.String(), "cobrador", time.Hour)
	require.NoError(t, repo.SoftDelete(context.Background(), u.ID))

	_, err := svc.Refresh(context.Background(), tok)
	assert.ErrorIs(t, err, service.ErrForbidden)
}

// ── Tests: JWT Middleware ──────────────────────────────────────────────────────

func TestProtectedEndpoint_NoToken(t *testing.T) {
	w := get(ginTestRouter(), "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedEndpoint_ValidToken(t *testing.T) {
	tok := signToken(t, uuid.New().String(), "cobrador", time.Hour)
	w := get(ginTestRouter(), "/protected", tok)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProtectedEndpoint_ExpiredToken(t *testing.T) {
	tok := signToken(t, uuid.New().String(), "cobrador", -time.Second)
	w := get(ginTestRouter(), "/protected", tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedEndpoint_UnknownRole(t *testing.T) {
	tok := signToken(t, uuid.New().String(), "cajero", time.Hour)
	w := get(ginTestRouter(), "/protected", tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedEndpoint_MalformedUserID(t *testing.T) {
	tok := signToken(t, "42", "vendedor", time.Hour)
	w := get(ginTestRouter(), "/protected", tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole_WrongRole(t *testing.T) {
	tok := signToken(t, uuid.New().String(), "vendedor", time.Hour)
	w := get(ginTestRouter(), "/admin", tok)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRole_CorrectRole(t *testing.T) {
	tok := signToken(t, uuid.New().String(), "administrador", time.Hour)
	w := get(ginTestRouter(), "/admin", tok)
	assert.Equal(t, http.StatusOK, w.Code)
}

// ── Tests: User CRUD (service layer) ─────────────────────────────────────────

func TestCrearUsuario_Success(t *testing.T) {
	svc := service.NewAuthService(memstore.New().Usuarios(), newTestCfg())

	resp, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Email: "Nuevo@CreditApp.co", Nombre: "Nuevo User", Password: "securepass",
		Rol: "cobrador",
	})
	require.NoError(t, err)
	assert.Equal(t, "cobrador", resp.Rol)
	assert.Equal(t, "nuevo@creditapp.co", resp.Email)
	assert.NotEmpty(t, resp.ID)
}

func TestCrearUsuario_EmailDuplicado(t *testing.T) {
	repo := memstore.New().Usuarios()
	seedUser(t, repo, "dup@creditapp.co", "pass1234", model.RolVendedor)
	svc := service.NewAuthService(repo, newTestCfg())

	_, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Email: "dup@creditapp.co", Nombre: "Otro", Password: "securepass", Rol: "vendedor",
	})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestListarUsuarios(t *testing.T) {
	repo := memstore.New().Usuarios()
	seedUser(t, repo, "u1@creditapp.co", "pass1234", model.RolCobrador)
	u2 := seedUser(t, repo, "u2@creditapp.co", "pass1234", model.RolVendedor)
	require.NoError(t, repo.SoftDelete(context.Background(), u2.ID))
	svc := service.NewAuthService(repo, newTestCfg())

	users, err := svc.ListarUsuarios(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	users, err = svc.ListarUsuarios(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestDesactivarUsuario(t *testing.T) {
	repo := memstore.New().Usuarios()
	admin := seedUser(t, repo, "admin@creditapp.co", "pass1234", model.RolAdministrador)
	u := seedUser(t, repo, "goodbye@creditapp.co", "pass1234", model.RolCobrador)
	svc := service.NewAuthService(repo, newTestCfg())

	require.NoError(t, svc.DesactivarUsuario(context.Background(), admin.ID, u.ID))
	_, err := repo.FindByEmail(context.Background(), "goodbye@creditapp.co")
	assert.Error(t, err, "soft-deleted user must not be findable")

	assert.ErrorIs(t, svc.DesactivarUsuario(context.Background(), admin.ID, admin.ID), service.ErrValidation)

	require.NoError(t, svc.ReactivarUsuario(context.Background(), u.ID))
	_, err = repo.FindByEmail(context.Background(), "goodbye@creditapp.co")
	assert.NoError(t, err)
}
