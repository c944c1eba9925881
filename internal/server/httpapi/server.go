// Package httpapi exposes the REST surface: registration and login, token
// refresh and logout, profile and avatar endpoints, the admin user/audit
// API, and the health, readiness, and metrics probes.
package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/userhub/internal/common"
	"github.com/dmitrijs2005/userhub/internal/logging"
	"github.com/dmitrijs2005/userhub/internal/server/config"
	"github.com/dmitrijs2005/userhub/internal/server/models"
	"github.com/dmitrijs2005/userhub/internal/server/monitoring"
	"github.com/dmitrijs2005/userhub/internal/server/ratelimit"
	"github.com/dmitrijs2005/userhub/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// UserProvider is the slice of UserService the handlers need.
type UserProvider interface {
	Register(ctx context.Context, params services.RegisterParams, meta services.ClientMeta) (*models.User, error)
	Authenticate(ctx context.Context, login, password string, meta services.ClientMeta) (*services.AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string, meta services.ClientMeta) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	UpdateProfile(ctx context.Context, id, fullName, bio string) (*models.User, error)
	UpdateAccount(ctx context.Context, id string, update services.AccountUpdate, meta services.ClientMeta) (*models.User, error)
	Deactivate(ctx context.Context, id string, meta services.ClientMeta) error
	ListAuditEvents(ctx context.Context, userID string, limit int) ([]*models.AuditEvent, error)
	AccessTokenTTL() time.Duration
}

// AvatarProvider is the slice of AvatarService the handlers need.
type AvatarProvider interface {
	CreateUploadURL(ctx context.Context, userID string) (string, error)
	GetDownloadURL(ctx context.Context, userID string) (string, error)
}

type Server struct {
	router       chi.Router
	logger       logging.Logger
	metrics      *monitoring.Metrics
	loginLimiter *ratelimit.KeyedLimiter
	db           *sql.DB
	users        UserProvider
	avatars      AvatarProvider
	jwtSecret    []byte
	lockout      time.Duration
}

func NewServer(cfg *config.Config, logger logging.Logger, metrics *monitoring.Metrics,
	db *sql.DB, users UserProvider, avatars AvatarProvider) *Server {

	s := &Server{
		logger:       logger.With("module", "httpapi"),
		metrics:      metrics,
		loginLimiter: ratelimit.NewKeyedLimiter(float64(cfg.LoginRateRPS), cfg.LoginRateBurst),
		db:           db,
		users:        users,
		avatars:      avatars,
		jwtSecret:    []byte(cfg.SecretKey),
		lockout:      cfg.LockoutDuration,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.With(s.throttleLogin).Post("/login", s.handleLogin)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/logout", s.handleLogout)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/users/me", s.handleMe)
		r.Patch("/users/me", s.handleUpdateMe)
		r.Post("/users/me/avatar", s.handleCreateAvatarURL)
		r.Get("/users/me/avatar", s.handleGetAvatarURL)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/users", s.handleListUsers)
			r.Get("/users/{id}", s.handleGetUser)
			r.Patch("/users/{id}", s.handleUpdateUser)
			r.Delete("/users/{id}", s.handleDeleteUser)
			r.Get("/audit/events", s.handleListAuditEvents)
		})
	})

	return r
}

func (s *Server) meta(r *http.Request) services.ClientMeta {
	return services.ClientMeta{IP: clientIP(r), UserAgent: r.UserAgent()}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error(r.Context(), "readiness check failed", "error", err.Error())
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(s.metrics.Render()))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := s.users.Register(r.Context(), services.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	}, s.meta(r))
	if err != nil {
		writeError(w, err)
		return
	}

	s.metrics.RecordRegistration()
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.users.Authenticate(r.Context(), req.Login, req.Password, s.meta(r))
	if err != nil {
		s.metrics.RecordLogin(false)
		if errors.Is(err, common.ErrAccountLocked) {
			s.metrics.RecordAccountLocked()
			w.Header().Set("Retry-After", strconv.Itoa(int(s.lockout.Seconds())))
		}
		writeError(w, err)
		return
	}

	s.metrics.RecordLogin(true)
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(res.ExpiresIn.Seconds()),
		User:         toUserResponse(res.User),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	pair, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.users.AccessTokenTTL().Seconds()),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := s.users.Logout(r.Context(), req.RefreshToken, s.meta(r)); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	user, err := s.users.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req updateProfileRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := s.users.UpdateProfile(r.Context(), userID, req.FullName, req.Bio)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleCreateAvatarURL(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	url, err := s.avatars.CreateUploadURL(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, avatarUploadResponse{UploadURL: url})
}

func (s *Server) handleGetAvatarURL(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	url, err := s.avatars.GetDownloadURL(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, avatarDownloadResponse{DownloadURL: url})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 50)
	if limit > 200 {
		limit = 200
	}

	users, total, err := s.users.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := userListResponse{Users: make([]*userResponse, 0, len(users)), Total: total}
	for _, u := range users {
		resp.Users = append(resp.Users, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := s.users.UpdateAccount(r.Context(), chi.URLParam(r, "id"), services.AccountUpdate{
		Role:       req.Role,
		IsActive:   req.IsActive,
		IsVerified: req.IsVerified,
	}, s.meta(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Deactivate(r.Context(), chi.URLParam(r, "id"), s.meta(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAuditEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	if limit > 1000 {
		limit = 1000
	}

	events, err := s.users.ListAuditEvents(r.Context(), r.URL.Query().Get("user_id"), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]*auditEventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, toAuditEventResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
