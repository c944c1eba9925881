package httpapi

import (
	"time"

	"github.com/dmitrijs2005/userhub/internal/server/models"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type registerRequest struct {
	Username      string `json:"username" validate:"required,min=3,max=100"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required"`
	FullName      string `json:"full_name" validate:"max=255"`
	TermsAccepted bool   `json:"accept_terms" validate:"required"`
}

type loginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type updateProfileRequest struct {
	FullName string `json:"full_name" validate:"max=128"`
	Bio      string `json:"bio" validate:"max=1024"`
}

type updateAccountRequest struct {
	Role       *string `json:"role" validate:"omitempty,oneof=user admin"`
	IsActive   *bool   `json:"is_active"`
	IsVerified *bool   `json:"is_verified"`
}

type userResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name,omitempty"`
	Bio         string     `json:"bio,omitempty"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	IsVerified  bool       `json:"is_verified"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func toUserResponse(u *models.User) *userResponse {
	return &userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		Bio:         u.Bio,
		Role:        u.Role,
		IsActive:    u.IsActive,
		IsVerified:  u.IsVerified,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

type tokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type"`
	ExpiresIn    int64         `json:"expires_in"`
	User         *userResponse `json:"user,omitempty"`
}

type userListResponse struct {
	Users []*userResponse `json:"users"`
	Total int64           `json:"total"`
}

type auditEventResponse struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Success   bool      `json:"success"`
	Detail    string    `json:"detail,omitempty"`
}

func toAuditEventResponse(e *models.AuditEvent) *auditEventResponse {
	return &auditEventResponse{
		ID:        e.ID,
		Timestamp: e.Timestamp,
		UserID:    e.UserID,
		Action:    e.Action,
		IPAddress: e.IPAddress,
		UserAgent: e.UserAgent,
		Success:   e.Success,
		Detail:    e.Detail,
	}
}

type avatarUploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type avatarDownloadResponse struct {
	DownloadURL string `json:"download_url"`
}
