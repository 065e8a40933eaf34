package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/citizenly/citizenly/internal/middleware"
	"github.com/citizenly/citizenly/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Login はメールアドレスとパスワードを検証し、セッション資格情報を発行する。
	Login(ctx context.Context, email, password string) (string, *model.User, error)
	// GetCurrentUser はセッションの主体IDからユーザーを解決する。
	GetCurrentUser(ctx context.Context, subjectID string) (*model.User, error)
}

// AuthHandlerConfig は認証ハンドラーのCookie設定。
type AuthHandlerConfig struct {
	Gate            middleware.GateConfig
	SessionLifetime time.Duration
}

// AuthHandler は認証のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{service: service, config: config}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	Name               string `json:"name"`
	Role               string `json:"role"`
	VerificationStatus string `json:"verification_status"`
	HomeDistrict       string `json:"home_district,omitempty"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		Role:               string(u.Role),
		VerificationStatus: string(u.VerificationStatus),
		HomeDistrict:       u.HomeDistrict,
	}
}

// Login はログインを処理し、セッションCookieを設定する。
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleServiceError(w, model.NewInvalidRequestError("リクエストボディの解析に失敗しました。"))
		return
	}

	credential, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	middleware.SetSessionCookie(w, h.config.Gate, credential, h.config.SessionLifetime)
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": toUserResponse(user)})
}

// Logout はセッションCookieを破棄する。
// 資格情報の有効性に関わらず常に成功する。
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w, h.config.Gate)
	w.WriteHeader(http.StatusNoContent)
}

// Me は現在のセッションのユーザー情報を返す。
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	subjectID, err := middleware.SubjectIDFromContext(r.Context())
	if err != nil {
		handleServiceError(w, model.NewUnauthorizedError())
		return
	}

	user, err := h.service.GetCurrentUser(r.Context(), subjectID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": toUserResponse(user)})
}
