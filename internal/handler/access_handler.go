package handler

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/citizenly/citizenly/internal/middleware"
	"github.com/citizenly/citizenly/internal/model"
)

// accessCookieMaxAge はアクセスゲートCookieの有効期間（30日）。
const accessCookieMaxAge = 30 * 24 * time.Hour

// AccessHandler はアプリ全体のアクセスゲートのHTTPハンドラー。
// 限定公開期間中、正しいアクセスコードを提示したブラウザにのみ
// app-access Cookieを付与する。
type AccessHandler struct {
	accessCode string
	gate       middleware.GateConfig
}

// NewAccessHandler はAccessHandlerを生成する。
// accessCodeが空の場合、Grantは常に拒否する。
func NewAccessHandler(accessCode string, gate middleware.GateConfig) *AccessHandler {
	return &AccessHandler{accessCode: accessCode, gate: gate}
}

// grantRequest はアクセスコード提示リクエストのボディ。
type grantRequest struct {
	Code string `json:"code"`
}

// Grant はアクセスコードを検証し、app-access Cookieを設定する。
// POST /api/access
func (h *AccessHandler) Grant(w http.ResponseWriter, r *http.Request) {
	var req grantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleServiceError(w, model.NewInvalidRequestError("リクエストボディの解析に失敗しました。"))
		return
	}

	if h.accessCode == "" ||
		subtle.ConstantTimeCompare([]byte(req.Code), []byte(h.accessCode)) != 1 {
		handleServiceError(w, model.NewForbiddenError("アクセスコードが正しくありません。"))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessCookieName,
		Value:    middleware.AccessGrantedValue,
		Path:     "/",
		Domain:   h.gate.CookieDomain,
		MaxAge:   int(accessCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.gate.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Status は現在のブラウザがアクセス許可済みかを返す。
// GET /api/access
func (h *AccessHandler) Status(w http.ResponseWriter, r *http.Request) {
	granted := false
	if c, err := r.Cookie(middleware.AccessCookieName); err == nil {
		granted = c.Value == middleware.AccessGrantedValue
	}
	writeJSON(w, http.StatusOK, map[string]bool{"granted": granted})
}
