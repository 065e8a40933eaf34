// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/citizenly/citizenly/internal/routeclass"
)

const (
	// SessionCookieName はセッションクレデンシャルを保持するCookieの名前。
	SessionCookieName = "citizenly-session"
	// AccessCookieName はアプリケーション全体のアクセスゲートCookieの名前。
	// ユーザー単位のセッションとは独立したライフサイクルを持つ。
	AccessCookieName = "app-access"
	// AccessGrantedValue はアクセスゲート通過を表すCookie値。
	AccessGrantedValue = "granted"
)

const (
	loginPath      = "/login"
	dashboardPath  = "/dashboard"
	accessGatePath = "/access"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// subjectIDContextKey はリクエストコンテキストに検証済みユーザーIDを格納するためのキー。
var subjectIDContextKey = contextKey("subject_id")

// CredentialStatus はリクエストに添付されたクレデンシャルの状態を表す。
type CredentialStatus string

const (
	// CredentialAbsent はクレデンシャルCookieが存在しない状態。
	CredentialAbsent CredentialStatus = "absent"
	// CredentialValid はクレデンシャルの検証に成功した状態。
	CredentialValid CredentialStatus = "valid"
	// CredentialInvalid は署名不一致・期限切れ等で検証に失敗した状態。
	CredentialInvalid CredentialStatus = "invalid"
)

// GateOutcome はゲートのリクエストごとの判定結果を表す。
type GateOutcome string

const (
	// OutcomeAllow はリクエストをハンドラーへ通す判定。
	OutcomeAllow GateOutcome = "allow"
	// OutcomeRedirectLogin はログイン画面へのリダイレクト判定。
	OutcomeRedirectLogin GateOutcome = "redirect_login"
	// OutcomeRedirectDashboard はダッシュボードへのリダイレクト判定。
	OutcomeRedirectDashboard GateOutcome = "redirect_dashboard"
	// OutcomeRedirectAccessGate はアクセスゲート画面へのリダイレクト判定。
	OutcomeRedirectAccessGate GateOutcome = "redirect_access_gate"
)

// GateDecision はゲートの判定と、それに伴う副作用の指示を表す。
// 判定ロジックを純粋関数に分離し、HTTP機構なしで単体テストできるようにする。
type GateDecision struct {
	Outcome GateOutcome
	// ClearCredential は無効なクレデンシャルCookieを削除すべきかを示す。
	// 無効トークンが実際に影響するパス（Protected / AuthOnly）でのみtrueになる。
	ClearCredential bool
	// SubjectID は許可時に下流コンテキストへ添付する検証済みユーザーID。
	SubjectID string
}

// Decide はルート分類・クレデンシャル状態・アクセスゲート状態から判定を導出する。
// 純粋関数であり、副作用を持たない。
//
// 判定表:
//
//	Protected    + valid   → 許可（subject添付） / invalid → ログインへ+Cookie削除 / absent → ログインへ
//	AuthOnly     + valid   → ダッシュボードへ    / invalid → 許可+Cookie削除      / absent → 許可
//	PublicGate・Unclassified → 常に許可（無関係なページで古いトークンを削除しない）
//
// アプリケーションレベルのアクセスゲートはルート分類より先に判定される。
// ただしアクセスゲート自身のパス（PublicGate）は除外し、リダイレクトループを防ぐ。
func Decide(class routeclass.RouteClass, credStatus CredentialStatus, subjectID string, accessGranted bool) GateDecision {
	if !accessGranted && class != routeclass.PublicGate {
		return GateDecision{Outcome: OutcomeRedirectAccessGate}
	}

	switch class {
	case routeclass.Protected:
		switch credStatus {
		case CredentialValid:
			return GateDecision{Outcome: OutcomeAllow, SubjectID: subjectID}
		case CredentialInvalid:
			return GateDecision{Outcome: OutcomeRedirectLogin, ClearCredential: true}
		default:
			return GateDecision{Outcome: OutcomeRedirectLogin}
		}

	case routeclass.AuthOnly:
		switch credStatus {
		case CredentialValid:
			return GateDecision{Outcome: OutcomeRedirectDashboard}
		case CredentialInvalid:
			// 古いトークンがアクセスを妨げないよう、削除した上で許可する
			return GateDecision{Outcome: OutcomeAllow, ClearCredential: true}
		default:
			return GateDecision{Outcome: OutcomeAllow}
		}

	default:
		// PublicGate / Unclassified: 無効トークンでもCookieには触れない
		if credStatus == CredentialValid {
			return GateDecision{Outcome: OutcomeAllow, SubjectID: subjectID}
		}
		return GateDecision{Outcome: OutcomeAllow}
	}
}

// CredentialVerifier はクレデンシャル検証に必要なインターフェース。
// token.Codecの部分集合として定義する。
type CredentialVerifier interface {
	Verify(tokenString string) (string, error)
}

// GateMetrics はゲート判定の記録に必要なインターフェース。
// metrics.Collectorの部分集合として定義する。
type GateMetrics interface {
	RecordGateDecision(outcome string)
}

// GateConfig はゲートミドルウェアのCookie設定。
type GateConfig struct {
	CookieSecure bool
	CookieDomain string
}

// NewGateMiddleware はセッションゲートミドルウェアを返す。
// 全リクエストはこのゲートを最初に通過し、許可されたリクエストのみが
// ルートハンドラーに到達する。許可時は検証済みユーザーIDをコンテキストに注入する。
// クレデンシャル検証の失敗はここでリダイレクト・Cookie削除に変換され、
// 呼び出し元へ伝播することはない。
func NewGateMiddleware(verifier CredentialVerifier, config GateConfig, metrics GateMetrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			class := routeclass.Classify(r.URL.Path)

			// アプリケーション全体のアクセスゲート（共有シークレット）
			accessGranted := false
			if cookie, err := r.Cookie(AccessCookieName); err == nil && cookie.Value == AccessGrantedValue {
				accessGranted = true
			}

			// セッションクレデンシャルの検証
			credStatus := CredentialAbsent
			subjectID := ""
			if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
				if id, err := verifier.Verify(cookie.Value); err == nil {
					credStatus = CredentialValid
					subjectID = id
				} else {
					credStatus = CredentialInvalid
				}
			}

			decision := Decide(class, credStatus, subjectID, accessGranted)

			if metrics != nil {
				metrics.RecordGateDecision(string(decision.Outcome))
			}

			if decision.ClearCredential {
				ClearSessionCookie(w, config)
			}

			switch decision.Outcome {
			case OutcomeRedirectLogin:
				http.Redirect(w, r, loginPath, http.StatusFound)
			case OutcomeRedirectDashboard:
				http.Redirect(w, r, dashboardPath, http.StatusFound)
			case OutcomeRedirectAccessGate:
				http.Redirect(w, r, accessGatePath, http.StatusFound)
			default:
				ctx := r.Context()
				if decision.SubjectID != "" {
					ctx = context.WithValue(ctx, subjectIDContextKey, decision.SubjectID)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
			}
		})
	}
}

// SetSessionCookie はセッションクレデンシャルCookieを書き込む。
func SetSessionCookie(w http.ResponseWriter, config GateConfig, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		Domain:   config.CookieDomain,
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie はセッションクレデンシャルCookieを削除する。
func ClearSessionCookie(w http.ResponseWriter, config GateConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SubjectIDFromContext はリクエストコンテキストから検証済みユーザーIDを取得する。
// ゲートを許可で通過したリクエストでのみ有効。
func SubjectIDFromContext(ctx context.Context) (string, error) {
	subjectID, ok := ctx.Value(subjectIDContextKey).(string)
	if !ok || subjectID == "" {
		return "", fmt.Errorf("subject ID not found in context")
	}
	return subjectID, nil
}

// ContextWithSubjectID はコンテキストに検証済みユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithSubjectID(ctx context.Context, subjectID string) context.Context {
	return context.WithValue(ctx, subjectIDContextKey, subjectID)
}
