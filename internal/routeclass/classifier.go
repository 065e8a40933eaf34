// Package routeclass はリクエストパスをアクセス制御の区分に分類する。
// 純粋関数のみで構成され、I/Oも失敗モードも持たない。
package routeclass

import "strings"

// RouteClass はパスのアクセス制御区分を表す。
type RouteClass string

const (
	// PublicGate はアクセスゲート自体のパス。リダイレクトループを避けるため
	// ゲート処理から除外される。
	PublicGate RouteClass = "public_gate"
	// Protected は認証必須のパス。
	Protected RouteClass = "protected"
	// AuthOnly は未認証ユーザー専用のパス（ログイン・登録画面）。
	AuthOnly RouteClass = "auth_only"
	// Unclassified は上記いずれにも該当しないパス。オープンとして扱う。
	Unclassified RouteClass = "unclassified"
)

// publicGatePrefixes はアクセスゲートの入口ページとその連携APIパス。
// 他のどの分類よりも先に判定され、該当すればそこで確定する。
var publicGatePrefixes = []string{
	"/access",
	"/api/access",
}

// protectedPrefixes は認証必須のパスプレフィックス。順序付きで先頭一致が勝つ。
var protectedPrefixes = []string{
	"/dashboard",
	"/verification",
	"/admin",
	"/profile",
	"/settings",
	"/api/feed",
	"/api/interests",
	"/api/auth/me",
}

// publicExceptionPrefixes は保護プレフィックスに一致しても公開扱いに格下げするパス。
// Protected一致後にのみ判定されるため、リスト順に関わらず例外が常に優先される。
// いずれの保護プレフィックスにも覆われないパス（議員一覧など）はここに
// 載せなくても最終フォールバックでオープン扱いになる。
var publicExceptionPrefixes = []string{
	"/profile/public",
}

// authOnlyPrefixes は未認証ユーザー専用のパスプレフィックス。
var authOnlyPrefixes = []string{
	"/login",
	"/register",
}

// Classify はリクエストパスをRouteClassに分類する。
// 判定順序: PublicGate → Protected（例外で格下げ）→ AuthOnly → Unclassified。
func Classify(path string) RouteClass {
	if matchesAny(path, publicGatePrefixes) {
		return PublicGate
	}

	if matchesAny(path, protectedPrefixes) {
		// 例外プレフィックスに一致する場合はオープン扱いに格下げする
		if matchesAny(path, publicExceptionPrefixes) {
			return Unclassified
		}
		return Protected
	}

	if matchesAny(path, authOnlyPrefixes) {
		return AuthOnly
	}

	return Unclassified
}

// matchesAny はパスがいずれかのプレフィックスにパス区切り単位で一致するかを返す。
// "/access" は "/access" と "/access/grant" に一致するが "/accessories" には一致しない。
func matchesAny(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
