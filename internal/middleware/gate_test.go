package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/citizenly/citizenly/internal/routeclass"
	"github.com/citizenly/citizenly/internal/token"
)

// --- 純粋判定関数のテスト ---

func TestDecide_DecisionTable(t *testing.T) {
	tests := []struct {
		name       string
		class      routeclass.RouteClass
		credStatus CredentialStatus
		want       GateOutcome
		wantClear  bool
	}{
		{"protected+valid", routeclass.Protected, CredentialValid, OutcomeAllow, false},
		{"protected+invalid", routeclass.Protected, CredentialInvalid, OutcomeRedirectLogin, true},
		{"protected+absent", routeclass.Protected, CredentialAbsent, OutcomeRedirectLogin, false},
		{"authonly+valid", routeclass.AuthOnly, CredentialValid, OutcomeRedirectDashboard, false},
		{"authonly+invalid", routeclass.AuthOnly, CredentialInvalid, OutcomeAllow, true},
		{"authonly+absent", routeclass.AuthOnly, CredentialAbsent, OutcomeAllow, false},
		{"publicgate+valid", routeclass.PublicGate, CredentialValid, OutcomeAllow, false},
		{"publicgate+invalid", routeclass.PublicGate, CredentialInvalid, OutcomeAllow, false},
		{"unclassified+valid", routeclass.Unclassified, CredentialValid, OutcomeAllow, false},
		{"unclassified+invalid", routeclass.Unclassified, CredentialInvalid, OutcomeAllow, false},
		{"unclassified+absent", routeclass.Unclassified, CredentialAbsent, OutcomeAllow, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.class, tt.credStatus, "user-1", true)
			if d.Outcome != tt.want {
				t.Errorf("outcome = %q, want %q", d.Outcome, tt.want)
			}
			if d.ClearCredential != tt.wantClear {
				t.Errorf("clearCredential = %v, want %v", d.ClearCredential, tt.wantClear)
			}
		})
	}
}

func TestDecide_AllowAttachesSubjectID(t *testing.T) {
	d := Decide(routeclass.Protected, CredentialValid, "user-42", true)
	if d.SubjectID != "user-42" {
		t.Errorf("subjectID = %q, want %q", d.SubjectID, "user-42")
	}
}

func TestDecide_AccessGateCheckedBeforeClassification(t *testing.T) {
	// アクセスゲート未通過なら分類に関わらずアクセスゲートへリダイレクト
	for _, class := range []routeclass.RouteClass{routeclass.Protected, routeclass.AuthOnly, routeclass.Unclassified} {
		d := Decide(class, CredentialValid, "user-1", false)
		if d.Outcome != OutcomeRedirectAccessGate {
			t.Errorf("class %q: outcome = %q, want %q", class, d.Outcome, OutcomeRedirectAccessGate)
		}
		if d.ClearCredential {
			t.Errorf("class %q: access gate redirect must not clear the credential", class)
		}
	}

	// アクセスゲート自身のパスは除外される（リダイレクトループ防止）
	d := Decide(routeclass.PublicGate, CredentialAbsent, "", false)
	if d.Outcome != OutcomeAllow {
		t.Errorf("publicGate outcome = %q, want %q", d.Outcome, OutcomeAllow)
	}
}

// --- ミドルウェアシェルのテスト ---

func newTestCodec(t *testing.T) *token.Codec {
	t.Helper()
	codec, err := token.NewCodec("gate-test-secret", token.DefaultLifetime)
	if err != nil {
		t.Fatalf("failed to create codec: %v", err)
	}
	return codec
}

func grantAccess(req *http.Request) {
	req.AddCookie(&http.Cookie{Name: AccessCookieName, Value: AccessGrantedValue})
}

func TestGateMiddleware_ProtectedValidCredential_AllowsAndInjectsSubject(t *testing.T) {
	codec := newTestCodec(t)
	tok, err := codec.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	var capturedSubjectID string
	mw := NewGateMiddleware(codec, GateConfig{}, nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := SubjectIDFromContext(r.Context())
		if err != nil {
			t.Errorf("expected subject ID in context, got error: %v", err)
		}
		capturedSubjectID = id
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	grantAccess(req)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tok})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if capturedSubjectID != "user-123" {
		t.Errorf("subjectID = %q, want %q", capturedSubjectID, "user-123")
	}
}

func TestGateMiddleware_ProtectedAbsentCredential_RedirectsToLoginWithoutClearing(t *testing.T) {
	codec := newTestCodec(t)
	mw := NewGateMiddleware(codec, GateConfig{}, nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	grantAccess(req)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusFound)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("location = %q, want %q", loc, "/login")
	}
	// クレデンシャル不在の場合はCookieに触れない
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			t.Error("session cookie must not be touched when credential is absent")
		}
	}
}

func TestGateMiddleware_ProtectedInvalidCredential_RedirectsAndClearsCookie(t *testing.T) {
	codec := newTestCodec(t)
	mw := NewGateMiddleware(codec, GateConfig{}, nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	grantAccess(req)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tampered-token"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusFound)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("location = %q, want %q", loc, "/login")
	}

	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("invalid credential on protected path must clear the session cookie")
	}
}

func TestGateMiddleware_AuthOnlyValidCredential_RedirectsToDashboard(t *testing.T) {
	codec := newTestCodec(t)
	tok, _ := codec.Issue("user-123")

	mw := NewGateMiddleware(codec, GateConfig{}, nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	grantAccess(req)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tok})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusFound)
	}
	if loc := w.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("location = %q, want %q", loc, "/dashboard")
	}
}

func TestGateMiddleware_AuthOnlyInvalidCredential_AllowsAndClearsCookie(t *testing.T) {
	codec := newTestCodec(t)
	mw := NewGateMiddleware(codec, GateConfig{}, nil)

	called := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	grantAccess(req)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale-token"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if !called {
		t.Error("stale token must not block access to auth-only paths")
	}

	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("invalid credential on auth-only path must clear the session cookie")
	}
}

func TestGateMiddleware_UnclassifiedInvalidCredential_AllowsWithoutClearing(t *testing.T) {
	codec := newTestCodec(t)
	mw := NewGateMiddleware(codec, GateConfig{}, nil)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/about", nil)
	grantAccess(req)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale-token"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	// 無関係なページで古いトークンを削除しない
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			t.Error("session cookie must not be touched on unclassified paths")
		}
	}
}

func TestGateMiddleware_MissingAccessCookie_RedirectsToAccessGate(t *testing.T) {
	codec := newTestCodec(t)
	mw := NewGateMiddleware(codec, GateConfig{}, nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusFound)
	}
	if loc := w.Header().Get("Location"); loc != "/access" {
		t.Errorf("location = %q, want %q", loc, "/access")
	}
}

func TestGateMiddleware_AccessGatePathReachableWithoutAccessCookie(t *testing.T) {
	codec := newTestCodec(t)
	mw := NewGateMiddleware(codec, GateConfig{}, nil)

	called := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/access", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if !called {
		t.Error("access gate path must be reachable without the access cookie")
	}
}

func TestGateMiddleware_WrongAccessCookieValue_RedirectsToAccessGate(t *testing.T) {
	codec := newTestCodec(t)
	mw := NewGateMiddleware(codec, GateConfig{}, nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/about", nil)
	req.AddCookie(&http.Cookie{Name: AccessCookieName, Value: "denied"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if loc := w.Header().Get("Location"); loc != "/access" {
		t.Errorf("location = %q, want %q", loc, "/access")
	}
}

// --- コンテキストヘルパーのテスト ---

func TestSubjectIDFromContext_NoValue_ReturnsError(t *testing.T) {
	_, err := SubjectIDFromContext(context.Background())
	if err == nil {
		t.Error("expected error for missing subject ID in context")
	}
}

func TestSubjectIDFromContext_ValidValue_ReturnsSubjectID(t *testing.T) {
	ctx := ContextWithSubjectID(context.Background(), "user-456")
	subjectID, err := SubjectIDFromContext(ctx)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if subjectID != "user-456" {
		t.Errorf("subjectID = %q, want %q", subjectID, "user-456")
	}
}
