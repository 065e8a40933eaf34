// Package token はセッションクレデンシャルの署名付きトークンを発行・検証する。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// sessionTokenType はセッションクレデンシャルのタイプタグ。
// 同一の署名鍵を共有しうる他のクレデンシャル系列と区別する。
const sessionTokenType = "session"

// DefaultLifetime はセッションクレデンシャルの既定の有効期間。
const DefaultLifetime = 7 * 24 * time.Hour

// ErrInvalidCredential はクレデンシャルの検証失敗を表す。
// 署名不一致・期限切れ・タイプタグ不一致のいずれも同一のエラーに畳み込み、
// 失敗理由の違いを呼び出し元（およびその先の攻撃者）に露出しない。
var ErrInvalidCredential = errors.New("invalid session credential")

// sessionClaims はセッションクレデンシャルに埋め込むクレーム。
// SubjectにユーザーID、TokenTypeにクレデンシャル系列タグを保持する。
type sessionClaims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// Codec はセッションクレデンシャルの発行と検証を行う。
// 署名シークレットは起動時に1回注入され、以降は読み取り専用で全リクエストが共有する。
type Codec struct {
	secret   []byte
	lifetime time.Duration
}

// NewCodec はCodecを生成する。
// secretが空の場合はエラーを返す。ゲートはシークレットなしで起動してはならない
// （フェイルオープンを防ぐため、呼び出し元は起動を中止すること）。
func NewCodec(secret string, lifetime time.Duration) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("signing secret is required")
	}
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}
	return &Codec{
		secret:   []byte(secret),
		lifetime: lifetime,
	}, nil
}

// Issue は指定ユーザーのセッションクレデンシャルを発行する。
// 発行時刻と有効期限（発行から固定期間）を埋め込む。
// リフレッシュは常に新規発行として扱い、既存トークンを書き換えることはない。
func (c *Codec) Issue(subjectID string) (string, error) {
	now := time.Now()
	claims := &sessionClaims{
		TokenType: sessionTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session credential: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証し、埋め込まれたユーザーIDを返す。
// 署名不一致・期限切れ・タイプタグが"session"以外の場合はErrInvalidCredentialを返す。
// HMACの署名比較はライブラリ内部で定数時間比較される。
func (c *Codec) Verify(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return "", ErrInvalidCredential
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return "", ErrInvalidCredential
	}
	if claims.TokenType != sessionTokenType {
		return "", ErrInvalidCredential
	}
	if claims.Subject == "" {
		return "", ErrInvalidCredential
	}

	return claims.Subject, nil
}

// Lifetime はクレデンシャルの有効期間を返す。Cookieのmax-age設定に使用する。
func (c *Codec) Lifetime() time.Duration {
	return c.lifetime
}
