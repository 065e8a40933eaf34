// Package auth はログイン認証とセッション資格情報発行のドメインロジックを提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/citizenly/citizenly/internal/model"
	"github.com/citizenly/citizenly/internal/repository"
)

// CredentialIssuer はセッション資格情報の発行操作。
type CredentialIssuer interface {
	Issue(subjectID string) (string, error)
}

// LoginMetrics はログイン試行の観測フック。
type LoginMetrics interface {
	IncLoginAttempt(success bool)
}

// Service は認証のサービス層。
type Service struct {
	userRepo repository.UserRepository
	issuer   CredentialIssuer
	metrics  LoginMetrics
}

// NewService はServiceを生成する。metricsはnil可。
func NewService(userRepo repository.UserRepository, issuer CredentialIssuer, metrics LoginMetrics) *Service {
	return &Service{userRepo: userRepo, issuer: issuer, metrics: metrics}
}

// Login はメールアドレスとパスワードを検証し、セッション資格情報とユーザーを返す。
// ユーザー不在とパスワード不一致は同じエラーに畳み込み、
// メールアドレスの存在を外部から判別できないようにする。
func (s *Service) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return "", nil, model.NewLoginFailedError()
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		s.recordAttempt(false)
		return "", nil, model.NewLoginFailedError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.recordAttempt(false)
		slog.Warn("login failed", slog.String("user_id", user.ID))
		return "", nil, model.NewLoginFailedError()
	}

	credential, err := s.issuer.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("セッション資格情報の発行に失敗しました: %w", err)
	}

	s.recordAttempt(true)
	slog.Info("login succeeded", slog.String("user_id", user.ID))
	return credential, user, nil
}

// GetCurrentUser はセッションの主体IDからユーザーを解決する。
// ユーザーが削除済みの場合は認証エラーを返す。
func (s *Service) GetCurrentUser(ctx context.Context, subjectID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUnauthorizedError()
	}
	return user, nil
}

func (s *Service) recordAttempt(success bool) {
	if s.metrics != nil {
		s.metrics.IncLoginAttempt(success)
	}
}
