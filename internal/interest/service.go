// Package interest は関心プロファイルの読み取り・更新のドメインロジックを提供する。
package interest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/citizenly/citizenly/internal/model"
	"github.com/citizenly/citizenly/internal/repository"
)

// Service は関心プロファイルのサービス層。
type Service struct {
	profileRepo repository.ProfileRepository
}

// NewService はServiceを生成する。
func NewService(profileRepo repository.ProfileRepository) *Service {
	return &Service{profileRepo: profileRepo}
}

// Read は指定ユーザーの関心プロファイルを返す。
// 行が存在しない場合も「見つからない」エラーにはせず、空のプロファイルを返す。
// 呼び出し側はnilチェックなしで常に値として扱える。
func (s *Service) Read(ctx context.Context, userID string) (*model.InterestProfile, error) {
	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("関心プロファイルの読み取りに失敗しました: %w", err)
	}
	if profile == nil {
		return model.EmptyInterestProfile(userID), nil
	}

	// 保存済みプロファイルでもnilスライスは空スライスに正規化して返す
	if profile.Subjects == nil {
		profile.Subjects = []string{}
	}
	if profile.FollowDistricts == nil {
		profile.FollowDistricts = []string{}
	}
	if profile.NotificationTypes == nil {
		profile.NotificationTypes = []string{}
	}

	return profile, nil
}

// Update は関心プロファイルを部分更新し、更新後のプロファイルを返す。
// 指定されたフィールドのみ置き換え、省略されたフィールドは既存値を維持する。
// 通知タイプは閉じた語彙に対して検証し、無効なタグは最初の1件ではなく
// 全件をまとめて1つの検証エラーとして返す。検証に失敗した場合は
// 一切書き込みを行わない。
func (s *Service) Update(ctx context.Context, userID string, update model.ProfileUpdate) (*model.InterestProfile, error) {
	if update.IsEmpty() {
		return nil, model.NewInvalidRequestError("更新するフィールドを1つ以上指定してください。")
	}

	if update.NotificationTypes != nil {
		var invalid []string
		for _, tag := range *update.NotificationTypes {
			if !model.IsValidNotificationType(tag) {
				invalid = append(invalid, tag)
			}
		}
		if len(invalid) > 0 {
			return nil, model.NewValidationError(invalid)
		}
	}

	// 供給された配列フィールドを正規化する（空白除去・空要素除去・重複の畳み込み）
	normalized := model.ProfileUpdate{
		Subjects:          normalizeSet(update.Subjects),
		FollowDistricts:   normalizeSet(update.FollowDistricts),
		NotificationTypes: normalizeSet(update.NotificationTypes),
	}

	if err := s.profileRepo.Upsert(ctx, userID, normalized); err != nil {
		return nil, fmt.Errorf("関心プロファイルの更新に失敗しました: %w", err)
	}

	slog.Info("interest profile updated",
		slog.String("user_id", userID),
		slog.Bool("subjects", update.Subjects != nil),
		slog.Bool("follow_districts", update.FollowDistricts != nil),
		slog.Bool("notification_types", update.NotificationTypes != nil),
	)

	return s.Read(ctx, userID)
}

// normalizeSet は供給された配列を集合として正規化する。
// nilポインタ（フィールド省略）はnilのまま返し、部分更新の対象外を維持する。
// 挿入順は保持し、重複は最初の出現のみ残す。
func normalizeSet(p *[]string) *[]string {
	if p == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(*p))
	result := make([]string, 0, len(*p))
	for _, v := range *p {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return &result
}
