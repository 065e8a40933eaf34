// Package feed はユーザーの関心プロファイルに基づくフィード組み立てのドメインロジックを提供する。
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/citizenly/citizenly/internal/model"
	"github.com/citizenly/citizenly/internal/repository"
)

const (
	// DefaultLimit は1ページあたりのデフォルト件数。
	DefaultLimit = 20
	// MaxLimit は1ページあたりの上限件数。
	MaxLimit = 100
)

// FeedPage はフィード取得結果の1ページ。
type FeedPage struct {
	Items   []model.FeedItem `json:"items"`
	Total   int              `json:"total"`
	Page    int              `json:"page"`
	HasMore bool             `json:"hasMore"`
}

// InterestReader はフィード組み立てに必要な関心プロファイル読み取り操作。
type InterestReader interface {
	Read(ctx context.Context, userID string) (*model.InterestProfile, error)
}

// QueryMetrics はフィード検索の観測フック。
type QueryMetrics interface {
	ObserveFeedQuery(duration time.Duration, itemCount int)
}

// Service はフィードのサービス層。
type Service struct {
	userRepo  repository.UserRepository
	itemRepo  repository.ItemRepository
	interests InterestReader
	sanitizer *Sanitizer
	metrics   QueryMetrics
}

// NewService はServiceを生成する。metricsはnil可。
func NewService(userRepo repository.UserRepository, itemRepo repository.ItemRepository, interests InterestReader, metrics QueryMetrics) *Service {
	return &Service{
		userRepo:  userRepo,
		itemRepo:  itemRepo,
		interests: interests,
		sanitizer: NewSanitizer(),
		metrics:   metrics,
	}
}

// GetFeed は対象ユーザーの関心プロファイルとクエリフィルタに基づくフィードページを返す。
//
// アクセス規則:
//   - 呼び出しユーザーが存在しない場合は認証エラー
//   - 他ユーザーのフィード閲覧は管理者のみ許可
//   - 対象ユーザーが認証済み（verified）でない場合はフィードを提供しない
//
// フィルタ解決:
//   - クエリで明示された選挙区・主題はプロファイルの値を上書きする
//   - どちらもない場合は全件一致（フィルタなし）として扱う
func (s *Service) GetFeed(ctx context.Context, callerID, targetID string, q model.FeedQuery) (*FeedPage, error) {
	caller, err := s.userRepo.FindByID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("呼び出しユーザーの取得に失敗しました: %w", err)
	}
	if caller == nil {
		return nil, model.NewUnauthorizedError()
	}

	target := caller
	if targetID != "" && targetID != callerID {
		if !caller.IsAdmin() {
			return nil, model.NewForbiddenError("他のユーザーのフィードを閲覧する権限がありません。")
		}
		target, err = s.userRepo.FindByID(ctx, targetID)
		if err != nil {
			return nil, fmt.Errorf("対象ユーザーの取得に失敗しました: %w", err)
		}
		if target == nil {
			return nil, model.NewInvalidRequestError("指定されたユーザーが見つかりません。")
		}
	}

	if !target.IsVerified() {
		return nil, model.NewVerificationRequiredError()
	}

	profile, err := s.interests.Read(ctx, target.ID)
	if err != nil {
		return nil, err
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	search := repository.ItemSearchQuery{
		Districts:  resolveFilter(q.Districts, profile.FollowDistricts),
		Subjects:   resolveFilter(q.Subjects, profile.Subjects),
		Type:       q.Type,
		Importance: q.Importance,
		Search:     q.Search,
		Offset:     (page - 1) * limit,
		Limit:      limit,
	}

	start := time.Now()
	items, total, err := s.itemRepo.Search(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("フィードの検索に失敗しました: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ObserveFeedQuery(time.Since(start), len(items))
	}

	for i := range items {
		s.sanitizer.SanitizeItem(&items[i])
	}

	slog.Debug("feed page assembled",
		slog.String("target_user_id", target.ID),
		slog.Int("page", page),
		slog.Int("item_count", len(items)),
		slog.Int("total", total),
	)

	return &FeedPage{
		Items: items,
		Total: total,
		Page:  page,
		// ページがちょうど埋まっていれば続きがあると推定する。
		// 総件数がlimitの倍数の場合、最終ページでも真になりうるが
		// 次ページが空で返るだけで一覧が壊れることはない。
		HasMore: len(items) == limit,
	}, nil
}

// resolveFilter はクエリ明示値を優先し、なければプロファイル値を返す。
// 戻り値が空スライスの場合は「フィルタなし（全件一致）」を意味する。
func resolveFilter(override, fromProfile []string) []string {
	if len(override) > 0 {
		return override
	}
	return fromProfile
}
