package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/citizenly/citizenly/internal/model"
	"github.com/lib/pq"
)

// PostgresProfileRepo はPostgreSQLを使用した関心プロファイルリポジトリ。
// 配列フィールドはtext[]カラムとして保存する。
type PostgresProfileRepo struct {
	db *sql.DB
}

// NewPostgresProfileRepo はPostgresProfileRepoを生成する。
func NewPostgresProfileRepo(db *sql.DB) *PostgresProfileRepo {
	return &PostgresProfileRepo{db: db}
}

// FindByUserID は指定ユーザーのプロファイルを取得する。
// 行が存在しない場合はnilを返す。
func (r *PostgresProfileRepo) FindByUserID(ctx context.Context, userID string) (*model.InterestProfile, error) {
	profile := &model.InterestProfile{}
	var subjects, districts, notifTypes pq.StringArray

	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, subjects, follow_districts, notification_types, created_at, updated_at
		 FROM interest_profiles WHERE user_id = $1`,
		userID,
	).Scan(
		&profile.UserID, &subjects, &districts, &notifTypes,
		&profile.CreatedAt, &profile.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("関心プロファイルの取得に失敗しました: %w", err)
	}

	profile.Subjects = subjects
	profile.FollowDistricts = districts
	profile.NotificationTypes = notifTypes
	return profile, nil
}

// Upsert はプロファイルを部分更新する。
// nilのフィールドはNULLとして渡し、COALESCEで既存値を維持する。
// INSERT ... ON CONFLICT の単一ステートメントで実行されるため、
// リクエストが中断されても部分的な書き込みは残らない。
func (r *PostgresProfileRepo) Upsert(ctx context.Context, userID string, update model.ProfileUpdate) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO interest_profiles (user_id, subjects, follow_districts, notification_types, created_at, updated_at)
		 VALUES ($1, COALESCE($2::text[], '{}'), COALESCE($3::text[], '{}'), COALESCE($4::text[], '{}'), now(), now())
		 ON CONFLICT (user_id) DO UPDATE SET
		    subjects           = COALESCE($2::text[], interest_profiles.subjects),
		    follow_districts   = COALESCE($3::text[], interest_profiles.follow_districts),
		    notification_types = COALESCE($4::text[], interest_profiles.notification_types),
		    updated_at         = now()`,
		userID,
		nullableArray(update.Subjects),
		nullableArray(update.FollowDistricts),
		nullableArray(update.NotificationTypes),
	)
	if err != nil {
		return fmt.Errorf("関心プロファイルの更新に失敗しました: %w", err)
	}
	return nil
}

// nullableArray はnilポインタをNULLに、値をtext[]リテラルに変換する。
// 空スライスへのポインタは空配列'{}'として書き込まれる（NULLとは区別される）。
func nullableArray(p *[]string) interface{} {
	if p == nil {
		return nil
	}
	return pq.Array(*p)
}

// compile-time interface check
var _ ProfileRepository = (*PostgresProfileRepo)(nil)
