// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/citizenly/citizenly/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// ProfileRepository は関心プロファイルの永続化インターフェース。
type ProfileRepository interface {
	// FindByUserID は指定ユーザーのプロファイルを取得する。
	// 行が存在しない場合はnilを返す（呼び出し側で空プロファイルに変換する）。
	FindByUserID(ctx context.Context, userID string) (*model.InterestProfile, error)

	// Upsert はプロファイルを部分更新する。
	// nilのフィールドは変更せず既存値を維持し、指定されたフィールドのみ置き換える。
	// 単一ステートメントのUPSERTで実行されるため、部分的な書き込みは発生しない。
	Upsert(ctx context.Context, userID string, update model.ProfileUpdate) error
}

// ItemSearchQuery はフィードアイテム検索の解決済みクエリ条件。
// DistrictsとSubjectsは解決済みの実効フィルタで、空のスライスは
// 「その軸でのフィルタなし（全件一致）」を意味する。
type ItemSearchQuery struct {
	Districts  []string
	Subjects   []string
	Type       string
	Importance int
	Search     string
	Offset     int
	Limit      int
}

// ItemRepository はフィードアイテムの読み取りインターフェース。
// アイテムの作成は外部の取り込みパイプラインが行うため、書き込み操作を持たない。
type ItemRepository interface {
	// Search は条件に一致するアイテムのページと総件数を返す。
	// 一致規則: (選挙区フィルタなし OR 選挙区が重なる) AND
	// (主題フィルタなし OR 主題が重なる OR アイテムが主題を宣言していない)。
	// action_at降順、created_at降順（タイブレーク）で並べる。
	Search(ctx context.Context, q ItemSearchQuery) ([]model.FeedItem, int, error)
}
