package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/citizenly/citizenly/internal/model"
	"github.com/lib/pq"
)

// PostgresItemRepo はPostgreSQLを使用したフィードアイテムリポジトリ。
// districts/subjectsカラムのGINインデックスを前提とした
// 配列重なり述語（&&）で検索する。
type PostgresItemRepo struct {
	db *sql.DB
}

// NewPostgresItemRepo はPostgresItemRepoを生成する。
func NewPostgresItemRepo(db *sql.DB) *PostgresItemRepo {
	return &PostgresItemRepo{db: db}
}

// searchOrderClause はフィードの並び順。
// action_at降順、同日時の場合はcreated_at降順で安定させる。
const searchOrderClause = " ORDER BY action_at DESC, created_at DESC"

// buildSearchConditions はItemSearchQueryからWHERE句と束縛引数を組み立てる。
// 一致規則:
//   - 選挙区: フィルタなし、またはアイテムの選挙区集合と実効フィルタが重なる
//   - 主題: フィルタなし、または重なる、またはアイテムが主題を宣言していない
//     （主題なしアイテムは普遍的関連として扱い、除外しない）
func buildSearchConditions(q ItemSearchQuery) (string, []interface{}) {
	where := " WHERE 1=1"
	args := []interface{}{}

	if len(q.Districts) > 0 {
		where += fmt.Sprintf(" AND districts && $%d", len(args)+1)
		args = append(args, pq.Array(q.Districts))
	}

	if len(q.Subjects) > 0 {
		// 主題を宣言していないアイテムは全主題フィルタに一致する
		where += fmt.Sprintf(" AND (subjects && $%d OR cardinality(subjects) = 0)", len(args)+1)
		args = append(args, pq.Array(q.Subjects))
	}

	if q.Type != "" {
		where += fmt.Sprintf(" AND item_type = $%d", len(args)+1)
		args = append(args, q.Type)
	}

	if q.Importance > 0 {
		where += fmt.Sprintf(" AND importance >= $%d", len(args)+1)
		args = append(args, q.Importance)
	}

	if q.Search != "" {
		where += fmt.Sprintf(" AND title ILIKE '%%' || $%d || '%%'", len(args)+1)
		args = append(args, escapeLikePattern(q.Search))
	}

	return where, args
}

// escapeLikePattern はLIKE/ILIKEのワイルドカード文字をエスケープする。
// 利用者入力の"%"や"_"が検索パターンとして解釈されるのを防ぐ。
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// Search は条件に一致するアイテムのページと総件数を返す。
func (r *PostgresItemRepo) Search(ctx context.Context, q ItemSearchQuery) ([]model.FeedItem, int, error) {
	where, args := buildSearchConditions(q)

	// 総件数はページネーション適用前のWHERE句で数える
	var total int
	countQuery := "SELECT count(*) FROM feed_items" + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("フィードアイテムの件数取得に失敗しました: %w", err)
	}

	query := `SELECT id, item_type, title, bill_reference, summary,
	                 districts, subjects, importance, action_at, created_at
	          FROM feed_items` + where + searchOrderClause +
		fmt.Sprintf(" OFFSET $%d LIMIT $%d", len(args)+1, len(args)+2)
	args = append(args, q.Offset, q.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("フィードアイテムの検索に失敗しました: %w", err)
	}
	defer rows.Close()

	var items []model.FeedItem
	for rows.Next() {
		var item model.FeedItem
		var billReference, summary sql.NullString
		var districts, subjects pq.StringArray

		if err := rows.Scan(
			&item.ID, &item.Type, &item.Title, &billReference, &summary,
			&districts, &subjects, &item.Importance, &item.ActionAt, &item.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("フィードアイテム行の読み取りに失敗しました: %w", err)
		}

		item.BillReference = billReference.String
		item.Summary = summary.String
		item.Districts = districts
		item.Subjects = subjects

		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("フィードアイテムの走査に失敗しました: %w", err)
	}

	return items, total, nil
}

// compile-time interface check
var _ ItemRepository = (*PostgresItemRepo)(nil)
