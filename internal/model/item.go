package model

import "time"

// FeedItem は議会活動の1単位（法案のアクション、採決結果など）を表す。
// 外部の取り込みパイプラインが作成し、このサービスからは読み取り専用。
type FeedItem struct {
	ID            string
	Type          string
	Title         string
	BillReference string
	Summary       string
	Districts     []string
	Subjects      []string
	Importance    int
	// ActionAt は議会イベントが実際に発生した日時。ソートの第1キー。
	ActionAt time.Time
	// CreatedAt はアイテムがこのシステムに取り込まれた日時。ソートのタイブレークに使用する。
	CreatedAt time.Time
}

// HasNoSubjects はアイテムが主題タグを一切宣言していないかを返す。
// 主題なしのアイテムは全主題フィルタに一致する（普遍的関連アイテム）。
func (i *FeedItem) HasNoSubjects() bool {
	return len(i.Subjects) == 0
}

// FeedQuery はフィード取得のクエリ条件を表す。
// DistrictsとSubjectsは呼び出しごとのオーバーライドで、
// 空の場合は保存済みプロファイルのフィルタにフォールバックする。
type FeedQuery struct {
	Type       string
	Districts  []string
	Subjects   []string
	Importance int
	Search     string
	Page       int
	Limit      int
}
