package feed

import (
	"github.com/microcosm-cc/bluemonday"

	"github.com/citizenly/citizenly/internal/model"
)

// Sanitizer はフィードアイテムのテキストフィールドからHTMLを除去する。
// アイテムは外部の立法データソースから取り込まれるため、
// タイトル・要約はプレーンテキストとして配信する。
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer はSanitizerを生成する。
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// SanitizeItem はアイテムのテキストフィールドをその場でサニタイズする。
func (s *Sanitizer) SanitizeItem(item *model.FeedItem) {
	item.Title = s.policy.Sanitize(item.Title)
	item.Summary = s.policy.Sanitize(item.Summary)
	item.BillReference = s.policy.Sanitize(item.BillReference)
}
