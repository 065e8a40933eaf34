package model

import "time"

// 通知タイプの閉じた語彙。これ以外のタグは検証エラーとなる。
const (
	NotificationBillIntroduced = "bill_introduced"
	NotificationBillUpdated    = "bill_updated"
	NotificationVoteResult     = "vote_result"
	NotificationVoteScheduled  = "vote_scheduled"
	NotificationStatusChange   = "status_change"
)

// notificationTypeVocabulary は許可される通知タイプの集合。
var notificationTypeVocabulary = map[string]struct{}{
	NotificationBillIntroduced: {},
	NotificationBillUpdated:    {},
	NotificationVoteResult:     {},
	NotificationVoteScheduled:  {},
	NotificationStatusChange:   {},
}

// IsValidNotificationType はタグが閉じた語彙に含まれるかを返す。
func IsValidNotificationType(tag string) bool {
	_, ok := notificationTypeVocabulary[tag]
	return ok
}

// InterestProfile はユーザーが宣言した関心プロファイルを表す。
// 行が存在しないユーザーに対しては空のプロファイルとして扱う
// （フィールドの不在は「そのフィルタ軸なし」を意味し、空集合とは区別しない）。
type InterestProfile struct {
	UserID            string
	Subjects          []string
	FollowDistricts   []string
	NotificationTypes []string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// EmptyInterestProfile は行が存在しないユーザー用の空プロファイルを返す。
// 呼び出し側のnilチェックを不要にするため、常に全フィールドを初期化する。
func EmptyInterestProfile(userID string) *InterestProfile {
	return &InterestProfile{
		UserID:            userID,
		Subjects:          []string{},
		FollowDistricts:   []string{},
		NotificationTypes: []string{},
	}
}

// ProfileUpdate は関心プロファイルの部分更新を表す。
// nilのフィールドは更新対象外となり、既存の値が維持される。
type ProfileUpdate struct {
	Subjects          *[]string
	FollowDistricts   *[]string
	NotificationTypes *[]string
}

// IsEmpty は更新対象のフィールドが1つもないかを返す。
func (p *ProfileUpdate) IsEmpty() bool {
	return p.Subjects == nil && p.FollowDistricts == nil && p.NotificationTypes == nil
}
