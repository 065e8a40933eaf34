// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの権限ロールを表す。
type Role string

const (
	// RoleUser は一般ユーザーを表す。
	RoleUser Role = "user"
	// RoleAdmin は管理者を表す。他ユーザーのフィード閲覧が許可される。
	RoleAdmin Role = "admin"
)

// VerificationStatus は本人確認の状態を表す。
// フィードのパーソナライズは確認済み選挙区に依存するため、
// "verified" 以外のユーザーにはフィードを提供しない。
type VerificationStatus string

const (
	// VerificationUnverified は本人確認が未実施の状態。
	VerificationUnverified VerificationStatus = "unverified"
	// VerificationPending は本人確認の審査中の状態。
	VerificationPending VerificationStatus = "pending"
	// VerificationVerified は本人確認が完了した状態。
	VerificationVerified VerificationStatus = "verified"
)

// User はアカウントを表す。
// パスワードハッシュの生成は外部のユーティリティが行い、
// このサービスは検証のみを行う。
type User struct {
	ID                 string
	Email              string
	Name               string
	PasswordHash       string
	Role               Role
	VerificationStatus VerificationStatus
	HomeDistrict       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsVerified は本人確認が完了しているかを返す。
func (u *User) IsVerified() bool {
	return u.VerificationStatus == VerificationVerified
}

// IsAdmin は管理者ロールかを返す。
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
