// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーのロールを表す。
type Role string

const (
	// RoleJobSeeker は求職者ロール。求人への応募ができる。
	RoleJobSeeker Role = "JOB_SEEKER"
	// RoleEmployer は雇用者ロール。求人の掲載と応募の審査ができる。
	RoleEmployer Role = "EMPLOYER"
)

// Valid はロールが定義済みの値かどうかを返す。
func (r Role) Valid() bool {
	return r == RoleJobSeeker || r == RoleEmployer
}

// User はサービス利用ユーザーを表す。
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Caller はリクエストを行っている認証済みの主体を表す。
// セッションミドルウェアがリクエストごとに1回解決し、サービス層へ明示的に渡す。
type Caller struct {
	UserID int64
	Email  string
	Role   Role
}

// IsEmployer は呼び出し元が雇用者ロールを持つかを返す。
func (c Caller) IsEmployer() bool {
	return c.Role == RoleEmployer
}
