package model

import "time"

// ApplicationStatus は応募の審査状態を表す。
// 状態遷移の制約はなく、任意の値で上書きできる。
type ApplicationStatus string

const (
	ApplicationStatusApplied     ApplicationStatus = "APPLIED"
	ApplicationStatusReviewed    ApplicationStatus = "REVIEWED"
	ApplicationStatusShortlisted ApplicationStatus = "SHORTLISTED"
	ApplicationStatusAccepted    ApplicationStatus = "ACCEPTED"
	ApplicationStatusRejected    ApplicationStatus = "REJECTED"
)

// Valid は状態が定義済みの値かどうかを返す。
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusApplied, ApplicationStatusReviewed, ApplicationStatusShortlisted,
		ApplicationStatusAccepted, ApplicationStatusRejected:
		return true
	}
	return false
}

// JobApplication はユーザーの求人への応募を表す。
// (JobID, UserID) の組は一意。
type JobApplication struct {
	ID        int64
	JobID     int64
	UserID    int64
	Status    ApplicationStatus
	AppliedAt time.Time
}

// ApplicationDetail は応募と求人・応募者の情報を結合したモデル。
// jobs, usersテーブルとJOINして取得される。
type ApplicationDetail struct {
	JobApplication
	JobTitle      string
	CompanyName   string
	JobPostedBy   int64
	ApplicantName string
}
