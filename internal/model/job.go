package model

import (
	"strings"
	"time"
)

// JobType は雇用形態を表す。
type JobType string

const (
	JobTypeFullTime   JobType = "FULL_TIME"
	JobTypePartTime   JobType = "PART_TIME"
	JobTypeContract   JobType = "CONTRACT"
	JobTypeInternship JobType = "INTERNSHIP"
	JobTypeFreelance  JobType = "FREELANCE"
)

// Valid は雇用形態が定義済みの値かどうかを返す。
func (t JobType) Valid() bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship, JobTypeFreelance:
		return true
	}
	return false
}

// Job は雇用者が掲載した求人を表す。
// PostedByは作成後に変更されない。
type Job struct {
	ID          int64
	Title       string
	Description string
	Location    string
	CompanyName string
	Salary      *float64
	JobType     JobType
	PostedBy    int64
	CreatedAt   time.Time
}

// JobWithPoster は求人と掲載者名を結合したモデル。
// usersテーブルとJOINして取得される。
type JobWithPoster struct {
	Job
	PostedByName string
}

// SortDirection は一覧の並び順を表す。
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// JobSearchFilter は求人検索の条件を表す。
// 空文字のフィールドは条件として扱わない。
type JobSearchFilter struct {
	Keyword  string
	Location string
}

// PageRequest は0始まりのページ番号とページサイズを表す。
type PageRequest struct {
	Page int
	Size int
}

// Offset はSQLのOFFSET値を返す。
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// JobSortField は求人一覧でソート可能なAPI上のフィールド名を表す。
type JobSortField string

const (
	JobSortID          JobSortField = "id"
	JobSortTitle       JobSortField = "title"
	JobSortLocation    JobSortField = "location"
	JobSortCompanyName JobSortField = "companyName"
	JobSortSalary      JobSortField = "salary"
	JobSortJobType     JobSortField = "jobType"
	JobSortCreatedAt   JobSortField = "createdAt"
)

// Valid はソート可能なフィールドかどうかを返す。
func (f JobSortField) Valid() bool {
	switch f {
	case JobSortID, JobSortTitle, JobSortLocation, JobSortCompanyName,
		JobSortSalary, JobSortJobType, JobSortCreatedAt:
		return true
	}
	return false
}

// JobSort は求人一覧の並び順を表す。
type JobSort struct {
	Field     JobSortField
	Direction SortDirection
}

// ParseSortDirection は大文字小文字を区別せず"desc"を降順、それ以外を昇順として解釈する。
func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(s), "desc") {
		return SortDesc
	}
	return SortAsc
}
