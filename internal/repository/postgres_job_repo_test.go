package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hitoshi/jobportal/internal/model"
)

func TestPostgresJobRepo_ImplementsInterface(t *testing.T) {
	var _ JobRepository = (*PostgresJobRepo)(nil)
}

func TestPostgresApplicationRepo_ImplementsInterface(t *testing.T) {
	var _ ApplicationRepository = (*PostgresApplicationRepo)(nil)
}

func TestJobOrderBy(t *testing.T) {
	tests := []struct {
		name string
		sort model.JobSort
		want string
	}{
		{"created_at_desc", model.JobSort{Field: model.JobSortCreatedAt, Direction: model.SortDesc}, "ORDER BY j.created_at DESC, j.id DESC"},
		{"created_at_asc", model.JobSort{Field: model.JobSortCreatedAt, Direction: model.SortAsc}, "ORDER BY j.created_at ASC, j.id ASC"},
		{"company_name", model.JobSort{Field: model.JobSortCompanyName, Direction: model.SortAsc}, "ORDER BY j.company_name ASC, j.id ASC"},
		{"salary_desc", model.JobSort{Field: model.JobSortSalary, Direction: model.SortDesc}, "ORDER BY j.salary DESC, j.id DESC"},
		{"unknown_field_falls_back", model.JobSort{Field: "id; DROP TABLE jobs", Direction: model.SortAsc}, "ORDER BY j.created_at ASC, j.id ASC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, jobOrderBy(tt.sort))
		})
	}
}

func TestJobSortColumns_CoverAllSortableFields(t *testing.T) {
	for _, f := range []model.JobSortField{
		model.JobSortID, model.JobSortTitle, model.JobSortLocation, model.JobSortCompanyName,
		model.JobSortSalary, model.JobSortJobType, model.JobSortCreatedAt,
	} {
		_, ok := jobSortColumns[f]
		assert.True(t, ok, "missing column for %q", f)
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "engineer", escapeLike("engineer"))
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `snake\_case`, escapeLike("snake_case"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
}

func TestBuildJobSearchWhere(t *testing.T) {
	tests := []struct {
		name      string
		filter    model.JobSearchFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "both",
			filter:    model.JobSearchFilter{Keyword: "engineer", Location: "Tokyo"},
			wantWhere: `WHERE j.title ILIKE ? ESCAPE '\' AND j.location ILIKE ? ESCAPE '\'`,
			wantArgs:  []any{"%engineer%", "%Tokyo%"},
		},
		{
			name:      "keyword_only",
			filter:    model.JobSearchFilter{Keyword: "engineer"},
			wantWhere: `WHERE j.title ILIKE ? ESCAPE '\'`,
			wantArgs:  []any{"%engineer%"},
		},
		{
			name:      "location_only",
			filter:    model.JobSearchFilter{Location: "Osaka"},
			wantWhere: `WHERE j.location ILIKE ? ESCAPE '\'`,
			wantArgs:  []any{"%Osaka%"},
		},
		{
			name:      "neither",
			filter:    model.JobSearchFilter{},
			wantWhere: "",
			wantArgs:  nil,
		},
		{
			name:      "blank_treated_as_absent",
			filter:    model.JobSearchFilter{Keyword: "   ", Location: ""},
			wantWhere: "",
			wantArgs:  nil,
		},
		{
			name:      "wildcards_escaped",
			filter:    model.JobSearchFilter{Keyword: "50%_off"},
			wantWhere: `WHERE j.title ILIKE ? ESCAPE '\'`,
			wantArgs:  []any{`%50\%\_off%`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildJobSearchWhere(tt.filter)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
