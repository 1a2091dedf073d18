package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/jobportal/internal/model"
	"github.com/hitoshi/jobportal/internal/repository"
)

// --- フェイク定義 ---

type fakeUserRepo struct {
	users map[int64]*model.User
}

func (f *fakeUserRepo) FindByID(_ context.Context, id int64) (*model.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, _ string) (*model.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) Create(_ context.Context, _ *model.User) error { return nil }

func (f *fakeUserRepo) DeleteByID(_ context.Context, _ int64) error { return nil }

type fakeJobRepo struct {
	jobs map[int64]*model.JobWithPoster
}

func (f *fakeJobRepo) Create(_ context.Context, _ *model.Job) error { return nil }

func (f *fakeJobRepo) FindByID(_ context.Context, id int64) (*model.JobWithPoster, error) {
	return f.jobs[id], nil
}

func (f *fakeJobRepo) List(context.Context, model.JobSort, model.PageRequest) ([]model.JobWithPoster, int64, error) {
	return nil, 0, nil
}

func (f *fakeJobRepo) Search(context.Context, model.JobSearchFilter, model.PageRequest) ([]model.JobWithPoster, int64, error) {
	return nil, 0, nil
}

// fakeAppRepo は応募をメモリ上に保持する。
// (job_id, user_id)の一意制約も再現する。
type fakeAppRepo struct {
	users  *fakeUserRepo
	jobs   *fakeJobRepo
	apps   []*model.JobApplication
	nextID int64

	// skipExistsCheck はExistsByJobAndUserを常にfalseにし、INSERT時の競合を再現する。
	skipExistsCheck bool
	createErr       error
}

func (f *fakeAppRepo) Create(_ context.Context, app *model.JobApplication) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, a := range f.apps {
		if a.JobID == app.JobID && a.UserID == app.UserID {
			return fmt.Errorf("failed to insert application: %w", repository.ErrDuplicate)
		}
	}
	f.nextID++
	app.ID = f.nextID
	copied := *app
	f.apps = append(f.apps, &copied)
	return nil
}

func (f *fakeAppRepo) ExistsByJobAndUser(_ context.Context, jobID, userID int64) (bool, error) {
	if f.skipExistsCheck {
		return false, nil
	}
	for _, a := range f.apps {
		if a.JobID == jobID && a.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAppRepo) detail(a *model.JobApplication) model.ApplicationDetail {
	job := f.jobs.jobs[a.JobID]
	return model.ApplicationDetail{
		JobApplication: *a,
		JobTitle:       job.Title,
		CompanyName:    job.CompanyName,
		JobPostedBy:    job.PostedBy,
		ApplicantName:  f.users.users[a.UserID].Name,
	}
}

func (f *fakeAppRepo) FindDetailByID(_ context.Context, id int64) (*model.ApplicationDetail, error) {
	for _, a := range f.apps {
		if a.ID == id {
			d := f.detail(a)
			return &d, nil
		}
	}
	return nil, nil
}

func (f *fakeAppRepo) ListDetailsByUserID(_ context.Context, userID int64) ([]model.ApplicationDetail, error) {
	var out []model.ApplicationDetail
	for _, a := range f.apps {
		if a.UserID == userID {
			out = append(out, f.detail(a))
		}
	}
	return out, nil
}

func (f *fakeAppRepo) ListDetailsByJobID(_ context.Context, jobID int64) ([]model.ApplicationDetail, error) {
	var out []model.ApplicationDetail
	for _, a := range f.apps {
		if a.JobID == jobID {
			out = append(out, f.detail(a))
		}
	}
	return out, nil
}

func (f *fakeAppRepo) UpdateStatus(_ context.Context, id int64, status model.ApplicationStatus) error {
	for _, a := range f.apps {
		if a.ID == id {
			a.Status = status
			return nil
		}
	}
	return fmt.Errorf("application not found: %d", id)
}

type countingMetrics struct {
	submitted, duplicates int
	statuses              []string
}

func (m *countingMetrics) RecordHTTPRequest(string, string, int, time.Duration) {}
func (m *countingMetrics) RecordJobCreated(string)                              {}
func (m *countingMetrics) RecordApplicationSubmitted()                          { m.submitted++ }
func (m *countingMetrics) RecordDuplicateApplication()                          { m.duplicates++ }
func (m *countingMetrics) RecordStatusUpdated(s string)                         { m.statuses = append(m.statuses, s) }
func (m *countingMetrics) RecordSessionsCleaned(int64)                          {}

var _ repository.ApplicationRepository = (*fakeAppRepo)(nil)

// --- テストデータ ---

const (
	employerID      int64 = 1
	otherEmployerID int64 = 2
	seekerID        int64 = 7
	otherSeekerID   int64 = 8
	postedJobID     int64 = 1
)

type testEnv struct {
	svc     *Service
	apps    *fakeAppRepo
	metrics *countingMetrics
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	users := &fakeUserRepo{users: map[int64]*model.User{
		employerID:      {ID: employerID, Name: "Acme HR", Role: model.RoleEmployer},
		otherEmployerID: {ID: otherEmployerID, Name: "Beta HR", Role: model.RoleEmployer},
		seekerID:        {ID: seekerID, Name: "Seeker", Role: model.RoleJobSeeker},
		otherSeekerID:   {ID: otherSeekerID, Name: "Other", Role: model.RoleJobSeeker},
	}}
	jobs := &fakeJobRepo{jobs: map[int64]*model.JobWithPoster{
		postedJobID: {Job: model.Job{ID: postedJobID, Title: "Backend Engineer", CompanyName: "Acme", PostedBy: employerID}, PostedByName: "Acme HR"},
	}}
	apps := &fakeAppRepo{users: users, jobs: jobs}
	m := &countingMetrics{}
	svc := NewService(apps, jobs, users, m)
	svc.now = func() time.Time { return time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC) }
	return testEnv{svc: svc, apps: apps, metrics: m}
}

func caller(id int64, role model.Role) model.Caller {
	return model.Caller{UserID: id, Role: role}
}

func requireAPIError(t *testing.T, err error, code string) *model.APIError {
	t.Helper()
	var apiErr *model.APIError
	require.True(t, errors.As(err, &apiErr), "expected *model.APIError, got %v", err)
	assert.Equal(t, code, apiErr.Code)
	return apiErr
}

// --- Apply ---

func TestApply_CreatesApplicationWithAppliedStatus(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.svc.Apply(context.Background(), caller(seekerID, model.RoleJobSeeker), postedJobID)
	require.NoError(t, err)

	assert.Equal(t, model.ApplicationStatusApplied, resp.Status)
	assert.Equal(t, "Backend Engineer", resp.JobTitle)
	assert.Equal(t, "Acme", resp.CompanyName)
	assert.Equal(t, "Seeker", resp.ApplicantName)
	assert.Equal(t, time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC), resp.AppliedAt)
	require.Len(t, env.apps.apps, 1)
	assert.Equal(t, 1, env.metrics.submitted)
}

func TestApply_Twice_ReturnsAlreadyApplied(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Apply(ctx, caller(seekerID, model.RoleJobSeeker), postedJobID)
	require.NoError(t, err)

	_, err = env.svc.Apply(ctx, caller(seekerID, model.RoleJobSeeker), postedJobID)
	apiErr := requireAPIError(t, err, model.ErrCodeAlreadyApplied)
	assert.Equal(t, "Already applied for this job", apiErr.Message)
	assert.Len(t, env.apps.apps, 1)
	assert.Equal(t, 1, env.metrics.duplicates)
}

func TestApply_ConcurrentDuplicateOnInsert_ReturnsAlreadyApplied(t *testing.T) {
	env := newTestEnv(t)
	env.apps.skipExistsCheck = true
	ctx := context.Background()

	_, err := env.svc.Apply(ctx, caller(seekerID, model.RoleJobSeeker), postedJobID)
	require.NoError(t, err)

	_, err = env.svc.Apply(ctx, caller(seekerID, model.RoleJobSeeker), postedJobID)
	requireAPIError(t, err, model.ErrCodeAlreadyApplied)
}

func TestApply_UnknownJob_ReturnsJobNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Apply(context.Background(), caller(seekerID, model.RoleJobSeeker), 404)
	apiErr := requireAPIError(t, err, model.ErrCodeJobNotFound)
	assert.Equal(t, "Job not found", apiErr.Message)
}

func TestApply_UnknownCaller_ReturnsUserNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Apply(context.Background(), caller(999, model.RoleJobSeeker), postedJobID)
	requireAPIError(t, err, model.ErrCodeUserNotFound)
}

func TestApply_RepositoryError_IsNotAPIError(t *testing.T) {
	env := newTestEnv(t)
	env.apps.createErr = errors.New("connection refused")

	_, err := env.svc.Apply(context.Background(), caller(seekerID, model.RoleJobSeeker), postedJobID)
	require.Error(t, err)
	var apiErr *model.APIError
	assert.False(t, errors.As(err, &apiErr))
}

// --- ListByUser / ListMine ---

func TestListByUser_Self_Succeeds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.svc.Apply(ctx, caller(seekerID, model.RoleJobSeeker), postedJobID)
	require.NoError(t, err)

	list, err := env.svc.ListByUser(ctx, caller(seekerID, model.RoleJobSeeker), seekerID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Backend Engineer", list[0].JobTitle)
}

func TestListByUser_Employer_Succeeds(t *testing.T) {
	env := newTestEnv(t)

	list, err := env.svc.ListByUser(context.Background(), caller(otherEmployerID, model.RoleEmployer), seekerID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestListByUser_OtherJobSeeker_ReturnsForbidden(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.ListByUser(context.Background(), caller(otherSeekerID, model.RoleJobSeeker), seekerID)
	requireAPIError(t, err, model.ErrCodeForbidden)
}

func TestListByUser_UsesStoredRoleNotClaimedRole(t *testing.T) {
	env := newTestEnv(t)

	// セッション解決後にロールを偽装しても保存済みのロールで判定する
	_, err := env.svc.ListByUser(context.Background(), caller(otherSeekerID, model.RoleEmployer), seekerID)
	requireAPIError(t, err, model.ErrCodeForbidden)
}

func TestListMine_ReturnsCallerApplications(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.svc.Apply(ctx, caller(seekerID, model.RoleJobSeeker), postedJobID)
	require.NoError(t, err)

	mine, err := env.svc.ListMine(ctx, caller(seekerID, model.RoleJobSeeker))
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	others, err := env.svc.ListMine(ctx, caller(otherSeekerID, model.RoleJobSeeker))
	require.NoError(t, err)
	assert.Empty(t, others)
}

// --- ListByJob ---

func TestListByJob_Poster_Succeeds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.svc.Apply(ctx, caller(seekerID, model.RoleJobSeeker), postedJobID)
	require.NoError(t, err)
	_, err = env.svc.Apply(ctx, caller(otherSeekerID, model.RoleJobSeeker), postedJobID)
	require.NoError(t, err)

	list, err := env.svc.ListByJob(ctx, caller(employerID, model.RoleEmployer), postedJobID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestListByJob_NotPoster_ReturnsForbidden(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.ListByJob(context.Background(), caller(otherEmployerID, model.RoleEmployer), postedJobID)
	requireAPIError(t, err, model.ErrCodeForbidden)
}

func TestListByJob_UnknownJob_ReturnsJobNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.ListByJob(context.Background(), caller(employerID, model.RoleEmployer), 404)
	requireAPIError(t, err, model.ErrCodeJobNotFound)
}

// --- UpdateStatus ---

func TestUpdateStatus_Poster_OverwritesAnyStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	applied, err := env.svc.Apply(ctx, caller(seekerID, model.RoleJobSeeker), postedJobID)
	require.NoError(t, err)

	// 遷移順序の制約はないため、REJECTEDからAPPLIEDへの巻き戻しも許可される
	for _, status := range []model.ApplicationStatus{
		model.ApplicationStatusRejected,
		model.ApplicationStatusApplied,
		model.ApplicationStatusAccepted,
	} {
		resp, err := env.svc.UpdateStatus(ctx, caller(employerID, model.RoleEmployer), applied.ApplicationID, status)
		require.NoError(t, err)
		assert.Equal(t, status, resp.Status)
		assert.Equal(t, status, env.apps.apps[0].Status)
	}
	assert.Equal(t, []string{"REJECTED", "APPLIED", "ACCEPTED"}, env.metrics.statuses)
}

func TestUpdateStatus_NotPoster_ReturnsForbidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	applied, err := env.svc.Apply(ctx, caller(seekerID, model.RoleJobSeeker), postedJobID)
	require.NoError(t, err)

	_, err = env.svc.UpdateStatus(ctx, caller(otherEmployerID, model.RoleEmployer), applied.ApplicationID, model.ApplicationStatusAccepted)
	requireAPIError(t, err, model.ErrCodeForbidden)
	assert.Equal(t, model.ApplicationStatusApplied, env.apps.apps[0].Status)

	// 応募者本人も更新できない
	_, err = env.svc.UpdateStatus(ctx, caller(seekerID, model.RoleJobSeeker), applied.ApplicationID, model.ApplicationStatusAccepted)
	requireAPIError(t, err, model.ErrCodeForbidden)
}

func TestUpdateStatus_UnknownApplication_ReturnsNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.UpdateStatus(context.Background(), caller(employerID, model.RoleEmployer), 404, model.ApplicationStatusReviewed)
	requireAPIError(t, err, model.ErrCodeApplicationNotFound)
}

func TestUpdateStatus_InvalidStatus_ReturnsValidationError(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.UpdateStatus(context.Background(), caller(employerID, model.RoleEmployer), 1, "HIRED")
	requireAPIError(t, err, model.ErrCodeInvalidStatus)
}
