package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/optitask/internal/apperr"
	"github.com/iliyamo/optitask/internal/changeset"
	"github.com/iliyamo/optitask/internal/database"
	"github.com/iliyamo/optitask/internal/model"
)

var (
	alice = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	bob   = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	t0    = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
)

// fixture bundles every repository over one private in-memory database.
type fixture struct {
	db        *sql.DB
	projects  *ProjectRepo
	tasks     *TaskRepo
	labels    *LabelRepo
	entries   *TimeEntryRepo
	links     *TaskLabelRepo
	analytics *AnalyticsRepo
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{db: db, now: t0}
	clock := func() time.Time { return f.now }
	f.projects = NewProjectRepo(db, clock)
	f.tasks = NewTaskRepo(db, clock)
	f.labels = NewLabelRepo(db, clock)
	f.entries = NewTimeEntryRepo(db, clock)
	f.links = NewTaskLabelRepo(db)
	f.analytics = NewAnalyticsRepo(db)
	return f
}

func payload(t *testing.T, body string) changeset.Payload {
	t.Helper()
	p, err := changeset.Decode([]byte(body))
	require.NoError(t, err)
	return p
}

func strPtr(s string) *string { return &s }

func (f *fixture) project(t *testing.T, owner uuid.UUID, name string) model.Project {
	t.Helper()
	p, err := f.projects.Create(context.Background(), owner, changeset.NewProject{Name: name})
	require.NoError(t, err)
	return p
}

func (f *fixture) task(t *testing.T, owner uuid.UUID, title string, project *uuid.UUID) model.TaskWithLabels {
	t.Helper()
	task, err := f.tasks.Create(context.Background(), owner, changeset.NewTask{
		Title: title, Status: model.StatusTodo, ProjectID: project,
	})
	require.NoError(t, err)
	return task
}

func (f *fixture) label(t *testing.T, owner uuid.UUID, name string) model.Label {
	t.Helper()
	l, err := f.labels.Create(context.Background(), owner, changeset.NewLabel{Name: name})
	require.NoError(t, err)
	return l
}

func (f *fixture) entry(t *testing.T, owner, task uuid.UUID, start time.Time, secs int32) model.TimeEntry {
	t.Helper()
	end := start.Add(time.Duration(secs) * time.Second)
	e, err := f.entries.Create(context.Background(), owner, changeset.NewTimeEntry{
		TaskID: task, StartTime: start, EndTime: &end, DurationSeconds: &secs,
	})
	require.NoError(t, err)
	return e
}

func requireKind(t *testing.T, kind apperr.Kind, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperr.KindOf(err), err.Error())
}

// ============================================================
// Projects
// ============================================================

func TestProjectRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.projects.Create(ctx, alice, changeset.NewProject{Name: "Thesis", Color: strPtr("blue")})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, alice, created.UserID)
	assert.Equal(t, t0, created.CreatedAt)
	assert.Equal(t, t0, created.UpdatedAt)

	got, err := f.projects.Get(ctx, alice, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestProjectScopedToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, alice, "Secret")

	_, err := f.projects.Get(ctx, bob, p.ID)
	requireKind(t, apperr.NotFound, err)

	changes, err := changeset.BuildProjectChanges(payload(t, `{"name": "Mine now"}`), t0)
	require.NoError(t, err)
	_, err = f.projects.Update(ctx, bob, p.ID, changes)
	requireKind(t, apperr.NotFound, err)

	n, err := f.projects.Delete(ctx, bob, p.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err := f.projects.List(ctx, bob)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	got, err := f.projects.Get(ctx, alice, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Secret", got.Name)
}

func TestProjectColorNullVersusAbsent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.projects.Create(ctx, alice, changeset.NewProject{Name: "Garden", Color: strPtr("blue")})
	require.NoError(t, err)

	f.now = t0.Add(time.Minute)
	keep, err := changeset.BuildProjectChanges(payload(t, `{}`), f.now)
	require.NoError(t, err)
	got, err := f.projects.Update(ctx, alice, p.ID, keep)
	require.NoError(t, err)
	require.NotNil(t, got.Color)
	assert.Equal(t, "blue", *got.Color)
	assert.Equal(t, "Garden", got.Name)
	assert.Equal(t, t0, got.CreatedAt)
	assert.Equal(t, t0.Add(time.Minute), got.UpdatedAt)

	clear, err := changeset.BuildProjectChanges(payload(t, `{"color": null}`), f.now)
	require.NoError(t, err)
	got, err = f.projects.Update(ctx, alice, p.ID, clear)
	require.NoError(t, err)
	assert.Nil(t, got.Color)
	assert.Equal(t, "Garden", got.Name)
}

func TestProjectDeleteTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, alice, "Temp")

	n, err := f.projects.Delete(ctx, alice, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	for i := 0; i < 2; i++ {
		n, err = f.projects.Delete(ctx, alice, p.ID)
		require.NoError(t, err)
		assert.Zero(t, n)
	}
}

func TestProjectDeleteUnassignsTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, alice, "Short lived")
	task := f.task(t, alice, "Survivor", &p.ID)

	_, err := f.projects.Delete(ctx, alice, p.ID)
	require.NoError(t, err)

	got, err := f.tasks.Get(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ProjectID)
}

// ============================================================
// Ownership
// ============================================================

// ownedResource drives the scoped operations of one entity kind.
type ownedResource struct {
	name   string
	create func(t *testing.T, f *fixture, owner uuid.UUID) uuid.UUID
	get    func(f *fixture, owner, id uuid.UUID) error
	update func(t *testing.T, f *fixture, owner, id uuid.UUID) error
	delete func(f *fixture, owner, id uuid.UUID) (int64, error)
}

var ownedResources = []ownedResource{
	{
		name: "project",
		create: func(t *testing.T, f *fixture, owner uuid.UUID) uuid.UUID {
			return f.project(t, owner, "Secret").ID
		},
		get: func(f *fixture, owner, id uuid.UUID) error {
			_, err := f.projects.Get(context.Background(), owner, id)
			return err
		},
		update: func(t *testing.T, f *fixture, owner, id uuid.UUID) error {
			c, err := changeset.BuildProjectChanges(payload(t, `{"name": "Taken"}`), f.now)
			require.NoError(t, err)
			_, err = f.projects.Update(context.Background(), owner, id, c)
			return err
		},
		delete: func(f *fixture, owner, id uuid.UUID) (int64, error) {
			return f.projects.Delete(context.Background(), owner, id)
		},
	},
	{
		name: "label",
		create: func(t *testing.T, f *fixture, owner uuid.UUID) uuid.UUID {
			return f.label(t, owner, "urgent").ID
		},
		get: func(f *fixture, owner, id uuid.UUID) error {
			_, err := f.labels.Get(context.Background(), owner, id)
			return err
		},
		update: func(t *testing.T, f *fixture, owner, id uuid.UUID) error {
			c, err := changeset.BuildLabelChanges(payload(t, `{"color": null}`), f.now)
			require.NoError(t, err)
			_, err = f.labels.Update(context.Background(), owner, id, c)
			return err
		},
		delete: func(f *fixture, owner, id uuid.UUID) (int64, error) {
			return f.labels.Delete(context.Background(), owner, id)
		},
	},
	{
		name: "task",
		create: func(t *testing.T, f *fixture, owner uuid.UUID) uuid.UUID {
			return f.task(t, owner, "Write report", nil).ID
		},
		get: func(f *fixture, owner, id uuid.UUID) error {
			_, err := f.tasks.Get(context.Background(), owner, id)
			return err
		},
		update: func(t *testing.T, f *fixture, owner, id uuid.UUID) error {
			c, err := changeset.BuildTaskChanges(payload(t, `{"status": "done"}`), f.now)
			require.NoError(t, err)
			_, err = f.tasks.Update(context.Background(), owner, id, c)
			return err
		},
		delete: func(f *fixture, owner, id uuid.UUID) (int64, error) {
			return f.tasks.Delete(context.Background(), owner, id)
		},
	},
	{
		name: "time entry",
		create: func(t *testing.T, f *fixture, owner uuid.UUID) uuid.UUID {
			task := f.task(t, owner, "Tracked", nil)
			return f.entry(t, owner, task.ID, t0, 600).ID
		},
		get: func(f *fixture, owner, id uuid.UUID) error {
			_, err := f.entries.Get(context.Background(), owner, id)
			return err
		},
		update: func(t *testing.T, f *fixture, owner, id uuid.UUID) error {
			c, err := changeset.BuildTimeEntryChanges(payload(t, `{"is_pomodoro_session": true}`), f.now)
			require.NoError(t, err)
			_, err = f.entries.Update(context.Background(), owner, id, c)
			return err
		},
		delete: func(f *fixture, owner, id uuid.UUID) (int64, error) {
			return f.entries.Delete(context.Background(), owner, id)
		},
	},
}

func TestOtherOwnerSeesNotFound(t *testing.T) {
	for _, r := range ownedResources {
		t.Run(r.name, func(t *testing.T) {
			f := newFixture(t)
			id := r.create(t, f, alice)

			requireKind(t, apperr.NotFound, r.get(f, bob, id))
			requireKind(t, apperr.NotFound, r.update(t, f, bob, id))
			n, err := r.delete(f, bob, id)
			require.NoError(t, err)
			assert.Zero(t, n)

			// The owner's row is untouched.
			require.NoError(t, r.get(f, alice, id))
		})
	}
}

func TestDeleteTwiceRemovesNothingMore(t *testing.T) {
	for _, r := range ownedResources {
		t.Run(r.name, func(t *testing.T) {
			f := newFixture(t)
			id := r.create(t, f, alice)

			n, err := r.delete(f, alice, id)
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			for i := 0; i < 2; i++ {
				n, err = r.delete(f, alice, id)
				require.NoError(t, err)
				assert.Zero(t, n)
			}
			requireKind(t, apperr.NotFound, r.get(f, alice, id))
			requireKind(t, apperr.NotFound, r.update(t, f, alice, id))
		})
	}
}

func TestTaskCannotMoveToOtherOwnersProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.project(t, alice, "Mine")
	theirs := f.project(t, bob, "Theirs")
	task := f.task(t, alice, "Stay home", &mine.ID)

	c, err := changeset.BuildTaskChanges(payload(t, `{"project_id": "`+theirs.ID.String()+`"}`), f.now)
	require.NoError(t, err)
	_, err = f.tasks.Update(ctx, alice, task.ID, c)
	requireKind(t, apperr.NotFound, err)

	got, err := f.tasks.Get(ctx, alice, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ProjectID)
	assert.Equal(t, mine.ID, *got.ProjectID)
}

// ============================================================
// Labels
// ============================================================

func TestLabelCRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	l := f.label(t, alice, "urgent")

	changes, err := changeset.BuildLabelChanges(payload(t, `{"name": "later", "color": "#00ff00"}`), t0.Add(time.Hour))
	require.NoError(t, err)
	got, err := f.labels.Update(ctx, alice, l.ID, changes)
	require.NoError(t, err)
	assert.Equal(t, "later", got.Name)
	assert.Equal(t, "#00ff00", *got.Color)

	_, err = f.labels.Get(ctx, bob, l.ID)
	requireKind(t, apperr.NotFound, err)

	list, err := f.labels.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)

	n, err := f.labels.Delete(ctx, alice, l.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

// ============================================================
// Tasks
// ============================================================

func TestTaskCreateDefaultsAndProjectOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task := f.task(t, alice, "Inbox zero", nil)
	assert.Equal(t, model.StatusTodo, task.Status)
	assert.NotNil(t, task.Labels)
	assert.Empty(t, task.Labels)

	foreign := f.project(t, bob, "Bob's")
	_, err := f.tasks.Create(ctx, alice, changeset.NewTask{Title: "Sneaky", Status: model.StatusTodo, ProjectID: &foreign.ID})
	requireKind(t, apperr.NotFound, err)
	assert.Contains(t, err.Error(), "Project")

	changes, err := changeset.BuildTaskChanges(payload(t, `{"project_id": "`+foreign.ID.String()+`"}`), t0)
	require.NoError(t, err)
	_, err = f.tasks.Update(ctx, alice, task.ID, changes)
	requireKind(t, apperr.NotFound, err)
}

func TestTaskRoundTripAllFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, alice, "Work")
	due := model.NewDate(2024, 4, 1)
	order := int32(7)

	created, err := f.tasks.Create(ctx, alice, changeset.NewTask{
		ProjectID: &p.ID, Title: "Report", Description: strPtr("Q1 numbers"),
		Status: model.StatusInProgress, DueDate: &due, Order: &order,
	})
	require.NoError(t, err)

	got, err := f.tasks.Get(ctx, alice, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, p.ID, *got.ProjectID)
	assert.Equal(t, "2024-04-01", got.DueDate.String())
	assert.Equal(t, int32(7), *got.Order)
	assert.Equal(t, "Q1 numbers", *got.Description)

	changes, err := changeset.BuildTaskChanges(payload(t,
		`{"project_id": null, "due_date": null, "order": null, "status": "done"}`), t0.Add(time.Hour))
	require.NoError(t, err)
	got, err = f.tasks.Update(ctx, alice, created.ID, changes)
	require.NoError(t, err)
	assert.Nil(t, got.ProjectID)
	assert.Nil(t, got.DueDate)
	assert.Nil(t, got.Order)
	assert.Equal(t, model.StatusDone, got.Status)
	assert.Equal(t, "Report", got.Title)
	assert.Equal(t, t0.Add(time.Hour), got.UpdatedAt)
}

func TestTaskListOrderingAndFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, alice, "Home")
	one, two := int32(1), int32(2)

	mk := func(title string, order *int32, project *uuid.UUID, status string) {
		_, err := f.tasks.Create(ctx, alice, changeset.NewTask{Title: title, Order: order, ProjectID: project, Status: status})
		require.NoError(t, err)
		f.now = f.now.Add(time.Second)
	}
	mk("unordered-old", nil, nil, model.StatusTodo)
	mk("second", &two, &p.ID, model.StatusDone)
	mk("first", &one, &p.ID, model.StatusTodo)
	mk("unordered-new", nil, &p.ID, model.StatusTodo)
	f.task(t, bob, "not mine", nil)

	all, err := f.tasks.List(ctx, alice, TaskFilter{})
	require.NoError(t, err)
	titles := make([]string, len(all))
	for i, task := range all {
		titles[i] = task.Title
	}
	assert.Equal(t, []string{"first", "second", "unordered-new", "unordered-old"}, titles)

	inProject, err := f.tasks.List(ctx, alice, TaskFilter{ProjectID: &p.ID})
	require.NoError(t, err)
	assert.Len(t, inProject, 3)

	done := model.StatusDone
	finished, err := f.tasks.List(ctx, alice, TaskFilter{Status: &done})
	require.NoError(t, err)
	require.Len(t, finished, 1)
	assert.Equal(t, "second", finished[0].Title)
}

func TestTaskReadsHydrateLabels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.task(t, alice, "A", nil)
	b := f.task(t, alice, "B", nil)
	urgent := f.label(t, alice, "urgent")
	home := f.label(t, alice, "home")

	for _, l := range []model.Label{urgent, home} {
		_, err := f.links.AddLabel(ctx, alice, a.ID, l.ID)
		require.NoError(t, err)
	}
	_, err := f.links.AddLabel(ctx, alice, b.ID, home.ID)
	require.NoError(t, err)

	got, err := f.tasks.Get(ctx, alice, a.ID)
	require.NoError(t, err)
	require.Len(t, got.Labels, 2)
	assert.Equal(t, "home", got.Labels[0].Name)
	assert.Equal(t, "urgent", got.Labels[1].Name)

	list, err := f.tasks.List(ctx, alice, TaskFilter{})
	require.NoError(t, err)
	counts := map[uuid.UUID]int{}
	for _, task := range list {
		counts[task.ID] = len(task.Labels)
	}
	assert.Equal(t, map[uuid.UUID]int{a.ID: 2, b.ID: 1}, counts)

	changes, err := changeset.BuildTaskChanges(payload(t, `{"title": "A renamed"}`), t0)
	require.NoError(t, err)
	updated, err := f.tasks.Update(ctx, alice, a.ID, changes)
	require.NoError(t, err)
	assert.Len(t, updated.Labels, 2)
}

func TestTaskDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.task(t, alice, "Doomed", nil)
	l := f.label(t, alice, "tag")
	_, err := f.links.AddLabel(ctx, alice, task.ID, l.ID)
	require.NoError(t, err)
	f.entry(t, alice, task.ID, t0, 60)

	n, err := f.tasks.Delete(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	entries, err := f.entries.List(ctx, alice, TimeEntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = f.labels.Get(ctx, alice, l.ID)
	require.NoError(t, err)
}

// ============================================================
// Time entries
// ============================================================

func TestTimeEntryDurationDerivedOnCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.task(t, alice, "Focus", nil)

	derived, err := changeset.DecodeNewTimeEntry(payload(t, `{"task_id": "`+task.ID.String()+`",
		"start_time": "2024-01-01T10:00:00", "end_time": "2024-01-01T10:30:00"}`))
	require.NoError(t, err)
	e, err := f.entries.Create(ctx, alice, derived)
	require.NoError(t, err)
	require.NotNil(t, e.DurationSeconds)
	assert.Equal(t, int32(1800), *e.DurationSeconds)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), e.StartTime)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC), *e.EndTime)

	explicit, err := changeset.DecodeNewTimeEntry(payload(t, `{"task_id": "`+task.ID.String()+`",
		"start_time": "2024-01-01T10:00:00", "end_time": "2024-01-01T10:30:00", "duration_seconds": 999}`))
	require.NoError(t, err)
	e, err = f.entries.Create(ctx, alice, explicit)
	require.NoError(t, err)
	assert.Equal(t, int32(999), *e.DurationSeconds)
}

func TestTimeEntryRequiresOwnedTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bobs := f.task(t, bob, "Bob's task", nil)

	_, err := f.entries.Create(ctx, alice, changeset.NewTimeEntry{TaskID: bobs.ID, StartTime: t0})
	requireKind(t, apperr.NotFound, err)

	_, err = f.entries.Create(ctx, alice, changeset.NewTimeEntry{TaskID: uuid.New(), StartTime: t0})
	requireKind(t, apperr.NotFound, err)
}

func TestTimeEntryUpdateDerivesFromStoredStart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.task(t, alice, "Running", nil)
	running, err := f.entries.Create(ctx, alice, changeset.NewTimeEntry{TaskID: task.ID, StartTime: t0})
	require.NoError(t, err)
	assert.Nil(t, running.EndTime)
	assert.Nil(t, running.DurationSeconds)

	stop, err := changeset.BuildTimeEntryChanges(payload(t, `{"end_time": "2024-03-15T09:25:00Z"}`), t0.Add(time.Hour))
	require.NoError(t, err)
	stopped, err := f.entries.Update(ctx, alice, running.ID, stop)
	require.NoError(t, err)
	require.NotNil(t, stopped.DurationSeconds)
	assert.Equal(t, int32(1500), *stopped.DurationSeconds)

	_, err = f.entries.Update(ctx, bob, running.ID, stop)
	requireKind(t, apperr.NotFound, err)

	_, err = f.entries.Update(ctx, alice, uuid.New(), stop)
	requireKind(t, apperr.NotFound, err)
}

func TestTimeEntryUpdateRejectsOverlongInterval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.task(t, alice, "Forever", nil)
	running, err := f.entries.Create(ctx, alice, changeset.NewTimeEntry{
		TaskID: task.ID, StartTime: time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	stop, err := changeset.BuildTimeEntryChanges(payload(t, `{"end_time": "2030-01-01T00:00:00Z"}`), t0)
	require.NoError(t, err)
	_, err = f.entries.Update(ctx, alice, running.ID, stop)
	requireKind(t, apperr.BadRequest, err)

	got, err := f.entries.Get(ctx, alice, running.ID)
	require.NoError(t, err)
	assert.Nil(t, got.EndTime)
	assert.Nil(t, got.DurationSeconds)
}

func TestTimeEntryListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.task(t, alice, "A", nil)
	b := f.task(t, alice, "B", nil)
	day := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	e1 := f.entry(t, alice, a.ID, day, 60)
	e2 := f.entry(t, alice, b.ID, day.Add(24*time.Hour), 60)
	e3 := f.entry(t, alice, a.ID, day.Add(48*time.Hour), 60)

	all, err := f.entries.List(ctx, alice, TimeEntryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uuid.UUID{e3.ID, e2.ID, e1.ID}, []uuid.UUID{all[0].ID, all[1].ID, all[2].ID})

	forA, err := f.entries.List(ctx, alice, TimeEntryFilter{TaskID: &a.ID})
	require.NoError(t, err)
	assert.Len(t, forA, 2)

	from, to := day.Add(24*time.Hour), day.Add(48*time.Hour)
	window, err := f.entries.List(ctx, alice, TimeEntryFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, e3.ID, window[0].ID)
	assert.Equal(t, e2.ID, window[1].ID)

	none, err := f.entries.List(ctx, bob, TimeEntryFilter{})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

// ============================================================
// Task labels
// ============================================================

func TestAddLabelChecksTaskBeforeLabel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bobsTask := f.task(t, bob, "Bob's", nil)
	alicesLabel := f.label(t, alice, "mine")

	_, err := f.links.AddLabel(ctx, alice, bobsTask.ID, alicesLabel.ID)
	requireKind(t, apperr.NotFound, err)
	assert.Contains(t, err.Error(), "Task with id "+bobsTask.ID.String())

	alicesTask := f.task(t, alice, "Alice's", nil)
	bobsLabel := f.label(t, bob, "theirs")
	_, err = f.links.AddLabel(ctx, alice, alicesTask.ID, bobsLabel.ID)
	requireKind(t, apperr.NotFound, err)
	assert.Contains(t, err.Error(), "Label with id "+bobsLabel.ID.String())
}

func TestAddLabelTwiceIsDatabaseError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.task(t, alice, "T", nil)
	l := f.label(t, alice, "L")

	link, err := f.links.AddLabel(ctx, alice, task.ID, l.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskLabel{TaskID: task.ID, LabelID: l.ID}, link)

	_, err = f.links.AddLabel(ctx, alice, task.ID, l.ID)
	requireKind(t, apperr.Database, err)
	assert.Contains(t, err.Error(), "unique constraint violation")
}

func TestListAndRemoveLabels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.task(t, alice, "T", nil)
	l := f.label(t, alice, "L")
	_, err := f.links.AddLabel(ctx, alice, task.ID, l.ID)
	require.NoError(t, err)

	labels, err := f.links.ListLabels(ctx, alice, task.ID)
	require.NoError(t, err)
	require.Len(t, labels, 1)
	assert.Equal(t, l.ID, labels[0].ID)

	_, err = f.links.ListLabels(ctx, bob, task.ID)
	requireKind(t, apperr.NotFound, err)

	requireKind(t, apperr.NotFound, f.links.RemoveLabel(ctx, bob, task.ID, l.ID))
	require.NoError(t, f.links.RemoveLabel(ctx, alice, task.ID, l.ID))
	requireKind(t, apperr.NotFound, f.links.RemoveLabel(ctx, alice, task.ID, l.ID))

	labels, err = f.links.ListLabels(ctx, alice, task.ID)
	require.NoError(t, err)
	assert.NotNil(t, labels)
	assert.Empty(t, labels)
}

// ============================================================
// Analytics
// ============================================================

func TestTimeByProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	big := f.project(t, alice, "Big")
	small := f.project(t, alice, "Small")
	t1 := f.task(t, alice, "t1", &big.ID)
	t2 := f.task(t, alice, "t2", &big.ID)
	t3 := f.task(t, alice, "t3", &small.ID)
	loose := f.task(t, alice, "no project", nil)

	day := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	f.entry(t, alice, t1.ID, day, 600)
	f.entry(t, alice, t2.ID, day.Add(time.Hour), 900)
	f.entry(t, alice, t3.ID, day, 300)
	f.entry(t, alice, loose.ID, day, 5000)
	f.entry(t, alice, t1.ID, day.AddDate(0, 0, -30), 7000)
	_, err := f.entries.Create(ctx, alice, changeset.NewTimeEntry{TaskID: t3.ID, StartTime: day})
	require.NoError(t, err)

	bobsProject := f.project(t, bob, "Bob")
	bobsTask := f.task(t, bob, "bt", &bobsProject.ID)
	f.entry(t, bob, bobsTask.ID, day, 100)

	from := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 17, 23, 59, 59, 0, time.UTC)
	stats, err := f.analytics.TimeByProject(ctx, alice, from, to)
	require.NoError(t, err)
	assert.Equal(t, []model.TimeByProjectStat{
		{ProjectID: big.ID, ProjectName: "Big", TotalDurationSeconds: 1500},
		{ProjectID: small.ID, ProjectName: "Small", TotalDurationSeconds: 300},
	}, stats)

	empty, err := f.analytics.TimeByProject(ctx, alice, from.AddDate(1, 0, 0), to.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestProductivityTrend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	task := f.task(t, alice, "daily", nil)

	f.entry(t, alice, task.ID, time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC), 600)
	f.entry(t, alice, task.ID, time.Date(2024, 3, 12, 23, 59, 59, 0, time.UTC), 60)
	f.entry(t, alice, task.ID, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), 120)
	f.entry(t, alice, task.ID, time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC), 999)

	from := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 17, 23, 59, 59, 0, time.UTC)
	points, err := f.analytics.ProductivityTrend(ctx, alice, from, to)
	require.NoError(t, err)
	assert.Equal(t, []model.ProductivityTrendPoint{
		{DatePoint: model.NewDate(2024, 3, 11), TotalDurationSeconds: 120},
		{DatePoint: model.NewDate(2024, 3, 12), TotalDurationSeconds: 660},
	}, points)
}

// ============================================================
// Error classification
// ============================================================

func TestTranslate(t *testing.T) {
	id := uuid.New()
	requireKind(t, apperr.NotFound, translate(sql.ErrNoRows, "Task", id))
	requireKind(t, apperr.Database, translate(sql.ErrConnDone, "Task", id))
	assert.NoError(t, translate(nil, "Task", id))

	already := apperr.BadRequestf("bad")
	assert.Same(t, already, translate(already, "Task", id))
}
