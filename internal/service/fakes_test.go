package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/model"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/repository"
)

// fakeDriveStore is an in-memory DriveStore mirroring the repository's
// conflict and not-found semantics.
type fakeDriveStore struct {
	nextID int
	drives map[int]model.Drive
}

func newFakeDriveStore() *fakeDriveStore {
	return &fakeDriveStore{drives: map[int]model.Drive{}}
}

func (f *fakeDriveStore) GetByID(_ context.Context, id int) (*model.Drive, error) {
	d, ok := f.drives[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := d
	return &cp, nil
}

func (f *fakeDriveStore) List(_ context.Context) ([]model.Drive, error) {
	out := make([]model.Drive, 0, len(f.drives))
	for _, d := range f.drives {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (f *fakeDriveStore) FindConflicting(_ context.Context, at time.Time, classes []string, sameDay bool, excludeID int) (*model.Drive, error) {
	for _, d := range f.drives {
		if d.ID == excludeID {
			continue
		}
		if sameSlot(d.ScheduledAt, at, sameDay) && classesOverlap(d.ApplicableClasses, classes) {
			cp := d
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeDriveStore) Create(_ context.Context, d *model.Drive) error {
	f.nextID++
	d.ID = f.nextID
	f.drives[d.ID] = *d
	return nil
}

func (f *fakeDriveStore) Update(_ context.Context, d *model.Drive) error {
	if _, ok := f.drives[d.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.drives[d.ID] = *d
	return nil
}

func (f *fakeDriveStore) Delete(_ context.Context, id int) error {
	if _, ok := f.drives[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.drives, id)
	return nil
}

func (f *fakeDriveStore) UpcomingBetween(_ context.Context, from, to time.Time) ([]model.Drive, error) {
	out := []model.Drive{}
	for _, d := range f.drives {
		if !d.ScheduledAt.Before(from) && !d.ScheduledAt.After(to) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

// fakeStudentStore is an in-memory StudentStore enforcing the same unique
// constraints the database does.
type fakeStudentStore struct {
	nextID      int
	nextEventID int
	students    map[int]model.Student
	appendErr   error // injected AppendVaccination failure
}

func newFakeStudentStore() *fakeStudentStore {
	return &fakeStudentStore{students: map[int]model.Student{}}
}

func (f *fakeStudentStore) GetByID(_ context.Context, id int) (*model.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := s
	cp.Vaccinations = append([]model.VaccinationEvent{}, s.Vaccinations...)
	return &cp, nil
}

func (f *fakeStudentStore) List(_ context.Context, filter model.StudentFilter) ([]model.Student, error) {
	out := []model.Student{}
	for _, s := range f.students {
		if filter.Name != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Class != "" && s.Class != filter.Class {
			continue
		}
		if filter.VaccinatedOnly && len(s.Vaccinations) == 0 {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStudentStore) Create(_ context.Context, s *model.Student) error {
	for _, existing := range f.students {
		if existing.StudentID == s.StudentID {
			return repository.ErrDuplicateStudentID
		}
	}
	f.nextID++
	s.ID = f.nextID
	f.students[s.ID] = *s
	return nil
}

func (f *fakeStudentStore) Update(_ context.Context, s *model.Student) error {
	if _, ok := f.students[s.ID]; !ok {
		return pgx.ErrNoRows
	}
	for _, existing := range f.students {
		if existing.ID != s.ID && existing.StudentID == s.StudentID {
			return repository.ErrDuplicateStudentID
		}
	}
	f.students[s.ID] = *s
	return nil
}

func (f *fakeStudentStore) Delete(_ context.Context, id int) error {
	if _, ok := f.students[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.students, id)
	return nil
}

func (f *fakeStudentStore) AppendVaccination(_ context.Context, studentID int, e *model.VaccinationEvent) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	s, ok := f.students[studentID]
	if !ok {
		return pgx.ErrNoRows
	}
	for _, existing := range s.Vaccinations {
		if existing.DriveID == e.DriveID {
			return repository.ErrVaccinationExists
		}
	}
	f.nextEventID++
	e.ID = f.nextEventID
	s.Vaccinations = append(s.Vaccinations, *e)
	f.students[studentID] = s
	return nil
}

// fakeReportStore serves a fixed student set to the report pipeline.
type fakeReportStore struct {
	students []model.Student
}

func (f *fakeReportStore) StudentsWithHistory(_ context.Context) ([]model.Student, error) {
	out := make([]model.Student, len(f.students))
	copy(out, f.students)
	return out, nil
}
