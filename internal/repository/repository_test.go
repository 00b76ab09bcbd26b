package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zaqqye/gazetrack_backend/internal/database"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	db, err := database.OpenInMemory()
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	return NewSession(db)
}

func strPtr(s string) *string { return &s }

func TestSubjectRepository(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)
	subjects := NewSubjectRepository(s)
	studies := NewStudyRepository(s)

	t.Run("CreateAndGet", func(t *testing.T) {
		subject, err := subjects.CreateSubject(ctx, "Juan", "Pérez", 25, nil)
		if err != nil {
			t.Fatalf("CreateSubject: %v", err)
		}
		if err := subjects.Commit(); err != nil {
			t.Fatalf("Commit: %v", err)
		}
		if subject.ID == 0 {
			t.Fatal("expected an id after commit")
		}

		got, err := subjects.GetSubjectByID(ctx, subject.ID)
		if err != nil {
			t.Fatalf("GetSubjectByID: %v", err)
		}
		if got.Name != "Juan" || got.Surname != "Pérez" || got.Age != 25 || got.StudyID != nil {
			t.Errorf("unexpected subject %+v", got)
		}

		if _, err := subjects.GetSubjectByID(ctx, 99999); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("WithStudy", func(t *testing.T) {
		study, err := studies.CreateStudy(ctx, StudyInput{Name: "Test Study"})
		if err != nil {
			t.Fatalf("CreateStudy: %v", err)
		}
		subject, err := subjects.CreateSubject(ctx, "María", "González", 30, &study.ID)
		if err != nil {
			t.Fatalf("CreateSubject: %v", err)
		}
		if err := subjects.Commit(); err != nil {
			t.Fatalf("Commit: %v", err)
		}

		got, err := subjects.GetSubjectByID(ctx, subject.ID)
		if err != nil {
			t.Fatalf("GetSubjectByID: %v", err)
		}
		if got.Study == nil || got.Study.Name != "Test Study" {
			t.Errorf("expected study to be loaded, got %+v", got.Study)
		}

		inStudy, err := subjects.GetSubjectsByStudy(ctx, &study.ID)
		if err != nil || len(inStudy) != 1 || inStudy[0].ID != subject.ID {
			t.Errorf("GetSubjectsByStudy = %v, %v", inStudy, err)
		}
		without, err := subjects.GetSubjectsByStudy(ctx, nil)
		if err != nil || len(without) != 1 || without[0].Name != "Juan" {
			t.Errorf("subjects without study = %v, %v", without, err)
		}
	})

	t.Run("AllInInsertionOrder", func(t *testing.T) {
		all, err := subjects.GetAllSubjects(ctx)
		if err != nil {
			t.Fatalf("GetAllSubjects: %v", err)
		}
		if len(all) != 2 || all[0].Name != "Juan" || all[1].Name != "María" {
			t.Errorf("unexpected order %v", all)
		}
	})

	t.Run("Search", func(t *testing.T) {
		found, err := subjects.SearchSubjects(ctx, SubjectFilter{Query: "gonz"})
		if err != nil {
			t.Fatalf("SearchSubjects: %v", err)
		}
		if len(found) != 1 || found[0].Name != "María" {
			t.Errorf("unexpected search result %v", found)
		}
	})

	t.Run("SearchWildcardsAreLiteral", func(t *testing.T) {
		if _, err := subjects.CreateSubject(ctx, "Ana_Luz", "Ríos", 22, nil); err != nil {
			t.Fatalf("CreateSubject: %v", err)
		}
		if err := subjects.Commit(); err != nil {
			t.Fatalf("Commit: %v", err)
		}
		tests := map[string]int{"_": 1, "%": 0, `\`: 0, "a_l": 1}
		for query, want := range tests {
			found, err := subjects.SearchSubjects(ctx, SubjectFilter{Query: query})
			if err != nil {
				t.Fatalf("SearchSubjects(%q): %v", query, err)
			}
			if len(found) != want {
				t.Errorf("SearchSubjects(%q) returned %d subjects, want %d", query, len(found), want)
			}
		}
	})

	t.Run("UnknownStudyRejected", func(t *testing.T) {
		missing := uint(4242)
		if _, err := subjects.CreateSubject(ctx, "Ghost", "Study", 40, &missing); err == nil {
			t.Error("expected foreign key violation for unknown study")
		}
		if err := subjects.Rollback(); err != nil {
			t.Fatalf("Rollback: %v", err)
		}
	})
}

func TestDeleteSubjectCascades(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)
	subjects := NewSubjectRepository(s)
	points := NewPointRepository(s)
	measurements := NewMeasurementRepository(s)
	tasklogs := NewTaskLogRepository(s)

	subject, _ := subjects.CreateSubject(ctx, "Test", "User", 25, nil)
	gaze, _ := points.CreatePoint(ctx, 1, 2)
	if _, err := measurements.CreateMeasurement(ctx, time.Now(), subject.ID, gaze, nil); err != nil {
		t.Fatalf("CreateMeasurement: %v", err)
	}
	if _, err := tasklogs.CreateTaskLog(ctx, TaskLogInput{StartTime: time.Now(), SubjectID: subject.ID}); err != nil {
		t.Fatalf("CreateTaskLog: %v", err)
	}
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	deleted, err := subjects.DeleteSubject(ctx, subject.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteSubject = %v, %v", deleted, err)
	}
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if n, _ := measurements.CountBySubject(ctx, subject.ID); n != 0 {
		t.Errorf("expected measurements to cascade, %d left", n)
	}
	if n, _ := tasklogs.CountTaskLogsBySubject(ctx, subject.ID); n != 0 {
		t.Errorf("expected task logs to cascade, %d left", n)
	}
	if deleted, _ := subjects.DeleteSubject(ctx, subject.ID); deleted {
		t.Error("second delete should report nothing removed")
	}
	_ = s.Rollback()
}

func TestStudyRepository(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)
	studies := NewStudyRepository(s)

	if _, err := studies.GetActiveStudy(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected no active study on empty table, got %v", err)
	}

	var ids []uint
	for _, name := range []string{"A", "B", "C"} {
		study, err := studies.CreateStudy(ctx, StudyInput{Name: name, Description: strPtr(name + " desc")})
		if err != nil {
			t.Fatalf("CreateStudy(%s): %v", name, err)
		}
		ids = append(ids, study.ID)
	}
	if err := studies.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	t.Run("NewestFirst", func(t *testing.T) {
		all, err := studies.GetAllStudies(ctx)
		if err != nil {
			t.Fatalf("GetAllStudies: %v", err)
		}
		if len(all) != 3 || all[0].Name != "C" || all[1].Name != "B" || all[2].Name != "A" {
			t.Errorf("unexpected order %v", all)
		}
		active, err := studies.GetActiveStudy(ctx)
		if err != nil || active.Name != "C" {
			t.Errorf("GetActiveStudy = %v, %v", active, err)
		}
	})

	t.Run("ByName", func(t *testing.T) {
		study, err := studies.GetStudyByName(ctx, "B")
		if err != nil || study.ID != ids[1] {
			t.Errorf("GetStudyByName = %v, %v", study, err)
		}
	})

	t.Run("PartialUpdate", func(t *testing.T) {
		updated, err := studies.UpdateStudy(ctx, ids[0], StudyUpdate{Name: strPtr("A2"), PrototypeURL: strPtr("https://figma.com/a")})
		if err != nil {
			t.Fatalf("UpdateStudy: %v", err)
		}
		if err := studies.Commit(); err != nil {
			t.Fatalf("Commit: %v", err)
		}
		got, _ := studies.GetStudyByID(ctx, ids[0])
		if got.Name != "A2" || got.PrototypeURL == nil || *got.PrototypeURL != "https://figma.com/a" {
			t.Errorf("fields not applied: %+v", got)
		}
		if got.Description == nil || *got.Description != "A desc" {
			t.Errorf("description should be untouched, got %v", got.Description)
		}
		if !updated.CreatedAt.Equal(got.CreatedAt) {
			t.Errorf("created_at changed")
		}

		if _, err := studies.UpdateStudy(ctx, 99999, StudyUpdate{Name: strPtr("x")}); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("FindByPrototype", func(t *testing.T) {
		found, err := studies.FindByPrototype(ctx, strPtr("https://figma.com/a"), nil)
		if err != nil || found.ID != ids[0] {
			t.Errorf("FindByPrototype = %v, %v", found, err)
		}
		if _, err := studies.FindByPrototype(ctx, strPtr("https://other"), nil); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		subjects := NewSubjectRepository(s)
		subject, _ := subjects.CreateSubject(ctx, "Kept", "Subject", 20, &ids[1])

		deleted, err := studies.DeleteStudy(ctx, ids[1])
		if err != nil || !deleted {
			t.Fatalf("DeleteStudy = %v, %v", deleted, err)
		}
		if err := studies.Commit(); err != nil {
			t.Fatalf("Commit: %v", err)
		}

		all, _ := studies.GetAllStudies(ctx)
		for _, st := range all {
			if st.ID == ids[1] {
				t.Error("deleted study still listed")
			}
		}
		kept, err := subjects.GetSubjectByID(ctx, subject.ID)
		if err != nil || kept.StudyID != nil {
			t.Errorf("subject should survive with no study, got %+v, %v", kept, err)
		}

		deleted, err = studies.DeleteStudy(ctx, 99999)
		if err != nil || deleted {
			t.Errorf("deleting a missing study = %v, %v", deleted, err)
		}
	})
}

func TestMeasurementRepository(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)
	subjects := NewSubjectRepository(s)
	points := NewPointRepository(s)
	measurements := NewMeasurementRepository(s)

	subject, _ := subjects.CreateSubject(ctx, "Test", "User", 25, nil)
	gaze, _ := points.CreatePoint(ctx, 100.0, 200.0)
	mouse, _ := points.CreatePoint(ctx, 105.0, 205.0)
	date := time.Date(2025, 10, 23, 10, 30, 0, 0, time.UTC)

	if _, err := measurements.CreateMeasurement(ctx, date, subject.ID, gaze, mouse); err != nil {
		t.Fatalf("CreateMeasurement: %v", err)
	}
	if _, err := measurements.CreateMeasurement(ctx, date.Add(time.Second), subject.ID, nil, nil); err != nil {
		t.Fatalf("CreateMeasurement without points: %v", err)
	}
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got, err := measurements.GetMeasurementsBySubject(ctx, subject.ID)
	if err != nil {
		t.Fatalf("GetMeasurementsBySubject: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 measurements, got %d", len(got))
	}
	first := got[0]
	if first.GazePoint == nil || first.GazePoint.X != 100.0 || first.GazePoint.Y != 200.0 {
		t.Errorf("gaze point not loaded: %+v", first.GazePoint)
	}
	if first.MousePoint == nil || first.MousePoint.X != 105.0 || first.MousePoint.Y != 205.0 {
		t.Errorf("mouse point not loaded: %+v", first.MousePoint)
	}
	if !first.Date.Equal(date) {
		t.Errorf("date = %v, want %v", first.Date, date)
	}
	if got[1].GazePoint != nil || got[1].MousePoint != nil {
		t.Errorf("second measurement should have no points")
	}
	if n, _ := measurements.CountBySubject(ctx, subject.ID); n != 2 {
		t.Errorf("CountBySubject = %d", n)
	}
}

func TestTaskLogRepository(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)
	subjects := NewSubjectRepository(s)
	tasklogs := NewTaskLogRepository(s)

	subject, _ := subjects.CreateSubject(ctx, "Test", "User", 25, nil)
	start := time.Date(2025, 10, 23, 10, 0, 0, 0, time.UTC)
	end := start.Add(5 * time.Minute)

	if _, err := tasklogs.CreateTaskLog(ctx, TaskLogInput{StartTime: start, EndTime: &end, Response: strPtr("Completed"), SubjectID: subject.ID}); err != nil {
		t.Fatalf("CreateTaskLog: %v", err)
	}
	if _, err := tasklogs.CreateTaskLog(ctx, TaskLogInput{StartTime: start.Add(10 * time.Minute), SubjectID: subject.ID}); err != nil {
		t.Fatalf("CreateTaskLog in progress: %v", err)
	}
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	logs, err := tasklogs.GetTaskLogsBySubject(ctx, subject.ID)
	if err != nil {
		t.Fatalf("GetTaskLogsBySubject: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	if logs[0].Response == nil || *logs[0].Response != "Completed" || logs[0].EndTime == nil || !logs[0].EndTime.Equal(end) {
		t.Errorf("unexpected first log %+v", logs[0])
	}
	if !logs[1].InProgress() {
		t.Error("second log should be in progress")
	}
	if n, _ := tasklogs.CountTaskLogsBySubject(ctx, subject.ID); n != 2 {
		t.Errorf("CountTaskLogsBySubject = %d", n)
	}
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)
	users := NewUserRepository(s)

	if exists, _ := users.UserExists(ctx, "alice"); exists {
		t.Fatal("alice should not exist yet")
	}
	alice, err := users.CreateUser(ctx, "alice", "pass1")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	bob, _ := users.CreateUser(ctx, "bob", "pass2")
	if err := users.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if alice.PasswordHash == "pass1" || alice.PasswordHash == bob.PasswordHash {
		t.Error("passwords must be stored hashed")
	}
	if !alice.CheckPassword("pass1") || alice.CheckPassword("pass2") {
		t.Error("password verification mismatch")
	}

	found, err := users.GetUserByUsername(ctx, "alice")
	if err != nil || found.ID != alice.ID {
		t.Errorf("GetUserByUsername = %v, %v", found, err)
	}
	if _, err := users.GetUserByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if exists, _ := users.UserExists(ctx, "alice"); !exists {
		t.Error("alice should exist")
	}
	if n, _ := users.CountUsers(ctx); n != 2 {
		t.Errorf("CountUsers = %d", n)
	}
	if all, _ := users.GetAllUsers(ctx); len(all) != 2 {
		t.Errorf("GetAllUsers returned %d users", len(all))
	}

	if _, err := users.CreateUser(ctx, "alice", "again"); err == nil {
		t.Error("expected unique violation for duplicate username")
	}
	_ = users.Rollback()
}

func TestSessionRollbackDiscardsBatch(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)
	subjects := NewSubjectRepository(s)
	measurements := NewMeasurementRepository(s)

	if _, err := subjects.CreateSubject(ctx, "Staged", "Only", 30, nil); err != nil {
		t.Fatalf("CreateSubject: %v", err)
	}
	if !s.Pending() {
		t.Fatal("expected staged changes")
	}
	if _, err := measurements.CreateMeasurement(ctx, time.Now(), 99999, nil, nil); err == nil {
		t.Fatal("expected foreign key violation for unknown subject")
	}
	if err := s.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if s.Pending() {
		t.Error("rollback should close the transaction")
	}

	all, err := subjects.GetAllSubjects(ctx)
	if err != nil {
		t.Fatalf("GetAllSubjects: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("rolled back subject is visible: %v", all)
	}
}
