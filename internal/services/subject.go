package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zaqqye/gazetrack_backend/internal/models"
	"github.com/zaqqye/gazetrack_backend/internal/repository"
)

type SubjectService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewSubjectService(db *gorm.DB, log *zap.Logger) *SubjectService {
	return &SubjectService{db: db, log: log}
}

// SubjectSummary is the JSON shape of a subject in listings.
type SubjectSummary struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Age     int    `json:"age"`
}

func summarize(subjects []models.Subject) []SubjectSummary {
	out := make([]SubjectSummary, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, SubjectSummary{ID: s.ID, Name: s.Name, Surname: s.Surname, Age: s.Age})
	}
	return out
}

// SubjectRegistration holds the raw form values of a new participant.
type SubjectRegistration struct {
	Name    string
	Surname string
	Age     string
}

func (s *SubjectService) GetAllSubjects(ctx context.Context) ([]SubjectSummary, error) {
	subjects, err := repository.NewSubjectRepository(repository.NewSession(s.db)).GetAllSubjects(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(subjects), nil
}

func (s *SubjectService) GetSubjectByID(ctx context.Context, id uint) (*models.Subject, error) {
	return repository.NewSubjectRepository(repository.NewSession(s.db)).GetSubjectByID(ctx, id)
}

func (s *SubjectService) ListSubjects(ctx context.Context, filter repository.SubjectFilter) ([]SubjectSummary, error) {
	subjects, err := repository.NewSubjectRepository(repository.NewSession(s.db)).SearchSubjects(ctx, filter)
	if err != nil {
		return nil, err
	}
	return summarize(subjects), nil
}

// RegisterSubject creates a participant under activeStudyID, which may be
// nil when no study is configured.
func (s *SubjectService) RegisterSubject(ctx context.Context, reg SubjectRegistration, activeStudyID *uint) (*models.Subject, error) {
	name := strings.TrimSpace(reg.Name)
	surname := strings.TrimSpace(reg.Surname)
	if name == "" || surname == "" {
		return nil, invalid("name and surname are required")
	}
	age, err := strconv.Atoi(strings.TrimSpace(reg.Age))
	if err != nil || age < 0 {
		return nil, invalid("age must be a non-negative integer")
	}

	var subject *models.Subject
	studyID := activeStudyID
	err = inSession(ctx, s.db, func(sess *repository.Session) error {
		if studyID != nil {
			_, err := repository.NewStudyRepository(sess).GetStudyByID(ctx, *studyID)
			if errors.Is(err, repository.ErrNotFound) {
				s.log.Warn("Active study no longer exists, registering without study", zap.Uint("study_id", *studyID))
				studyID = nil
			} else if err != nil {
				return err
			}
		}
		var err error
		subject, err = repository.NewSubjectRepository(sess).CreateSubject(ctx, name, surname, age, studyID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Subject registered", zap.Uint("subject_id", subject.ID), zap.Uintp("study_id", studyID))
	return subject, nil
}

// StudyGroup is a study together with its subjects.
type StudyGroup struct {
	Study    models.Study     `json:"study"`
	Subjects []SubjectSummary `json:"subjects"`
}

type SubjectGroups struct {
	Studies    []StudyGroup     `json:"studies"`
	Unassigned []SubjectSummary `json:"unassigned"`
}

// GroupByStudy lists studies newest first, each with its subjects, followed
// by the subjects that belong to no study.
func (s *SubjectService) GroupByStudy(ctx context.Context) (*SubjectGroups, error) {
	sess := repository.NewSession(s.db)
	studies, err := repository.NewStudyRepository(sess).GetAllStudies(ctx)
	if err != nil {
		return nil, err
	}
	subjectRepo := repository.NewSubjectRepository(sess)

	groups := &SubjectGroups{Studies: make([]StudyGroup, 0, len(studies))}
	for _, study := range studies {
		subjects, err := subjectRepo.GetSubjectsByStudy(ctx, &study.ID)
		if err != nil {
			return nil, err
		}
		groups.Studies = append(groups.Studies, StudyGroup{Study: study, Subjects: summarize(subjects)})
	}
	unassigned, err := subjectRepo.GetSubjectsByStudy(ctx, nil)
	if err != nil {
		return nil, err
	}
	groups.Unassigned = summarize(unassigned)
	return groups, nil
}

// DeleteSubject removes the subject with all of its recorded data.
func (s *SubjectService) DeleteSubject(ctx context.Context, id uint) error {
	err := inSession(ctx, s.db, func(sess *repository.Session) error {
		deleted, err := repository.NewSubjectRepository(sess).DeleteSubject(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Error("Failed to delete subject", zap.Uint("subject_id", id), zap.Error(err))
		}
		return err
	}
	s.log.Info("Subject deleted", zap.Uint("subject_id", id))
	return nil
}
