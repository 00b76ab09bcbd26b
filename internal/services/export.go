package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zaqqye/gazetrack_backend/internal/models"
	"github.com/zaqqye/gazetrack_backend/internal/repository"
)

var (
	pointsHeader    = []string{"date", "x_mouse", "y_mouse", "x_gaze", "y_gaze"}
	taskLogsHeader  = []string{"start_time", "end_time", "response", "task_description", "task_type", "task_version"}
	allPointsHeader = []string{"subject_id", "name", "surname", "age", "study", "date", "x_mouse", "y_mouse", "x_gaze", "y_gaze"}
)

const allPointsSheet = "Points"

type ExportService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewExportService(db *gorm.DB, log *zap.Logger) *ExportService {
	return &ExportService{db: db, log: log}
}

// ExportPointsCSV writes one row per measurement of the subject. A subject
// without measurements yields only the header.
func (s *ExportService) ExportPointsCSV(ctx context.Context, subjectID uint) ([]byte, error) {
	sess := repository.NewSession(s.db)
	if _, err := repository.NewSubjectRepository(sess).GetByID(ctx, subjectID); err != nil {
		return nil, err
	}
	measurements, err := repository.NewMeasurementRepository(sess).GetMeasurementsBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(measurements))
	for _, m := range measurements {
		rows = append(rows, measurementRow(m))
	}
	return writeCSV(pointsHeader, rows)
}

func (s *ExportService) ExportTaskLogsCSV(ctx context.Context, subjectID uint) ([]byte, error) {
	logs, err := subjectTaskLogs(ctx, repository.NewSession(s.db), subjectID)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(logs))
	for _, l := range logs {
		end := ""
		if l.EndTime != nil {
			end = l.EndTime.Format(CSVTimeLayout)
		}
		rows = append(rows, []string{
			l.StartTime.Format(CSVTimeLayout),
			end,
			deref(l.Response),
			deref(l.TaskDescription),
			deref(l.TaskType),
			deref(l.TaskVersion),
		})
	}
	return writeCSV(taskLogsHeader, rows)
}

// ExportAllPointsCSV joins every subject with its measurements. It returns
// ErrNotFound only when there are no subjects at all.
func (s *ExportService) ExportAllPointsCSV(ctx context.Context) ([]byte, error) {
	rows, err := s.allPointRows(ctx)
	if err != nil {
		return nil, err
	}
	return writeCSV(allPointsHeader, rows)
}

// ExportAllPointsXLSX holds the same rows as ExportAllPointsCSV in a
// single-sheet workbook.
func (s *ExportService) ExportAllPointsXLSX(ctx context.Context) ([]byte, error) {
	rows, err := s.allPointRows(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), allPointsSheet); err != nil {
		return nil, err
	}
	sw, err := f.NewStreamWriter(allPointsSheet)
	if err != nil {
		return nil, err
	}
	if err := sw.SetRow("A1", toCells(allPointsHeader)); err != nil {
		return nil, err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := sw.SetRow(cell, toCells(row)); err != nil {
			return nil, err
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *ExportService) allPointRows(ctx context.Context) ([][]string, error) {
	sess := repository.NewSession(s.db)
	subjects, err := repository.NewSubjectRepository(sess).GetAllSubjects(ctx)
	if err != nil {
		return nil, err
	}
	if len(subjects) == 0 {
		return nil, ErrNotFound
	}
	studies, err := repository.NewStudyRepository(sess).GetAllStudies(ctx)
	if err != nil {
		return nil, err
	}
	studyNames := make(map[uint]string, len(studies))
	for _, st := range studies {
		studyNames[st.ID] = st.Name
	}

	measurements := repository.NewMeasurementRepository(sess)
	var rows [][]string
	for _, subject := range subjects {
		study := ""
		if subject.StudyID != nil {
			study = studyNames[*subject.StudyID]
		}
		prefix := []string{
			strconv.FormatUint(uint64(subject.ID), 10),
			subject.Name,
			subject.Surname,
			strconv.Itoa(subject.Age),
			study,
		}
		ms, err := measurements.GetMeasurementsBySubject(ctx, subject.ID)
		if err != nil {
			return nil, err
		}
		for _, m := range ms {
			row := append(append(make([]string, 0, len(allPointsHeader)), prefix...), measurementRow(m)...)
			rows = append(rows, row)
		}
	}
	s.log.Debug("Built all-points export", zap.Int("subjects", len(subjects)), zap.Int("rows", len(rows)))
	return rows, nil
}

func measurementRow(m models.Measurement) []string {
	return []string{
		m.Date.Format(CSVTimeLayout),
		coord(m.MousePoint, true),
		coord(m.MousePoint, false),
		coord(m.GazePoint, true),
		coord(m.GazePoint, false),
	}
}

func coord(p *models.Point, x bool) string {
	if p == nil {
		return ""
	}
	if x {
		return formatFloat(p.X)
	}
	return formatFloat(p.Y)
}

// formatFloat keeps a decimal point on whole numbers so 100 renders as 100.0.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}
