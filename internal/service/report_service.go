package service

import (
	"context"
	"time"

	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/report"
	"github.com/spec-kit/hotel-service/internal/repository"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

// ReportService renders back-office PDFs.
type ReportService struct {
	repos repository.Repositories
	now   func() time.Time
}

// NewReportService constructs the service.
func NewReportService(repos repository.Repositories) *ReportService {
	return &ReportService{repos: repos, now: time.Now}
}

// TaskReport renders tasks scheduled in [from, to] with staff and room names.
func (s *ReportService) TaskReport(ctx context.Context, actor *domain.StaffMember, from, to *time.Time, statuses []domain.TaskStatus) ([]byte, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	tasks, err := s.repos.Tasks.List(ctx, repository.TaskFilter{
		Statuses:      statuses,
		ScheduledFrom: from,
		ScheduledTo:   to,
		Limit:         500,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	staff, err := s.repos.Staff.List(ctx, repository.StaffFilter{Limit: 500})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	rooms, err := s.repos.Rooms.List(ctx, repository.RoomFilter{Limit: 500})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	names := make(map[string]string, len(staff))
	for _, m := range staff {
		names[m.ID] = m.Name
	}
	numbers := make(map[string]string, len(rooms))
	for _, r := range rooms {
		numbers[r.ID] = r.Number
	}

	rows := make([]report.TaskRow, 0, len(tasks))
	for _, t := range tasks {
		row := report.TaskRow{Task: t, RoomNumber: numbers[t.RoomID]}
		if t.AssigneeID != nil {
			row.StaffName = names[*t.AssigneeID]
		}
		rows = append(rows, row)
	}

	pdf, err := report.TaskReport("Task report", s.now(), rows)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return pdf, nil
}
