package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/helli-it/support-tracker/internal/access"
	"github.com/helli-it/support-tracker/internal/domain"
	"github.com/helli-it/support-tracker/internal/jalali"
	"github.com/helli-it/support-tracker/internal/persistence"
	"github.com/helli-it/support-tracker/internal/repository"
	apperrors "github.com/helli-it/support-tracker/pkg/util"
)

// Summarizer produces one paragraph for a labeled list of snippets.
// Implementations must degrade internally; Aggregate never fails on it.
type Summarizer interface {
	Summarize(ctx context.Context, label string, snippets []string) string
}

// ReportQuery carries the raw date bounds of a report request.
type ReportQuery struct {
	StartDate string
	EndDate   string
}

// DepartmentCount is the total/closed pair for one department.
type DepartmentCount struct {
	DepartmentID string `json:"department_id"`
	Name         string `json:"name"`
	Total        int    `json:"total"`
	Closed       int    `json:"closed"`
}

// StatusCount is the count of one status value.
type StatusCount struct {
	Status domain.TicketStatus `json:"status"`
	Label  string              `json:"label"`
	Count  int                 `json:"count"`
}

// DayCount is one point of the daily trend series.
type DayCount struct {
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
	Count int       `json:"count"`
}

// OperatorPerformance attributes department tickets to an operator by
// membership, not by direct assignment.
type OperatorPerformance struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Total      int    `json:"total"`
	Closed     int    `json:"closed"`
}

// CounselorPerformance counts tickets by creator, counselors only.
type CounselorPerformance struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

// ReportResult bundles the KPIs of the reporting dashboard.
type ReportResult struct {
	Total             int                    `json:"total"`
	Closed            int                    `json:"closed"`
	Open              int                    `json:"open"`
	AvgResolutionDays float64                `json:"avg_resolution_days"`
	OldestOpenAgeDays int                    `json:"oldest_open_age_days"`
	ByDepartment      []DepartmentCount      `json:"by_department"`
	ByStatus          []StatusCount          `json:"by_status"`
	Trend             []DayCount             `json:"trend"`
	Operators         []OperatorPerformance  `json:"operators"`
	Counselors        []CounselorPerformance `json:"counselors"`
	Summary           string                 `json:"summary,omitempty"`
}

// ReportService computes the reporting KPIs over a date-bounded ticket
// set. It mutates nothing.
type ReportService struct {
	store      repository.Store
	cache      *persistence.Redis
	summarizer Summarizer
	now        func() time.Time
}

const reportCacheTTL = 5 * time.Minute

// NewReportService constructs the service. Cache and summarizer are
// optional.
func NewReportService(store repository.Store, cache *persistence.Redis, summarizer Summarizer) *ReportService {
	return &ReportService{store: store, cache: cache, summarizer: summarizer, now: time.Now}
}

// Aggregate computes the report for the requested shamsi date range.
// Admin only.
func (s *ReportService) Aggregate(ctx context.Context, actor *domain.User, query ReportQuery) (*ReportResult, error) {
	if !access.CanViewReports(actor) {
		return nil, apperrors.NewForbidden("admin role required")
	}

	filter := repository.TicketFilter{Scope: access.Scope{Kind: access.ScopeAll}}
	if query.StartDate != "" {
		from, err := jalali.ParseDate(query.StartDate)
		if err != nil {
			return nil, apperrors.NewFieldValidationError("start_date", err.Error())
		}
		filter.CreatedFrom = &from
	}
	if query.EndDate != "" {
		to, err := jalali.ParseEndOfDay(query.EndDate)
		if err != nil {
			return nil, apperrors.NewFieldValidationError("end_date", err.Error())
		}
		filter.CreatedTo = &to
	}

	cacheKey := fmt.Sprintf("report:%s:%s", query.StartDate, query.EndDate)
	if cached := s.cache.GetString(ctx, cacheKey); cached != "" {
		var result ReportResult
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			return &result, nil
		}
	}

	tickets, err := s.store.Tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, err
	}
	users, err := s.store.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	departments, err := s.store.Departments.List(ctx)
	if err != nil {
		return nil, err
	}

	result := buildReport(tickets, users, departments, s.now())

	if s.summarizer != nil {
		snippets := make([]string, 0, len(tickets))
		for i := range tickets {
			snippets = append(snippets, tickets[i].Title)
		}
		result.Summary = s.summarizer.Summarize(ctx, "گزارش تیکت‌ها", snippets)
	}

	if encoded, err := json.Marshal(result); err == nil {
		s.cache.SetString(ctx, cacheKey, string(encoded), reportCacheTTL)
	}
	return result, nil
}

// buildReport is the pure aggregation core.
func buildReport(tickets []domain.Ticket, users []domain.User, departments []domain.Department, now time.Time) *ReportResult {
	result := &ReportResult{Total: len(tickets)}

	var resolutionSum time.Duration
	var resolutionCount int
	var oldestOpen *domain.Ticket

	statusCounts := map[domain.TicketStatus]int{}
	deptTotals := map[string]int{}
	deptClosed := map[string]int{}
	dayCounts := map[time.Time]int{}
	creatorCounts := map[string]int{}

	for i := range tickets {
		ticket := &tickets[i]
		statusCounts[ticket.Status]++
		deptTotals[ticket.DepartmentID]++
		dayCounts[jalali.StartOfLocalDay(ticket.CreatedAt)]++
		creatorCounts[ticket.CreatorID]++

		if ticket.Status == domain.TicketStatusClosed {
			result.Closed++
			deptClosed[ticket.DepartmentID]++
			if !ticket.UpdatedAt.IsZero() {
				resolutionSum += ticket.UpdatedAt.Sub(ticket.CreatedAt)
				resolutionCount++
			}
		} else if oldestOpen == nil || ticket.CreatedAt.Before(oldestOpen.CreatedAt) {
			oldestOpen = ticket
		}
	}

	result.Open = result.Total - result.Closed

	if resolutionCount > 0 {
		days := resolutionSum.Hours() / 24 / float64(resolutionCount)
		result.AvgResolutionDays = math.Round(days*10) / 10
	}
	if oldestOpen != nil {
		result.OldestOpenAgeDays = int(now.Sub(oldestOpen.CreatedAt).Hours() / 24)
	}

	for _, dept := range departments {
		if deptTotals[dept.ID] == 0 {
			continue
		}
		result.ByDepartment = append(result.ByDepartment, DepartmentCount{
			DepartmentID: dept.ID,
			Name:         dept.Name,
			Total:        deptTotals[dept.ID],
			Closed:       deptClosed[dept.ID],
		})
	}

	for _, status := range []domain.TicketStatus{domain.TicketStatusNew, domain.TicketStatusInProgress, domain.TicketStatusClosed} {
		result.ByStatus = append(result.ByStatus, StatusCount{
			Status: status,
			Label:  status.Label(),
			Count:  statusCounts[status],
		})
	}

	days := make([]time.Time, 0, len(dayCounts))
	for day := range dayCounts {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	for _, day := range days {
		result.Trend = append(result.Trend, DayCount{
			Date:  day,
			Label: jalali.FormatDate(day),
			Count: dayCounts[day],
		})
	}

	deptNames := make(map[string]string, len(departments))
	for _, dept := range departments {
		deptNames[dept.ID] = dept.Name
	}
	for i := range users {
		user := &users[i]
		switch user.Role {
		case domain.RoleOperator:
			if user.DepartmentID == nil {
				continue
			}
			result.Operators = append(result.Operators, OperatorPerformance{
				UserID:     user.ID,
				Name:       user.FullName(),
				Department: deptNames[*user.DepartmentID],
				Total:      deptTotals[*user.DepartmentID],
				Closed:     deptClosed[*user.DepartmentID],
			})
		case domain.RoleCounselor:
			result.Counselors = append(result.Counselors, CounselorPerformance{
				UserID: user.ID,
				Name:   user.FullName(),
				Count:  creatorCounts[user.ID],
			})
		}
	}

	return result
}
