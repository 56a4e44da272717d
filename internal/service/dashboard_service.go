package service

import (
	"context"

	"acqplan/internal/access"
	"acqplan/internal/model"
	"acqplan/internal/repository"
	"acqplan/internal/workflow"

	"github.com/shopspring/decimal"
)

const (
	dashboardRecent = 5
	dashboardTop    = 5
)

// approvedStatuses count towards the approved value.
var approvedStatuses = []string{workflow.StatusApproved, workflow.StatusInProgress, workflow.StatusCompleted}

type DashboardResponse struct {
	StatusCounts   []model.StatusCount       `json:"status_counts"`
	TotalRequests  int64                     `json:"total_requests"`
	TotalValue     decimal.Decimal           `json:"total_value"`
	ApprovedValue  decimal.Decimal           `json:"approved_value"`
	PendingForMe   int64                     `json:"pending_for_me"`
	Recent         []RequestResponse         `json:"recent"`
	TopDepartments []model.DepartmentRanking `json:"top_departments"`
}

type DashboardService interface {
	GetDashboard(ctx context.Context, actor access.Actor) (*DashboardResponse, error)
}

type dashboardService struct {
	repo repository.StatisticsRepository
}

func NewDashboardService(repo repository.StatisticsRepository) DashboardService {
	return &dashboardService{repo: repo}
}

// pendingStatuses lists what waits on the actor: the manager stage for
// managers, the approver stage for approvers, both for admins and returned
// requests for plain users.
func pendingStatuses(role workflow.Role) []string {
	switch role {
	case workflow.RoleManager:
		return []string{workflow.StatusPendingManager, workflow.StatusReopened}
	case workflow.RoleApprover:
		return []string{workflow.StatusPendingApproval}
	case workflow.RoleAdmin:
		return []string{workflow.StatusPendingManager, workflow.StatusReopened, workflow.StatusPendingApproval}
	default:
		return []string{workflow.StatusOpen}
	}
}

// GetDashboard aggregates the requests visible to actor.
func (s *dashboardService) GetDashboard(ctx context.Context, actor access.Actor) (*DashboardResponse, error) {
	scope := access.Scope(actor)
	resp := &DashboardResponse{}

	counts, err := s.repo.StatusCounts(ctx, scope)
	if err != nil {
		return nil, err
	}
	resp.StatusCounts = counts
	for _, c := range counts {
		resp.TotalRequests += c.Count
	}

	if resp.TotalValue, err = s.repo.SumValue(ctx, scope); err != nil {
		return nil, err
	}
	if resp.ApprovedValue, err = s.repo.SumValue(ctx, scope, approvedStatuses...); err != nil {
		return nil, err
	}
	if resp.PendingForMe, err = s.repo.CountInStatus(ctx, scope, pendingStatuses(actor.Role)...); err != nil {
		return nil, err
	}

	recent, err := s.repo.Recent(ctx, scope, dashboardRecent)
	if err != nil {
		return nil, err
	}
	resp.Recent = make([]RequestResponse, 0, len(recent))
	for i := range recent {
		resp.Recent = append(resp.Recent, toRequestResponse(&recent[i]))
	}

	if resp.TopDepartments, err = s.repo.TopDepartments(ctx, scope, dashboardTop); err != nil {
		return nil, err
	}
	if resp.TopDepartments == nil {
		resp.TopDepartments = []model.DepartmentRanking{}
	}
	return resp, nil
}
