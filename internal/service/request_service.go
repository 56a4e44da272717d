package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"acqplan/internal/access"
	"acqplan/internal/apperr"
	"acqplan/internal/model"
	"acqplan/internal/repository"
	"acqplan/internal/workflow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type RequestItemInput struct {
	ItemName                string          `json:"item_name" binding:"required"`
	ItemTypeID              *string         `json:"item_type_id"`
	ItemCategoryID          *string         `json:"item_category_id"`
	AcquisitionType         string          `json:"acquisition_type" binding:"required,acquisition_type"`
	ContractTypeID          *string         `json:"contract_type_id"`
	AcquisitionTypeMasterID *string         `json:"acquisition_type_master_id"`
	Quantity                int             `json:"quantity" binding:"required,gt=0"`
	UnitValue               decimal.Decimal `json:"unit_value" binding:"gte=0"`
	Specifications          string          `json:"specifications"`
	Brand                   string          `json:"brand"`
	Model                   string          `json:"model"`
}

type CreateRequestDTO struct {
	Description   string             `json:"description" binding:"required"`
	Justification string             `json:"justification"`
	DepartmentID  *string            `json:"department_id"` // honoured for administrators only
	Items         []RequestItemInput `json:"items" binding:"required,min=1,dive"`
}

// EditRequestDTO replaces the content of a request. Items is the complete new set.
type EditRequestDTO struct {
	Description   string             `json:"description" binding:"required"`
	Justification string             `json:"justification"`
	Items         []RequestItemInput `json:"items" binding:"required,min=1,dive"`
}

type TransitionDTO struct {
	Reason string `json:"reason"`
}

type ReopenDTO struct {
	ReopenReason string `json:"reopenReason" binding:"required"`
}

// RequestListQuery carries the raw list filters from the query string.
type RequestListQuery struct {
	Status             string `form:"status"`
	DepartmentID       string `form:"departmentId"`
	ParentDepartmentID string `form:"parentDepartmentId"`
	StartDate          string `form:"startDate"`
	EndDate            string `form:"endDate"`
	ContractTypeID     string `form:"contractTypeId"`
	AcquisitionTypeID  string `form:"acquisitionTypeId"`
	Search             string `form:"search"`
}

type RequestItemResponse struct {
	ID                      string          `json:"id"`
	ItemName                string          `json:"item_name"`
	ItemTypeID              *string         `json:"item_type_id"`
	ItemCategoryID          *string         `json:"item_category_id"`
	AcquisitionType         string          `json:"acquisition_type"`
	ContractTypeID          *string         `json:"contract_type_id"`
	AcquisitionTypeMasterID *string         `json:"acquisition_type_master_id"`
	Quantity                int             `json:"quantity"`
	UnitValue               decimal.Decimal `json:"unit_value"`
	TotalValue              decimal.Decimal `json:"total_value"`
	Specifications          string          `json:"specifications"`
	Brand                   string          `json:"brand"`
	Model                   string          `json:"model"`
}

type RequestResponse struct {
	ID                     string                `json:"id"`
	RequestNumber          string                `json:"request_number"`
	UserID                 string                `json:"user_id"`
	UserName               string                `json:"user_name"`
	DepartmentID           string                `json:"department_id"`
	DepartmentName         string                `json:"department_name"`
	Description            string                `json:"description"`
	Justification          string                `json:"justification"`
	TotalValue             decimal.Decimal       `json:"total_value"`
	Status                 string                `json:"status"`
	ManagerStatus          string                `json:"manager_status"`
	ApproverStatus         string                `json:"approver_status"`
	RequestDate            string                `json:"request_date"`
	ManagerApprovedAt      *string               `json:"manager_approved_at"`
	ManagerApprovedBy      *string               `json:"manager_approved_by"`
	ApprovedAt             *string               `json:"approved_at"`
	ApprovedBy             *string               `json:"approved_by"`
	RejectionReason        string                `json:"rejection_reason"`
	ManagerRejectionReason string                `json:"manager_rejection_reason"`
	ReturnReason           string                `json:"return_reason"`
	ReopenedAt             *string               `json:"reopened_at"`
	ReopenedBy             *string               `json:"reopened_by"`
	ReopenReason           string                `json:"reopen_reason"`
	Items                  []RequestItemResponse `json:"items"`
	CreatedAt              string                `json:"created_at"`
	UpdatedAt              string                `json:"updated_at"`
}

type HistoryResponse struct {
	ID            string `json:"id"`
	Action        string `json:"action"`
	OldStatus     string `json:"old_status"`
	NewStatus     string `json:"new_status"`
	Comments      string `json:"comments"`
	CreatedByID   string `json:"created_by_id"`
	CreatedByName string `json:"created_by_name"`
	CreatedAt     string `json:"created_at"`
}

// --- Interface ---

type RequestService interface {
	Create(ctx context.Context, actor access.Actor, dto CreateRequestDTO) (*RequestResponse, error)
	Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*RequestResponse, error)
	List(ctx context.Context, actor access.Actor, q RequestListQuery, page, limit int) ([]RequestResponse, int64, error)
	Edit(ctx context.Context, actor access.Actor, id uuid.UUID, dto EditRequestDTO) (*RequestResponse, error)
	Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error
	History(ctx context.Context, actor access.Actor, id uuid.UUID) ([]HistoryResponse, error)
	// Transition applies a workflow action. The row is re-read under lock and
	// the new state and its history row are written in one transaction.
	Transition(ctx context.Context, actor access.Actor, id uuid.UUID, action workflow.Action, reason string) (*RequestResponse, error)
}

type requestService struct {
	tx            repository.TransactionManager
	requests      repository.RequestRepository
	history       repository.HistoryRepository
	sequences     repository.SequenceRepository
	departments   repository.DepartmentRepository
	notifications NotificationService
	audit         AuditService
	now           func() time.Time
}

func NewRequestService(
	tx repository.TransactionManager,
	requests repository.RequestRepository,
	history repository.HistoryRepository,
	sequences repository.SequenceRepository,
	departments repository.DepartmentRepository,
	notifications NotificationService,
	audit AuditService,
) RequestService {
	return &requestService{
		tx:            tx,
		requests:      requests,
		history:       history,
		sequences:     sequences,
		departments:   departments,
		notifications: notifications,
		audit:         audit,
		now:           time.Now,
	}
}

// --- Implementation ---

func resourceOf(req *model.Request) access.Resource {
	return access.Resource{OwnerID: req.UserID, DepartmentID: req.DepartmentID}
}

func tupleOf(req *model.Request) workflow.Tuple {
	return workflow.Tuple{Status: req.Status, ManagerStatus: req.ManagerStatus, ApproverStatus: req.ApproverStatus}
}

func setTuple(req *model.Request, t workflow.Tuple) {
	req.Status = t.Status
	req.ManagerStatus = t.ManagerStatus
	req.ApproverStatus = t.ApproverStatus
}

// buildItems validates every line and returns the items with their totals.
// One invalid line rejects the whole set.
func buildItems(in []RequestItemInput) ([]model.RequestItem, decimal.Decimal, error) {
	if len(in) == 0 {
		return nil, decimal.Zero, apperr.Validation("a request needs at least one item")
	}

	total := decimal.Zero
	items := make([]model.RequestItem, 0, len(in))
	for i, it := range in {
		line := i + 1
		name := strings.TrimSpace(it.ItemName)
		if name == "" {
			return nil, decimal.Zero, apperr.Validation("item %d: name is required", line)
		}
		if it.Quantity <= 0 {
			return nil, decimal.Zero, apperr.Validation("item %d: quantity must be greater than zero", line)
		}
		if it.UnitValue.IsNegative() {
			return nil, decimal.Zero, apperr.Validation("item %d: unit value cannot be negative", line)
		}
		if !validAcquisitionType(it.AcquisitionType) {
			return nil, decimal.Zero, apperr.Validation("item %d: acquisition type must be PURCHASE, RENTAL or RENEWAL", line)
		}

		typeID, err := parseOptionalID(it.ItemTypeID, "item type")
		if err != nil {
			return nil, decimal.Zero, err
		}
		categoryID, err := parseOptionalID(it.ItemCategoryID, "item category")
		if err != nil {
			return nil, decimal.Zero, err
		}
		contractID, err := parseOptionalID(it.ContractTypeID, "contract type")
		if err != nil {
			return nil, decimal.Zero, err
		}
		masterID, err := parseOptionalID(it.AcquisitionTypeMasterID, "acquisition type")
		if err != nil {
			return nil, decimal.Zero, err
		}

		lineTotal := it.UnitValue.Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(lineTotal)

		items = append(items, model.RequestItem{
			ItemName:                name,
			ItemTypeID:              typeID,
			ItemCategoryID:          categoryID,
			AcquisitionType:         it.AcquisitionType,
			ContractTypeID:          contractID,
			AcquisitionTypeMasterID: masterID,
			Quantity:                it.Quantity,
			UnitValue:               it.UnitValue,
			TotalValue:              lineTotal,
			Specifications:          it.Specifications,
			Brand:                   it.Brand,
			Model:                   it.Model,
		})
	}
	return items, total, nil
}

func validAcquisitionType(t string) bool {
	switch t {
	case model.AcquisitionPurchase, model.AcquisitionRental, model.AcquisitionRenewal:
		return true
	}
	return false
}

// nextRequestNumber draws REQ-<year>-NNN from the per-year counter. It must
// run inside the creating transaction.
func (s *requestService) nextRequestNumber(ctx context.Context, now time.Time) (string, error) {
	prefix := fmt.Sprintf("REQ-%d-", now.Year())
	seed, err := s.requests.CountByNumberPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to seed request counter: %w", err)
	}
	seq, err := s.sequences.Next(ctx, fmt.Sprintf("request-%d", now.Year()), seed)
	if err != nil {
		return "", fmt.Errorf("failed to draw request number: %w", err)
	}
	return fmt.Sprintf("%s%03d", prefix, seq), nil
}

func (s *requestService) Create(ctx context.Context, actor access.Actor, dto CreateRequestDTO) (*RequestResponse, error) {
	description := strings.TrimSpace(dto.Description)
	if description == "" {
		return nil, apperr.Validation("description is required")
	}
	items, total, err := buildItems(dto.Items)
	if err != nil {
		return nil, err
	}

	departmentID := actor.DepartmentID
	if actor.IsAdmin() && dto.DepartmentID != nil && *dto.DepartmentID != "" {
		if departmentID, err = ParseID(*dto.DepartmentID, "department"); err != nil {
			return nil, err
		}
		if _, err := s.departments.FindByID(ctx, departmentID); err != nil {
			return nil, lookupErr(err, "department")
		}
	}

	now := s.now()
	tr := workflow.Create()
	req := &model.Request{
		UserID:        actor.ID,
		DepartmentID:  departmentID,
		Description:   description,
		Justification: strings.TrimSpace(dto.Justification),
		TotalValue:    total,
		RequestDate:   now,
		Items:         items,
	}
	setTuple(req, tr.To.Legacy())

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		number, err := s.nextRequestNumber(txCtx, now)
		if err != nil {
			return err
		}
		req.RequestNumber = number

		if err := s.requests.Create(txCtx, req); err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		return s.appendHistory(txCtx, req.ID, tr, actor.ID)
	})
	if err != nil {
		return nil, err
	}

	s.notifications.NotifyTransition(ctx, req, workflow.ActionCreate, actor)
	return s.load(ctx, req.ID)
}

func (s *requestService) appendHistory(ctx context.Context, requestID uuid.UUID, tr workflow.Transition, actorID uuid.UUID) error {
	h := &model.RequestHistory{
		RequestID:   requestID,
		Action:      tr.Label,
		OldStatus:   tr.FromStatus(),
		NewStatus:   tr.ToStatus(),
		Comments:    tr.Reason,
		CreatedByID: actorID,
	}
	if err := s.history.Append(ctx, h); err != nil {
		return fmt.Errorf("failed to write request history: %w", err)
	}
	return nil
}

func (s *requestService) load(ctx context.Context, id uuid.UUID) (*RequestResponse, error) {
	req, err := s.requests.FindByIDWithRelations(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "request")
	}
	res := toRequestResponse(req)
	return &res, nil
}

// findVisible loads a request, hiding it as not found from actors outside its scope.
func (s *requestService) findVisible(ctx context.Context, actor access.Actor, id uuid.UUID, lock bool) (*model.Request, error) {
	var (
		req *model.Request
		err error
	)
	if lock {
		req, err = s.requests.FindForUpdate(ctx, id)
	} else {
		req, err = s.requests.FindByID(ctx, id)
	}
	if err != nil {
		return nil, lookupErr(err, "request")
	}
	if !access.CanView(actor, resourceOf(req)) {
		return nil, apperr.NotFound("request not found")
	}
	return req, nil
}

func (s *requestService) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*RequestResponse, error) {
	if _, err := s.findVisible(ctx, actor, id, false); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func parseDate(raw, field string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	layouts := []string{time.RFC3339, "2006-01-02"}
	for _, l := range layouts {
		if t, err := time.Parse(l, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperr.Validation("invalid %s: expected YYYY-MM-DD", field)
}

func (q RequestListQuery) toFilter() (repository.RequestFilter, error) {
	var (
		f   repository.RequestFilter
		err error
	)

	if q.Status != "" {
		known := false
		for _, st := range workflow.Statuses() {
			if st == q.Status {
				known = true
				break
			}
		}
		if !known {
			return f, apperr.Validation("unknown status %q", q.Status)
		}
		f.Status = q.Status
	}

	if f.DepartmentID, err = parseOptionalID(&q.DepartmentID, "department"); err != nil {
		return f, err
	}
	if f.ParentDepartmentID, err = parseOptionalID(&q.ParentDepartmentID, "parent department"); err != nil {
		return f, err
	}
	if f.ContractTypeID, err = parseOptionalID(&q.ContractTypeID, "contract type"); err != nil {
		return f, err
	}
	if f.AcquisitionTypeID, err = parseOptionalID(&q.AcquisitionTypeID, "acquisition type"); err != nil {
		return f, err
	}
	if f.StartDate, err = parseDate(q.StartDate, "startDate"); err != nil {
		return f, err
	}
	if f.EndDate, err = parseDate(q.EndDate, "endDate"); err != nil {
		return f, err
	}
	// A bare end date includes the whole day.
	if f.EndDate != nil && len(q.EndDate) == len("2006-01-02") {
		end := f.EndDate.Add(24*time.Hour - time.Nanosecond)
		f.EndDate = &end
	}
	f.Search = strings.TrimSpace(q.Search)
	return f, nil
}

func (s *requestService) List(ctx context.Context, actor access.Actor, q RequestListQuery, page, limit int) ([]RequestResponse, int64, error) {
	filter, err := q.toFilter()
	if err != nil {
		return nil, 0, err
	}
	page, limit = normalizePage(page, limit)

	requests, total, err := s.requests.List(ctx, access.Scope(actor), filter, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list requests: %w", err)
	}

	res := make([]RequestResponse, 0, len(requests))
	for i := range requests {
		res = append(res, toRequestResponse(&requests[i]))
	}
	return res, total, nil
}

// checkModifiable applies the edit/delete gate: owner or admin, and for
// non-admins only while the request is still editable.
func checkModifiable(actor access.Actor, req *model.Request) error {
	if err := access.CanModify(actor, resourceOf(req)); err != nil {
		return err
	}
	if actor.IsAdmin() {
		return nil
	}
	state, err := workflow.Decode(tupleOf(req))
	if err != nil {
		return fmt.Errorf("request %s: %w", req.RequestNumber, err)
	}
	if !workflow.Editable(state) {
		return apperr.Conflict("request %s can no longer be changed (status %s)", req.RequestNumber, req.Status)
	}
	return nil
}

func (s *requestService) Edit(ctx context.Context, actor access.Actor, id uuid.UUID, dto EditRequestDTO) (*RequestResponse, error) {
	description := strings.TrimSpace(dto.Description)
	if description == "" {
		return nil, apperr.Validation("description is required")
	}
	items, total, err := buildItems(dto.Items)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.findVisible(txCtx, actor, id, true)
		if err != nil {
			return err
		}
		if err := checkModifiable(actor, req); err != nil {
			return err
		}

		req.Description = description
		req.Justification = strings.TrimSpace(dto.Justification)
		req.TotalValue = total

		if err := s.requests.SaveContent(txCtx, req); err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}
		if err := s.requests.ReplaceItems(txCtx, req.ID, items); err != nil {
			return fmt.Errorf("failed to replace request items: %w", err)
		}

		h := &model.RequestHistory{
			RequestID:   req.ID,
			Action:      "Editada",
			OldStatus:   req.Status,
			NewStatus:   req.Status,
			CreatedByID: actor.ID,
		}
		if err := s.history.Append(txCtx, h); err != nil {
			return fmt.Errorf("failed to write request history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.load(ctx, id)
}

func (s *requestService) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	var number string
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.findVisible(txCtx, actor, id, true)
		if err != nil {
			return err
		}
		if err := checkModifiable(actor, req); err != nil {
			return err
		}
		number = req.RequestNumber
		if err := s.requests.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete request: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, actor.ID, model.ActionDeleteRequest, id.String(), number, map[string]any{
		"request_number": number,
	})
	return nil
}

func (s *requestService) History(ctx context.Context, actor access.Actor, id uuid.UUID) ([]HistoryResponse, error) {
	if _, err := s.findVisible(ctx, actor, id, false); err != nil {
		return nil, err
	}

	rows, err := s.history.ListByRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load request history: %w", err)
	}

	res := make([]HistoryResponse, 0, len(rows))
	for _, h := range rows {
		name := ""
		if h.CreatedBy != nil {
			name = h.CreatedBy.Name
		}
		res = append(res, HistoryResponse{
			ID:            h.ID.String(),
			Action:        h.Action,
			OldStatus:     h.OldStatus,
			NewStatus:     h.NewStatus,
			Comments:      h.Comments,
			CreatedByID:   h.CreatedByID.String(),
			CreatedByName: name,
			CreatedAt:     formatTime(h.CreatedAt),
		})
	}
	return res, nil
}

func (s *requestService) Transition(ctx context.Context, actor access.Actor, id uuid.UUID, action workflow.Action, reason string) (*RequestResponse, error) {
	if err := workflow.ValidateReason(action, reason); err != nil {
		return nil, err
	}

	var updated *model.Request
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.requests.FindForUpdate(txCtx, id)
		if err != nil {
			return lookupErr(err, "request")
		}
		res := resourceOf(req)
		// A request the actor cannot see stays hidden unless their role
		// acts on this stage; a manager of another department gets 403.
		if !access.CanView(actor, res) && !access.MayAct(actor, action) {
			return apperr.NotFound("request not found")
		}
		if err := access.CanTransition(actor, action, res); err != nil {
			return err
		}

		state, err := workflow.Decode(tupleOf(req))
		if err != nil {
			return fmt.Errorf("request %s: %w", req.RequestNumber, err)
		}
		tr, err := workflow.Apply(state, action, reason)
		if err != nil {
			return err
		}

		applyTransition(req, tr, actor.ID, s.now())

		if err := s.requests.SaveState(txCtx, req); err != nil {
			return fmt.Errorf("failed to update request status: %w", err)
		}
		if err := s.appendHistory(txCtx, req.ID, tr, actor.ID); err != nil {
			return err
		}
		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifications.NotifyTransition(ctx, updated, action, actor)
	return s.load(ctx, id)
}

// applyTransition writes the new tuple and the stamps of the action. A
// resubmit or reopen clears the approval-stage fields of the previous cycle;
// an approver return keeps the manager's authorization, which the tuple
// still shows.
func applyTransition(req *model.Request, tr workflow.Transition, actorID uuid.UUID, now time.Time) {
	setTuple(req, tr.To.Legacy())

	switch tr.Action {
	case workflow.ActionManagerAuthorize:
		req.ManagerApprovedAt = &now
		req.ManagerApprovedBy = &actorID
	case workflow.ActionManagerReject:
		req.ManagerRejectionReason = tr.Reason
	case workflow.ActionApprove:
		req.ApprovedAt = &now
		req.ApprovedBy = &actorID
	case workflow.ActionReject:
		req.RejectionReason = tr.Reason
	case workflow.ActionManagerReturn:
		clearApprovalStage(req)
		req.ReturnReason = tr.Reason
	case workflow.ActionReturn:
		clearApproverStage(req)
		req.ReturnReason = tr.Reason
	case workflow.ActionSubmit:
		clearApprovalStage(req)
		req.ReturnReason = ""
	case workflow.ActionReopen:
		clearApprovalStage(req)
		req.ReopenedAt = &now
		req.ReopenedBy = &actorID
		req.ReopenReason = tr.Reason
	}
}

func clearApprovalStage(req *model.Request) {
	req.ManagerApprovedAt = nil
	req.ManagerApprovedBy = nil
	req.ManagerRejectionReason = ""
	clearApproverStage(req)
}

func clearApproverStage(req *model.Request) {
	req.ApprovedAt = nil
	req.ApprovedBy = nil
	req.RejectionReason = ""
}

func toRequestResponse(r *model.Request) RequestResponse {
	res := RequestResponse{
		ID:                     r.ID.String(),
		RequestNumber:          r.RequestNumber,
		UserID:                 r.UserID.String(),
		DepartmentID:           r.DepartmentID.String(),
		Description:            r.Description,
		Justification:          r.Justification,
		TotalValue:             r.TotalValue,
		Status:                 r.Status,
		ManagerStatus:          r.ManagerStatus,
		ApproverStatus:         r.ApproverStatus,
		RequestDate:            formatTime(r.RequestDate),
		ManagerApprovedAt:      formatTimePtr(r.ManagerApprovedAt),
		ManagerApprovedBy:      idPtrString(r.ManagerApprovedBy),
		ApprovedAt:             formatTimePtr(r.ApprovedAt),
		ApprovedBy:             idPtrString(r.ApprovedBy),
		RejectionReason:        r.RejectionReason,
		ManagerRejectionReason: r.ManagerRejectionReason,
		ReturnReason:           r.ReturnReason,
		ReopenedAt:             formatTimePtr(r.ReopenedAt),
		ReopenedBy:             idPtrString(r.ReopenedBy),
		ReopenReason:           r.ReopenReason,
		Items:                  make([]RequestItemResponse, 0, len(r.Items)),
		CreatedAt:              formatTime(r.CreatedAt),
		UpdatedAt:              formatTime(r.UpdatedAt),
	}
	if r.User != nil {
		res.UserName = r.User.Name
	}
	if r.Department != nil {
		res.DepartmentName = r.Department.Name
	}
	for _, it := range r.Items {
		res.Items = append(res.Items, RequestItemResponse{
			ID:                      it.ID.String(),
			ItemName:                it.ItemName,
			ItemTypeID:              idPtrString(it.ItemTypeID),
			ItemCategoryID:          idPtrString(it.ItemCategoryID),
			AcquisitionType:         it.AcquisitionType,
			ContractTypeID:          idPtrString(it.ContractTypeID),
			AcquisitionTypeMasterID: idPtrString(it.AcquisitionTypeMasterID),
			Quantity:                it.Quantity,
			UnitValue:               it.UnitValue,
			TotalValue:              it.TotalValue,
			Specifications:          it.Specifications,
			Brand:                   it.Brand,
			Model:                   it.Model,
		})
	}
	return res
}
