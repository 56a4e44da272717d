package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acqplan/internal/access"
	"acqplan/internal/apperr"
	"acqplan/internal/model"
	"acqplan/internal/testutil"
	"acqplan/internal/workflow"
)

func TestCreateRequest(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	res := env.newRequest(t, env.requester)

	assert.True(t, decimal.RequireFromString("250.00").Equal(res.TotalValue), "total %s", res.TotalValue)
	assert.Equal(t, workflow.StatusPendingManager, res.Status)
	assert.Equal(t, workflow.ManagerPending, res.ManagerStatus)
	assert.Empty(t, res.ApproverStatus)
	assert.Equal(t, env.deptA.ID.String(), res.DepartmentID)
	assert.Equal(t, fmt.Sprintf("REQ-%d-001", time.Now().Year()), res.RequestNumber)
	assert.Len(t, res.Items, 2)

	history, err := env.requests.History(ctx, env.requester, uuid.MustParse(res.ID))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Criada", history[0].Action)
	assert.Empty(t, history[0].OldStatus)
	assert.Equal(t, workflow.StatusPendingManager, history[0].NewStatus)
	assert.Equal(t, env.requester.Name, history[0].CreatedByName)
}

func TestCreateRequest_NumbersIncrement(t *testing.T) {
	env := newTestEnv(t, nil)

	first := env.newRequest(t, env.requester)
	second := env.newRequest(t, env.colleague)

	year := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("REQ-%d-001", year), first.RequestNumber)
	assert.Equal(t, fmt.Sprintf("REQ-%d-002", year), second.RequestNumber)
}

func TestCreateRequest_OneInvalidItemRejectsAll(t *testing.T) {
	env := newTestEnv(t, nil)

	cases := map[string]RequestItemInput{
		"zero quantity":  item("Cable", 0, "10"),
		"negative value": item("Cable", 1, "-1"),
		"empty name":     item("  ", 1, "10"),
		"unknown mode":   {ItemName: "Cable", AcquisitionType: "LEASE", Quantity: 1, UnitValue: decimal.NewFromInt(1)},
	}
	for name, bad := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.requests.Create(context.Background(), env.requester, CreateRequestDTO{
				Description: "Cables",
				Items:       []RequestItemInput{item("Switch", 1, "900"), bad},
			})
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
		})
	}

	var n int64
	require.NoError(t, env.db.Model(&model.Request{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestTransition_TwoStageApproval(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	req := env.newRequest(t, env.requester)

	authorized := env.transition(t, env.manager, req.ID, workflow.ActionManagerAuthorize, "")
	assert.Equal(t, workflow.StatusPendingApproval, authorized.Status)
	assert.Equal(t, workflow.ManagerAuthorize, authorized.ManagerStatus)
	assert.Equal(t, workflow.ApproverPending, authorized.ApproverStatus)
	require.NotNil(t, authorized.ManagerApprovedBy)
	assert.Equal(t, env.manager.ID.String(), *authorized.ManagerApprovedBy)
	assert.NotNil(t, authorized.ManagerApprovedAt)

	rejected := env.transition(t, env.approver, req.ID, workflow.ActionReject, "Budget exceeded")
	assert.Equal(t, workflow.StatusRejected, rejected.Status)
	assert.Equal(t, workflow.ApproverReject, rejected.ApproverStatus)
	assert.Equal(t, "Budget exceeded", rejected.RejectionReason)

	_, err := env.requests.Transition(ctx, env.approver, uuid.MustParse(req.ID), workflow.ActionApprove, "")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.True(t, errors.Is(err, workflow.ErrInvalidTransition))

	history, err := env.requests.History(ctx, env.admin, uuid.MustParse(req.ID))
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, workflow.StatusPendingManager, history[1].OldStatus)
	assert.Equal(t, workflow.StatusPendingApproval, history[1].NewStatus)
	assert.Equal(t, workflow.StatusRejected, history[2].NewStatus)
	assert.Equal(t, "Budget exceeded", history[2].Comments)
}

func TestTransition_ApproveStartComplete(t *testing.T) {
	env := newTestEnv(t, nil)
	req := env.newRequest(t, env.requester)

	env.transition(t, env.manager, req.ID, workflow.ActionManagerAuthorize, "")
	approved := env.transition(t, env.approver, req.ID, workflow.ActionApprove, "")
	assert.Equal(t, workflow.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, env.approver.ID.String(), *approved.ApprovedBy)

	started := env.transition(t, env.approver, req.ID, workflow.ActionStart, "")
	assert.Equal(t, workflow.StatusInProgress, started.Status)

	completed := env.transition(t, env.approver, req.ID, workflow.ActionComplete, "")
	assert.Equal(t, workflow.StatusCompleted, completed.Status)
}

func TestTransition_ReasonCheckedBeforeState(t *testing.T) {
	env := newTestEnv(t, nil)
	req := env.newRequest(t, env.requester)

	// The request is not at the approver stage, but the empty reason wins.
	_, err := env.requests.Transition(context.Background(), env.approver, uuid.MustParse(req.ID), workflow.ActionReject, "   ")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestTransition_ManagerOfAnotherDepartment(t *testing.T) {
	env := newTestEnv(t, nil)
	req := env.newRequest(t, env.requester)

	_, err := env.requests.Transition(context.Background(), env.otherManager, uuid.MustParse(req.ID), workflow.ActionManagerAuthorize, "")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindForbidden), "got %v", err)

	got, err := env.requests.Get(context.Background(), env.manager, uuid.MustParse(req.ID))
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPendingManager, got.Status)
}

func TestTransition_UserCannotAuthorize(t *testing.T) {
	env := newTestEnv(t, nil)
	req := env.newRequest(t, env.requester)

	_, err := env.requests.Transition(context.Background(), env.requester, uuid.MustParse(req.ID), workflow.ActionManagerAuthorize, "")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestTransition_HiddenRequestIsNotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	req := env.newRequest(t, env.requester)
	id := uuid.MustParse(req.ID)
	ctx := context.Background()

	tests := []struct {
		name   string
		actor  access.Actor
		action workflow.Action
		want   apperr.Kind
	}{
		{"colleague submits", env.colleague, workflow.ActionSubmit, apperr.KindNotFound},
		{"colleague authorizes", env.colleague, workflow.ActionManagerAuthorize, apperr.KindNotFound},
		{"other manager approves", env.otherManager, workflow.ActionApprove, apperr.KindNotFound},
		{"other manager authorizes", env.otherManager, workflow.ActionManagerAuthorize, apperr.KindForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.requests.Transition(ctx, tt.actor, id, tt.action, "")
			require.Error(t, err)
			assert.Equal(t, tt.want, apperr.KindOf(err), "got %v", err)
		})
	}

	_, err := env.requests.Get(ctx, env.colleague, id)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestTransition_ReturnClearsApprovalStage(t *testing.T) {
	env := newTestEnv(t, nil)
	req := env.newRequest(t, env.requester)

	env.transition(t, env.manager, req.ID, workflow.ActionManagerAuthorize, "")
	returned := env.transition(t, env.approver, req.ID, workflow.ActionReturn, "Missing a second quote")
	assert.Equal(t, workflow.StatusOpen, returned.Status)
	assert.Equal(t, workflow.ManagerAuthorize, returned.ManagerStatus)
	assert.Equal(t, workflow.ApproverReturn, returned.ApproverStatus)
	assert.Equal(t, "Missing a second quote", returned.ReturnReason)
	// The manager's authorization still stands, stamps included.
	require.NotNil(t, returned.ManagerApprovedAt)
	require.NotNil(t, returned.ManagerApprovedBy)
	assert.Equal(t, env.manager.ID.String(), *returned.ManagerApprovedBy)
	assert.Nil(t, returned.ApprovedAt)

	// Only the owner resubmits; a colleague does not even see the request.
	_, err := env.requests.Transition(context.Background(), env.colleague, uuid.MustParse(req.ID), workflow.ActionSubmit, "")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = env.requests.Transition(context.Background(), env.manager, uuid.MustParse(req.ID), workflow.ActionSubmit, "")
	assert.True(t, apperr.Is(err, apperr.KindForbidden), "visible to the manager, but not theirs")

	_, err = env.requests.Transition(context.Background(), env.manager, uuid.MustParse(req.ID), workflow.ActionManagerAuthorize, "")
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	resubmitted := env.transition(t, env.requester, req.ID, workflow.ActionSubmit, "")
	assert.Equal(t, workflow.StatusPendingManager, resubmitted.Status)
	assert.Equal(t, workflow.ManagerPending, resubmitted.ManagerStatus)
	assert.Empty(t, resubmitted.ApproverStatus)
	assert.Empty(t, resubmitted.ReturnReason)
	assert.Nil(t, resubmitted.ManagerApprovedAt)
	assert.Nil(t, resubmitted.ManagerApprovedBy)
}

func TestTransition_ManagerReturnClearsStamps(t *testing.T) {
	env := newTestEnv(t, nil)
	req := env.newRequest(t, env.requester)

	returned := env.transition(t, env.manager, req.ID, workflow.ActionManagerReturn, "Add the supplier quote")
	assert.Equal(t, workflow.StatusOpen, returned.Status)
	assert.Equal(t, workflow.ManagerReturn, returned.ManagerStatus)
	assert.Nil(t, returned.ManagerApprovedAt)
	assert.Equal(t, "Add the supplier quote", returned.ReturnReason)
}

func TestTransition_Reopen(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	req := env.newRequest(t, env.requester)
	id := uuid.MustParse(req.ID)

	env.transition(t, env.manager, req.ID, workflow.ActionManagerAuthorize, "")
	env.transition(t, env.approver, req.ID, workflow.ActionApprove, "")

	_, err := env.requests.Transition(ctx, env.approver, id, workflow.ActionReopen, "too short")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	reopened := env.transition(t, env.approver, req.ID, workflow.ActionReopen, "Supplier changed the price list")
	assert.Equal(t, workflow.StatusReopened, reopened.Status)
	assert.Equal(t, workflow.ManagerPending, reopened.ManagerStatus)
	assert.Nil(t, reopened.ApprovedAt)
	assert.Nil(t, reopened.ApprovedBy)
	assert.Nil(t, reopened.ManagerApprovedAt)
	require.NotNil(t, reopened.ReopenedBy)
	assert.Equal(t, env.approver.ID.String(), *reopened.ReopenedBy)
	assert.Equal(t, "Supplier changed the price list", reopened.ReopenReason)

	// A reopened request is back at the manager stage.
	again := env.transition(t, env.manager, req.ID, workflow.ActionManagerAuthorize, "")
	assert.Equal(t, workflow.StatusPendingApproval, again.Status)
}

func TestRequestVisibility(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	req := env.newRequest(t, env.requester)
	id := uuid.MustParse(req.ID)

	list, total, err := env.requests.List(ctx, env.colleague, RequestListQuery{}, 1, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)

	_, err = env.requests.Get(ctx, env.colleague, id)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = env.requests.History(ctx, env.colleague, id)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = env.requests.Get(ctx, env.otherManager, id)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	cases := []struct {
		name  string
		actor access.Actor
		want  int64
	}{
		{"requester", env.requester, 1},
		{"manager", env.manager, 1},
		{"other manager", env.otherManager, 0},
		{"approver", env.approver, 1},
		{"admin", env.admin, 1},
	}
	for _, tc := range cases {
		_, total, err := env.requests.List(ctx, tc.actor, RequestListQuery{}, 1, 20)
		require.NoError(t, err)
		assert.Equal(t, tc.want, total, tc.name)
	}
}

func TestRequestList_Filters(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.newRequest(t, env.requester)

	bOwner := env.otherManager
	_, err := env.requests.Create(ctx, bOwner, CreateRequestDTO{
		Description: "Printer toner",
		Items:       []RequestItemInput{item("Toner", 4, "80")},
	})
	require.NoError(t, err)

	_, total, err := env.requests.List(ctx, env.approver, RequestListQuery{DepartmentID: env.deptB.ID.String()}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = env.requests.List(ctx, env.approver, RequestListQuery{Search: "toner"}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = env.requests.List(ctx, env.approver, RequestListQuery{ParentDepartmentID: env.deptA.ID.String()}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	// Managers stay confined to their department whatever they ask for.
	_, total, err = env.requests.List(ctx, env.manager, RequestListQuery{ParentDepartmentID: env.deptB.ID.String()}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, _, err = env.requests.List(ctx, env.approver, RequestListQuery{Status: "WHATEVER"}, 1, 20)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestRequestList_ParentDepartmentIncludesChildren(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.newRequest(t, env.requester)

	child := testutil.CreateDepartment(t, env.db, "A-CHILD", &env.deptA.ID)
	_, err := env.requests.Create(ctx, env.admin, CreateRequestDTO{
		Description:  "Headsets for the help desk",
		DepartmentID: strPtr(child.ID.String()),
		Items:        []RequestItemInput{item("Headset", 5, "40")},
	})
	require.NoError(t, err)

	byParent := RequestListQuery{ParentDepartmentID: env.deptA.ID.String()}

	rows, total, err := env.requests.List(ctx, env.approver, byParent, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	departments := []string{rows[0].DepartmentID, rows[1].DepartmentID}
	assert.ElementsMatch(t, []string{env.deptA.ID.String(), child.ID.String()}, departments)

	_, total, err = env.requests.List(ctx, env.approver, RequestListQuery{DepartmentID: env.deptA.ID.String()}, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	// The manager of A does not reach into the child department.
	rows, total, err = env.requests.List(ctx, env.manager, byParent, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, env.deptA.ID.String(), rows[0].DepartmentID)
}

func TestEditRequest(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	req := env.newRequest(t, env.requester)
	id := uuid.MustParse(req.ID)

	edited, err := env.requests.Edit(ctx, env.requester, id, EditRequestDTO{
		Description: "Notebooks only",
		Items:       []RequestItemInput{item("Notebook", 3, "100.00")},
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("300").Equal(edited.TotalValue))
	assert.Len(t, edited.Items, 1)
	assert.Equal(t, workflow.StatusPendingManager, edited.Status)

	history, err := env.requests.History(ctx, env.requester, id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "Editada", history[1].Action)
	assert.Equal(t, history[1].OldStatus, history[1].NewStatus)

	_, err = env.requests.Edit(ctx, env.manager, id, EditRequestDTO{
		Description: "x", Items: []RequestItemInput{item("x", 1, "1")},
	})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	env.transition(t, env.manager, req.ID, workflow.ActionManagerAuthorize, "")

	_, err = env.requests.Edit(ctx, env.requester, id, EditRequestDTO{
		Description: "Too late", Items: []RequestItemInput{item("Notebook", 1, "1")},
	})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	// Administrators bypass the status restriction.
	adminEdit, err := env.requests.Edit(ctx, env.admin, id, EditRequestDTO{
		Description: "Adjusted by admin", Items: []RequestItemInput{item("Notebook", 1, "99.90")},
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("99.9").Equal(adminEdit.TotalValue))
	assert.Equal(t, workflow.StatusPendingApproval, adminEdit.Status)
}

func TestDeleteRequest(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	req := env.newRequest(t, env.requester)
	id := uuid.MustParse(req.ID)

	assert.True(t, apperr.Is(env.requests.Delete(ctx, env.colleague, id), apperr.KindNotFound))
	assert.True(t, apperr.Is(env.requests.Delete(ctx, env.manager, id), apperr.KindForbidden))

	require.NoError(t, env.requests.Delete(ctx, env.requester, id))

	_, err := env.requests.Get(ctx, env.admin, id)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	var items, history, linked int64
	env.db.Model(&model.RequestItem{}).Where("request_id = ?", id).Count(&items)
	env.db.Model(&model.RequestHistory{}).Where("request_id = ?", id).Count(&history)
	env.db.Model(&model.Notification{}).Where("request_id = ?", id).Count(&linked)
	assert.Zero(t, items)
	assert.Zero(t, history)
	assert.Zero(t, linked)

	var orphans int64
	env.db.Model(&model.Notification{}).Where("request_id IS NULL").Count(&orphans)
	assert.EqualValues(t, 1, orphans, "the manager's notification survives without its request")
}
