package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"acqplan/internal/access"
	"acqplan/internal/config"
	"acqplan/internal/model"
	"acqplan/internal/notify"
	"acqplan/internal/testutil"
	"acqplan/internal/workflow"
)

type testEnv struct {
	db            *gorm.DB
	requests      RequestService
	departments   DepartmentService
	types         DepartmentTypeService
	users         UserService
	notifications NotificationService
	dashboard     DashboardService
	catalog       CatalogService
	settings      SettingService
	audit         AuditService

	deptA, deptB *model.Department
	requester    access.Actor // USER in A
	colleague    access.Actor // USER in A
	manager      access.Actor // MANAGER of A
	otherManager access.Actor // MANAGER of B
	approver     access.Actor // APPROVER in B
	admin        access.Actor
}

func newTestEnv(t *testing.T, cache *notify.CountCache) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)

	svc := NewServices(db, cache, config.JWTConfig{
		Secret: testutil.JWTSecret, AccessTokenExpire: time.Hour, Issuer: "acqplan-test",
	}, zap.NewNop())

	env := &testEnv{
		db:            db,
		requests:      svc.Requests,
		departments:   svc.Departments,
		types:         svc.DepartmentTypes,
		users:         svc.Users,
		notifications: svc.Notifications,
		dashboard:     svc.Dashboard,
		catalog:       svc.Catalog,
		settings:      svc.Settings,
		audit:         svc.Audit,
	}

	env.deptA = testutil.CreateDepartment(t, db, "A", nil)
	env.deptB = testutil.CreateDepartment(t, db, "B", nil)
	env.requester = testutil.ActorOf(testutil.CreateUser(t, db, "requester", workflow.RoleUser, env.deptA.ID))
	env.colleague = testutil.ActorOf(testutil.CreateUser(t, db, "colleague", workflow.RoleUser, env.deptA.ID))
	env.manager = testutil.ActorOf(testutil.CreateUser(t, db, "manager", workflow.RoleManager, env.deptA.ID))
	env.otherManager = testutil.ActorOf(testutil.CreateUser(t, db, "other-manager", workflow.RoleManager, env.deptB.ID))
	env.approver = testutil.ActorOf(testutil.CreateUser(t, db, "approver", workflow.RoleApprover, env.deptB.ID))
	env.admin = testutil.ActorOf(testutil.CreateUser(t, db, "admin", workflow.RoleAdmin, env.deptB.ID))
	return env
}

func item(name string, qty int, unit string) RequestItemInput {
	return RequestItemInput{
		ItemName:        name,
		AcquisitionType: model.AcquisitionPurchase,
		Quantity:        qty,
		UnitValue:       decimal.RequireFromString(unit),
	}
}

// newRequest creates a two-line request worth 250.00 for actor.
func (e *testEnv) newRequest(t *testing.T, actor access.Actor) *RequestResponse {
	t.Helper()
	res, err := e.requests.Create(context.Background(), actor, CreateRequestDTO{
		Description:   "Notebooks for the support team",
		Justification: "Replacement of end-of-life hardware",
		Items:         []RequestItemInput{item("Notebook", 2, "100.00"), item("Mouse", 1, "50.00")},
	})
	require.NoError(t, err)
	return res
}

func (e *testEnv) transition(t *testing.T, actor access.Actor, id string, action workflow.Action, reason string) *RequestResponse {
	t.Helper()
	res, err := e.requests.Transition(context.Background(), actor, uuid.MustParse(id), action, reason)
	require.NoError(t, err)
	return res
}
