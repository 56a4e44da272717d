// Package access derives what an acting user may see and do from their
// role and department. Everything here is pure; repositories translate a
// Filter into SQL and services call the Can* checks before mutating.
package access

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"acqplan/internal/apperr"
	"acqplan/internal/workflow"
)

// Actor is the resolved session user.
type Actor struct {
	ID           uuid.UUID
	Name         string
	Role         workflow.Role
	DepartmentID uuid.UUID
}

func (a Actor) IsAdmin() bool { return a.Role == workflow.RoleAdmin }

// Resource is the part of a request that access decisions look at.
type Resource struct {
	OwnerID      uuid.UUID
	DepartmentID uuid.UUID
}

// Filter is the visibility predicate of an actor over requests. A nil
// field means "no restriction on that column".
type Filter struct {
	UserID       *uuid.UUID
	DepartmentID *uuid.UUID
	// ParentFilter reports whether the caller may widen a department
	// filter to a department and its direct children.
	ParentFilter bool
}

// Scope returns the visibility predicate for an actor.
func Scope(a Actor) Filter {
	switch a.Role {
	case workflow.RoleUser:
		id := a.ID
		return Filter{UserID: &id}
	case workflow.RoleManager:
		dept := a.DepartmentID
		return Filter{DepartmentID: &dept}
	case workflow.RoleApprover, workflow.RoleAdmin:
		return Filter{ParentFilter: true}
	}
	// Unknown roles see nothing.
	nobody := uuid.Nil
	return Filter{UserID: &nobody}
}

// Unrestricted reports whether the filter lets every request through.
func (f Filter) Unrestricted() bool {
	return f.UserID == nil && f.DepartmentID == nil
}

// Apply restricts a query over the requests table.
func (f Filter) Apply(db *gorm.DB) *gorm.DB {
	if f.UserID != nil {
		db = db.Where("requests.user_id = ?", *f.UserID)
	}
	if f.DepartmentID != nil {
		db = db.Where("requests.department_id = ?", *f.DepartmentID)
	}
	return db
}

// Allows evaluates the predicate against a single request.
func (f Filter) Allows(r Resource) bool {
	if f.UserID != nil && *f.UserID != r.OwnerID {
		return false
	}
	if f.DepartmentID != nil && *f.DepartmentID != r.DepartmentID {
		return false
	}
	return true
}

// CanView reports whether the actor may read the request.
func CanView(a Actor, r Resource) bool {
	return Scope(a).Allows(r)
}

// CanModify gates edit and delete: only the owner or an administrator.
// State restrictions are checked separately by the caller.
func CanModify(a Actor, r Resource) error {
	if a.IsAdmin() || a.ID == r.OwnerID {
		return nil
	}
	return apperr.Forbidden("only the requester or an administrator can change this request")
}

// MayAct reports whether the actor's role performs the action on any
// request at all. Submit belongs to the requester, so only administrators
// hold it by role.
func MayAct(a Actor, action workflow.Action) bool {
	if a.IsAdmin() {
		return true
	}
	switch action {
	case workflow.ActionManagerAuthorize, workflow.ActionManagerReject, workflow.ActionManagerReturn:
		return a.Role == workflow.RoleManager
	case workflow.ActionApprove, workflow.ActionReject, workflow.ActionReturn,
		workflow.ActionReopen, workflow.ActionStart, workflow.ActionComplete:
		return a.Role == workflow.RoleApprover
	}
	return false
}

// CanTransition checks the role and department gate of a workflow action.
func CanTransition(a Actor, action workflow.Action, r Resource) error {
	if a.IsAdmin() {
		return nil
	}

	switch action {
	case workflow.ActionSubmit:
		if a.ID == r.OwnerID {
			return nil
		}
		return apperr.Forbidden("only the requester can resubmit this request")

	case workflow.ActionManagerAuthorize, workflow.ActionManagerReject, workflow.ActionManagerReturn:
		if a.Role != workflow.RoleManager {
			return apperr.Forbidden("only department managers can act on the manager stage")
		}
		if a.DepartmentID != r.DepartmentID {
			return apperr.Forbidden("request belongs to another department")
		}
		return nil

	case workflow.ActionApprove, workflow.ActionReject, workflow.ActionReturn,
		workflow.ActionReopen, workflow.ActionStart, workflow.ActionComplete:
		if a.Role == workflow.RoleApprover {
			return nil
		}
		return apperr.Forbidden("only approvers can perform this action")
	}

	return apperr.Forbidden("action %s is not allowed", action)
}
