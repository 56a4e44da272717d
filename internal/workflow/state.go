// Package workflow implements the two-stage approval state machine of a
// purchase request. States form a closed sum type; the three legacy status
// columns are derived from a state only when persisting or serializing.
package workflow

import "fmt"

// Request-level status values.
const (
	StatusOpen            = "OPEN"
	StatusPendingManager  = "PENDING_MANAGER_APPROVAL"
	StatusPendingApproval = "PENDING_APPROVAL"
	StatusApproved        = "APPROVED"
	StatusRejected        = "REJECTED"
	StatusReopened        = "REOPENED"
	StatusInProgress      = "IN_PROGRESS"
	StatusCompleted       = "COMPLETED"
)

// Manager-stage status values.
const (
	ManagerPending   = "PENDING_AUTHORIZATION"
	ManagerAuthorize = "AUTHORIZE"
	ManagerDeny      = "DENY"
	ManagerReturn    = "RETURN"
)

// Approver-stage status values. The empty string means the approver stage
// has not been reached.
const (
	ApproverNone    = ""
	ApproverPending = "PENDING_APPROVAL"
	ApproverApprove = "APPROVE"
	ApproverReject  = "REJECT"
	ApproverReturn  = "RETURN"
)

// Tuple is the persisted (status, managerStatus, approverStatus) triple.
type Tuple struct {
	Status         string `json:"status"`
	ManagerStatus  string `json:"manager_status"`
	ApproverStatus string `json:"approver_status"`
}

// Stage identifies which of the two approval stages acted.
type Stage int

const (
	StageManager Stage = iota + 1
	StageApprover
)

func (s Stage) String() string {
	switch s {
	case StageManager:
		return "manager"
	case StageApprover:
		return "approver"
	default:
		return "unknown"
	}
}

// State is implemented only by the variants below.
type State interface {
	Legacy() Tuple
	sealed()
}

// Open is the editable state a request falls back to when returned.
type Open struct{ ReturnedBy Stage }

// PendingManager waits for the department manager.
type PendingManager struct{}

// Reopened is a previously approved request waiting for the manager again.
type Reopened struct{}

// PendingApprover waits for the final approver.
type PendingApprover struct{}

type Approved struct{}

// Rejected is terminal until the request is deleted.
type Rejected struct{ By Stage }

type InProgress struct{}

type Completed struct{}

func (Open) sealed()            {}
func (PendingManager) sealed()  {}
func (Reopened) sealed()        {}
func (PendingApprover) sealed() {}
func (Approved) sealed()        {}
func (Rejected) sealed()        {}
func (InProgress) sealed()      {}
func (Completed) sealed()       {}

func (s Open) Legacy() Tuple {
	if s.ReturnedBy == StageApprover {
		return Tuple{StatusOpen, ManagerAuthorize, ApproverReturn}
	}
	return Tuple{StatusOpen, ManagerReturn, ApproverNone}
}

func (PendingManager) Legacy() Tuple {
	return Tuple{StatusPendingManager, ManagerPending, ApproverNone}
}

func (Reopened) Legacy() Tuple {
	return Tuple{StatusReopened, ManagerPending, ApproverPending}
}

func (PendingApprover) Legacy() Tuple {
	return Tuple{StatusPendingApproval, ManagerAuthorize, ApproverPending}
}

func (Approved) Legacy() Tuple {
	return Tuple{StatusApproved, ManagerAuthorize, ApproverApprove}
}

func (s Rejected) Legacy() Tuple {
	if s.By == StageApprover {
		return Tuple{StatusRejected, ManagerAuthorize, ApproverReject}
	}
	return Tuple{StatusRejected, ManagerDeny, ApproverNone}
}

func (InProgress) Legacy() Tuple {
	return Tuple{StatusInProgress, ManagerAuthorize, ApproverApprove}
}

func (Completed) Legacy() Tuple {
	return Tuple{StatusCompleted, ManagerAuthorize, ApproverApprove}
}

// States lists every reachable state.
func States() []State {
	return []State{
		Open{ReturnedBy: StageManager},
		Open{ReturnedBy: StageApprover},
		PendingManager{},
		Reopened{},
		PendingApprover{},
		Approved{},
		Rejected{By: StageManager},
		Rejected{By: StageApprover},
		InProgress{},
		Completed{},
	}
}

// Decode maps a stored tuple back to its state. Tuples that no state
// produces are reported as corrupt.
func Decode(t Tuple) (State, error) {
	for _, s := range States() {
		if s.Legacy() == t {
			return s, nil
		}
	}
	return nil, fmt.Errorf("undefined workflow tuple (%s, %s, %q)", t.Status, t.ManagerStatus, t.ApproverStatus)
}

// Editable reports whether the request content may still change.
func Editable(s State) bool {
	switch s.(type) {
	case Open, PendingManager:
		return true
	}
	return false
}

// AtManagerStage reports whether the manager is the next to act.
func AtManagerStage(s State) bool {
	switch s.(type) {
	case PendingManager, Reopened:
		return true
	}
	return false
}

// AtApproverStage reports whether the approver is the next to act.
func AtApproverStage(s State) bool {
	_, ok := s.(PendingApprover)
	return ok
}

// Statuses returns the distinct request-level status values, for filter validation.
func Statuses() []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range States() {
		st := s.Legacy().Status
		if !seen[st] {
			seen[st] = true
			out = append(out, st)
		}
	}
	return out
}
