package workflow

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"acqplan/internal/apperr"
)

// Action names a workflow transition.
type Action string

const (
	ActionCreate           Action = "CREATE"
	ActionSubmit           Action = "SUBMIT"
	ActionManagerAuthorize Action = "MANAGER_AUTHORIZE"
	ActionManagerReject    Action = "MANAGER_REJECT"
	ActionManagerReturn    Action = "MANAGER_RETURN"
	ActionApprove          Action = "APPROVE"
	ActionReject           Action = "REJECT"
	ActionReturn           Action = "RETURN"
	ActionReopen           Action = "REOPEN"
	ActionStart            Action = "START"
	ActionComplete         Action = "COMPLETE"
)

// MinReopenReason is the minimum length, in characters, of a reopen justification.
const MinReopenReason = 10

// ErrInvalidTransition is wrapped by every conflict raised for a state mismatch.
var ErrInvalidTransition = errors.New("invalid workflow transition")

// Transition is the outcome of applying an action to a state.
type Transition struct {
	Action Action
	From   State // nil for ActionCreate
	To     State
	Reason string
	Label  string // history action text
}

// FromStatus is the request-level status before the transition ("" on create).
func (t Transition) FromStatus() string {
	if t.From == nil {
		return ""
	}
	return t.From.Legacy().Status
}

func (t Transition) ToStatus() string { return t.To.Legacy().Status }

var labels = map[Action]string{
	ActionCreate:           "Criada",
	ActionSubmit:           "Reenviada",
	ActionManagerAuthorize: "Autorizada pelo gestor",
	ActionManagerReject:    "Negada pelo gestor",
	ActionManagerReturn:    "Devolvida pelo gestor",
	ActionApprove:          "Aprovada",
	ActionReject:           "Rejeitada",
	ActionReturn:           "Devolvida pelo aprovador",
	ActionReopen:           "Reaberta",
	ActionStart:            "Em andamento",
	ActionComplete:         "Concluída",
}

// Label returns the history text recorded for an action.
func Label(a Action) string { return labels[a] }

// Create returns the transition that opens a new request.
func Create() Transition {
	return Transition{Action: ActionCreate, To: PendingManager{}, Label: labels[ActionCreate]}
}

// Apply validates the reason for the action and computes the next state.
// A state that does not accept the action yields a conflict wrapping
// ErrInvalidTransition.
func Apply(from State, action Action, reason string) (Transition, error) {
	reason = strings.TrimSpace(reason)
	if err := ValidateReason(action, reason); err != nil {
		return Transition{}, err
	}

	to, ok := next(from, action)
	if !ok {
		return Transition{}, apperr.Wrap(apperr.KindConflict, ErrInvalidTransition,
			fmt.Sprintf("cannot %s a request in status %s", describe(action), statusOf(from)))
	}

	return Transition{Action: action, From: from, To: to, Reason: reason, Label: labels[action]}, nil
}

func next(from State, action Action) (State, bool) {
	switch from.(type) {
	case Open:
		if action == ActionSubmit {
			return PendingManager{}, true
		}
	case PendingManager, Reopened:
		switch action {
		case ActionManagerAuthorize:
			return PendingApprover{}, true
		case ActionManagerReject:
			return Rejected{By: StageManager}, true
		case ActionManagerReturn:
			return Open{ReturnedBy: StageManager}, true
		}
	case PendingApprover:
		switch action {
		case ActionApprove:
			return Approved{}, true
		case ActionReject:
			return Rejected{By: StageApprover}, true
		case ActionReturn:
			return Open{ReturnedBy: StageApprover}, true
		}
	case Approved:
		switch action {
		case ActionReopen:
			return Reopened{}, true
		case ActionStart:
			return InProgress{}, true
		case ActionComplete:
			return Completed{}, true
		}
	case InProgress:
		if action == ActionComplete {
			return Completed{}, true
		}
	}
	return nil, false
}

// ValidateReason checks the justification an action requires, ignoring
// surrounding whitespace. It does not look at any state.
func ValidateReason(action Action, reason string) error {
	reason = strings.TrimSpace(reason)
	switch action {
	case ActionManagerReject, ActionReject:
		if reason == "" {
			return apperr.Validation("a rejection reason is required")
		}
	case ActionManagerReturn, ActionReturn:
		if reason == "" {
			return apperr.Validation("a reason is required to return a request")
		}
	case ActionReopen:
		if utf8.RuneCountInString(reason) < MinReopenReason {
			return apperr.Validation("reopen reason must be at least %d characters", MinReopenReason)
		}
	}
	return nil
}

func describe(a Action) string {
	return strings.ToLower(strings.ReplaceAll(string(a), "_", " "))
}

func statusOf(s State) string {
	if s == nil {
		return "<none>"
	}
	return s.Legacy().Status
}
