package service

import (
	"context"
	"fmt"
	"time"

	"acqplan/internal/access"
	"acqplan/internal/apperr"
	"acqplan/internal/model"
	"acqplan/internal/notify"
	"acqplan/internal/repository"
	"acqplan/internal/workflow"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type NotificationResponse struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	IsRead    bool    `json:"is_read"`
	ReadAt    *string `json:"read_at"`
	RequestID *string `json:"request_id"`
	CreatedAt string  `json:"created_at"`
}

type NotificationService interface {
	// NotifyTransition fans a workflow event out to its recipients. It is a
	// side channel: errors are logged, never returned.
	NotifyTransition(ctx context.Context, req *model.Request, action workflow.Action, actor access.Actor)
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, limit int) ([]NotificationResponse, int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo  repository.NotificationRepository
	users repository.UserRepository
	cache *notify.CountCache
	log   *zap.Logger
}

func NewNotificationService(repo repository.NotificationRepository, users repository.UserRepository, cache *notify.CountCache, log *zap.Logger) NotificationService {
	return &notificationService{repo: repo, users: users, cache: cache, log: log}
}

// event describes what a transition tells whom.
type event struct {
	kind      string
	title     string
	message   string
	managers  bool // active managers of the request department
	approvers bool // every active approver
	requester bool
}

func eventFor(action workflow.Action, req *model.Request) (event, bool) {
	n := req.RequestNumber
	switch action {
	case workflow.ActionCreate:
		return event{kind: model.NotificationRequestCreated, title: "Nova solicitação",
			message: fmt.Sprintf("A solicitação %s aguarda autorização do gestor.", n), managers: true}, true
	case workflow.ActionSubmit:
		return event{kind: model.NotificationRequestCreated, title: "Solicitação reenviada",
			message: fmt.Sprintf("A solicitação %s foi reenviada e aguarda autorização do gestor.", n), managers: true}, true
	case workflow.ActionReopen:
		return event{kind: model.NotificationRequestReopened, title: "Solicitação reaberta",
			message: fmt.Sprintf("A solicitação %s foi reaberta: %s", n, req.ReopenReason), managers: true, requester: true}, true
	case workflow.ActionManagerAuthorize:
		return event{kind: model.NotificationRequestPendingApproval, title: "Solicitação aguardando aprovação",
			message: fmt.Sprintf("A solicitação %s foi autorizada pelo gestor e aguarda aprovação.", n), approvers: true, requester: true}, true
	case workflow.ActionApprove:
		return event{kind: model.NotificationRequestApproved, title: "Solicitação aprovada",
			message: fmt.Sprintf("A solicitação %s foi aprovada.", n), requester: true}, true
	case workflow.ActionManagerReject:
		return event{kind: model.NotificationRequestRejected, title: "Solicitação negada",
			message: fmt.Sprintf("A solicitação %s foi negada pelo gestor: %s", n, req.ManagerRejectionReason), requester: true}, true
	case workflow.ActionReject:
		return event{kind: model.NotificationRequestRejected, title: "Solicitação rejeitada",
			message: fmt.Sprintf("A solicitação %s foi rejeitada: %s", n, req.RejectionReason), requester: true}, true
	case workflow.ActionManagerReturn, workflow.ActionReturn:
		return event{kind: model.NotificationRequestReturned, title: "Solicitação devolvida",
			message: fmt.Sprintf("A solicitação %s foi devolvida para ajustes: %s", n, req.ReturnReason), requester: true}, true
	case workflow.ActionStart:
		return event{kind: model.NotificationRequestInProgress, title: "Solicitação em andamento",
			message: fmt.Sprintf("A aquisição da solicitação %s foi iniciada.", n), requester: true}, true
	case workflow.ActionComplete:
		return event{kind: model.NotificationRequestCompleted, title: "Solicitação concluída",
			message: fmt.Sprintf("A solicitação %s foi concluída.", n), requester: true}, true
	}
	return event{}, false
}

func (s *notificationService) recipients(ctx context.Context, ev event, req *model.Request, actor access.Actor) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]bool{actor.ID: true}
	var out []uuid.UUID
	add := func(id uuid.UUID) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	if ev.managers {
		dept := req.DepartmentID
		managers, err := s.users.ListActiveByRole(ctx, string(workflow.RoleManager), &dept)
		if err != nil {
			return nil, err
		}
		for _, u := range managers {
			add(u.ID)
		}
	}
	if ev.approvers {
		approvers, err := s.users.ListActiveByRole(ctx, string(workflow.RoleApprover), nil)
		if err != nil {
			return nil, err
		}
		for _, u := range approvers {
			add(u.ID)
		}
	}
	if ev.requester {
		add(req.UserID)
	}
	return out, nil
}

func (s *notificationService) NotifyTransition(ctx context.Context, req *model.Request, action workflow.Action, actor access.Actor) {
	ev, ok := eventFor(action, req)
	if !ok {
		return
	}

	ids, err := s.recipients(ctx, ev, req, actor)
	if err != nil {
		s.log.Warn("failed to resolve notification recipients",
			zap.String("request_number", req.RequestNumber), zap.String("action", string(action)), zap.Error(err))
		return
	}
	if len(ids) == 0 {
		return
	}

	requestID := req.ID
	notes := make([]model.Notification, 0, len(ids))
	for _, id := range ids {
		notes = append(notes, model.Notification{
			Type:        ev.kind,
			Title:       ev.title,
			Message:     ev.message,
			RequestID:   &requestID,
			RecipientID: id,
		})
	}

	if err := s.repo.CreateBatch(ctx, notes); err != nil {
		s.log.Warn("failed to create notifications",
			zap.String("request_number", req.RequestNumber), zap.String("action", string(action)), zap.Error(err))
		return
	}
	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		s.log.Warn("failed to invalidate unread counters", zap.Error(err))
	}
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, limit int) ([]NotificationResponse, int64, error) {
	page, limit = normalizePage(page, limit)

	notes, total, err := s.repo.ListByRecipient(ctx, userID, unreadOnly, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]NotificationResponse, 0, len(notes))
	for _, n := range notes {
		res = append(res, NotificationResponse{
			ID:        n.ID.String(),
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			IsRead:    n.IsRead,
			ReadAt:    formatTimePtr(n.ReadAt),
			RequestID: idPtrString(n.RequestID),
			CreatedAt: formatTime(n.CreatedAt),
		})
	}
	return res, total, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	if n, ok, err := s.cache.Get(ctx, userID); err != nil {
		s.log.Warn("unread counter cache unavailable", zap.Error(err))
	} else if ok {
		return n, nil
	}

	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Set(ctx, userID, n); err != nil {
		s.log.Warn("failed to cache unread counter", zap.Error(err))
	}
	return n, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	found, err := s.repo.MarkRead(ctx, id, userID, time.Now())
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFound("notification not found")
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warn("failed to invalidate unread counter", zap.Error(err))
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID, time.Now())
	if err != nil {
		return 0, err
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warn("failed to invalidate unread counter", zap.Error(err))
	}
	return n, nil
}
