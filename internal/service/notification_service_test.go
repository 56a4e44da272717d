package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acqplan/internal/access"
	"acqplan/internal/apperr"
	"acqplan/internal/model"
	"acqplan/internal/notify"
	"acqplan/internal/workflow"
)

func unread(t *testing.T, env *testEnv, a access.Actor) int64 {
	t.Helper()
	n, err := env.notifications.UnreadCount(context.Background(), a.ID)
	require.NoError(t, err)
	return n
}

func TestNotifications_Recipients(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	req := env.newRequest(t, env.requester)

	assert.EqualValues(t, 1, unread(t, env, env.manager))
	assert.Zero(t, unread(t, env, env.otherManager), "managers of other departments are not told")
	assert.Zero(t, unread(t, env, env.requester), "the actor is never notified")

	env.transition(t, env.manager, req.ID, workflow.ActionManagerAuthorize, "")
	assert.EqualValues(t, 1, unread(t, env, env.approver))
	assert.EqualValues(t, 1, unread(t, env, env.requester))
	assert.EqualValues(t, 1, unread(t, env, env.manager))

	env.transition(t, env.approver, req.ID, workflow.ActionReject, "Budget exceeded")
	assert.EqualValues(t, 2, unread(t, env, env.requester))

	list, total, err := env.notifications.List(ctx, env.requester.ID, true, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, model.NotificationRequestRejected, list[0].Type)
	assert.Contains(t, list[0].Message, "Budget exceeded")
	require.NotNil(t, list[0].RequestID)
	assert.Equal(t, req.ID, *list[0].RequestID)
}

func TestNotifications_ReopenTellsManagersAndRequester(t *testing.T) {
	env := newTestEnv(t, nil)
	req := env.newRequest(t, env.requester)
	env.transition(t, env.manager, req.ID, workflow.ActionManagerAuthorize, "")
	env.transition(t, env.approver, req.ID, workflow.ActionApprove, "")

	before := unread(t, env, env.manager)
	env.transition(t, env.approver, req.ID, workflow.ActionReopen, "Vendor raised the price by 20%")
	assert.Equal(t, before+1, unread(t, env, env.manager))
	// authorize, approve, reopen
	assert.EqualValues(t, 3, unread(t, env, env.requester))
}

func TestNotifications_MarkRead(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	env.newRequest(t, env.requester)

	list, _, err := env.notifications.List(ctx, env.manager.ID, false, 1, 20)
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := uuid.MustParse(list[0].ID)

	assert.True(t, apperr.Is(env.notifications.MarkRead(ctx, env.requester.ID, id), apperr.KindNotFound),
		"a notification can only be read by its recipient")
	assert.True(t, apperr.Is(env.notifications.MarkRead(ctx, env.manager.ID, uuid.New()), apperr.KindNotFound))

	require.NoError(t, env.notifications.MarkRead(ctx, env.manager.ID, id))
	assert.Zero(t, unread(t, env, env.manager))

	read, _, err := env.notifications.List(ctx, env.manager.ID, false, 1, 20)
	require.NoError(t, err)
	assert.True(t, read[0].IsRead)
	assert.NotNil(t, read[0].ReadAt)
}

func TestNotifications_UnreadCountCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	env := newTestEnv(t, notify.NewCountCache(rdb, time.Minute))
	ctx := context.Background()
	env.newRequest(t, env.requester)

	assert.EqualValues(t, 1, unread(t, env, env.manager))
	assert.True(t, mr.Exists("acqplan:notifications:unread:"+env.manager.ID.String()))

	// A second request invalidates the cached counter of its recipients.
	env.newRequest(t, env.colleague)
	assert.False(t, mr.Exists("acqplan:notifications:unread:"+env.manager.ID.String()))
	assert.EqualValues(t, 2, unread(t, env, env.manager))

	n, err := env.notifications.MarkAllRead(ctx, env.manager.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Zero(t, unread(t, env, env.manager))
}
