package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"anoa.com/wanderhub/internal/entity"
	friendDto "anoa.com/wanderhub/internal/modules/friend/dto"
	msgDto "anoa.com/wanderhub/internal/modules/message/dto"
	"anoa.com/wanderhub/pkg/apperror"
	"anoa.com/wanderhub/pkg/broker"
	commonDto "anoa.com/wanderhub/pkg/dto"
	"anoa.com/wanderhub/pkg/logger"
	"anoa.com/wanderhub/pkg/realtime"
	"anoa.com/wanderhub/pkg/storage/storagetest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memMessages struct {
	mu        sync.Mutex
	rows      []entity.Message
	createErr error
	// leak is returned by ListConversation in addition to the real rows.
	leak *entity.Message
	tick time.Time
}

func (m *memMessages) Create(_ context.Context, msg *entity.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}
	msg.ID = uuid.New()
	m.tick = m.tick.Add(time.Second)
	msg.CreatedAt = m.tick
	m.rows = append(m.rows, *msg)
	return nil
}

func (m *memMessages) ListConversation(_ context.Context, a, b uuid.UUID) ([]entity.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []entity.Message
	for _, r := range m.rows {
		if r.Between(a, b) {
			out = append(out, r)
		}
	}
	if m.leak != nil {
		out = append(out, *m.leak)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memMessages) MarkRead(_ context.Context, receiver, sender uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for i := range m.rows {
		r := &m.rows[i]
		if r.SenderID == sender && r.ReceiverID == receiver && !r.IsRead {
			r.IsRead = true
			n++
		}
	}
	return n, nil
}

func (m *memMessages) LatestPerConversation(_ context.Context, userID uuid.UUID) ([]entity.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	latest := map[string]entity.Message{}
	for _, r := range m.rows {
		if r.SenderID != userID && r.ReceiverID != userID {
			continue
		}
		key := ConversationChannel(r.SenderID, r.ReceiverID)
		if cur, ok := latest[key]; !ok || r.CreatedAt.After(cur.CreatedAt) {
			latest[key] = r
		}
	}
	out := make([]entity.Message, 0, len(latest))
	for _, r := range latest {
		out = append(out, r)
	}
	return out, nil
}

func (m *memMessages) UnreadBySender(_ context.Context, receiver uuid.UUID) (map[uuid.UUID]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := map[uuid.UUID]int64{}
	for _, r := range m.rows {
		if r.ReceiverID == receiver && !r.IsRead {
			counts[r.SenderID]++
		}
	}
	return counts, nil
}

type stubFriends struct {
	pairs map[[2]uuid.UUID]bool
}

func (s *stubFriends) befriend(a, b uuid.UUID) {
	s.pairs[[2]uuid.UUID{a, b}] = true
	s.pairs[[2]uuid.UUID{b, a}] = true
}

func (s *stubFriends) AreFriends(_ context.Context, a, b uuid.UUID) (bool, error) {
	return s.pairs[[2]uuid.UUID{a, b}], nil
}

func (s *stubFriends) ListFriends(_ context.Context, userID uuid.UUID) ([]friendDto.FriendResponse, error) {
	var out []friendDto.FriendResponse
	for pair := range s.pairs {
		if pair[0] == userID {
			out = append(out, friendDto.FriendResponse{AuthorResponse: commonDto.AuthorResponse{ID: pair[1]}})
		}
	}
	return out, nil
}

type recordingNotifier struct {
	kinds []string
}

func (r *recordingNotifier) CreateNotification(context.Context, *entity.Notification) error {
	return nil
}

func (r *recordingNotifier) Notify(_ context.Context, _, _, _ uuid.UUID, kind, _ string) {
	r.kinds = append(r.kinds, kind)
}

func (r *recordingNotifier) GetNotifications(context.Context, uuid.UUID, int, int) ([]entity.Notification, error) {
	return nil, nil
}

func (r *recordingNotifier) MarkAsRead(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func (r *recordingNotifier) MarkAllAsRead(context.Context, uuid.UUID) error { return nil }

func (r *recordingNotifier) UnreadCount(context.Context, uuid.UUID) (int64, error) { return 0, nil }

type stubLimiter struct {
	allow bool
}

func (s stubLimiter) Allow(context.Context, uuid.UUID, string, time.Duration) (bool, error) {
	return s.allow, nil
}

type fixture struct {
	svc      MessageService
	repo     *memMessages
	friends  *stubFriends
	storage  *storagetest.Fake
	hub      *realtime.Hub
	notifier *recordingNotifier
	a, b, c  uuid.UUID
}

func newFixture(allow bool) *fixture {
	f := &fixture{
		repo:     &memMessages{tick: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		friends:  &stubFriends{pairs: map[[2]uuid.UUID]bool{}},
		storage:  storagetest.NewFake(),
		hub:      realtime.NewHub(),
		notifier: &recordingNotifier{},
		a:        uuid.New(),
		b:        uuid.New(),
		c:        uuid.New(),
	}
	f.friends.befriend(f.a, f.b)
	f.friends.befriend(f.a, f.c)
	f.svc = NewMessageService(f.repo, f.friends, f.storage, f.notifier, f.hub,
		stubLimiter{allow: allow}, time.Second, broker.Nop(), logger.Nop())
	return f
}

func text(s string) msgDto.SendMessageInput {
	return msgDto.SendMessageInput{Content: s}
}

func TestConversationChannel_IsSymmetric(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	assert.Equal(t, ConversationChannel(a, b), ConversationChannel(b, a))
	assert.True(t, strings.HasPrefix(ConversationChannel(a, b), "chat:"))
}

func TestSendMessage_PublishesReload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(true)

	sub, err := f.hub.Subscribe(ctx, ConversationChannel(f.b, f.a))
	require.NoError(t, err)
	defer sub.Close()

	res, err := f.svc.SendMessage(ctx, f.a, f.b, text("  <b>halo</b> "), nil)
	require.NoError(t, err)
	require.NotNil(t, res.Content)
	assert.Equal(t, "halo", *res.Content)
	assert.Nil(t, res.MediaURL)

	select {
	case raw := <-sub.Messages():
		var ev msgDto.ReloadEvent
		require.NoError(t, json.Unmarshal(raw, &ev))
		assert.Equal(t, ReloadEventType, ev.Type)
		assert.Equal(t, res.ID, ev.MessageID)
	case <-time.After(time.Second):
		t.Fatal("no reload event")
	}

	assert.Equal(t, []string{entity.NotificationMessage}, f.notifier.kinds)
}

func TestSendMessage_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		allow    bool
		sender   func(f *fixture) uuid.UUID
		receiver func(f *fixture) uuid.UUID
		input    msgDto.SendMessageInput
		wantErr  error
	}{
		{
			name:     "empty body",
			allow:    true,
			sender:   func(f *fixture) uuid.UUID { return f.a },
			receiver: func(f *fixture) uuid.UUID { return f.b },
			input:    text("   "),
			wantErr:  apperror.ErrInvalidInput,
		},
		{
			name:     "self",
			allow:    true,
			sender:   func(f *fixture) uuid.UUID { return f.a },
			receiver: func(f *fixture) uuid.UUID { return f.a },
			input:    text("hi"),
			wantErr:  apperror.ErrBadRequest,
		},
		{
			name:     "not friends",
			allow:    true,
			sender:   func(f *fixture) uuid.UUID { return f.b },
			receiver: func(f *fixture) uuid.UUID { return f.c },
			input:    text("hi"),
			wantErr:  apperror.ErrForbidden,
		},
		{
			name:     "rate limited",
			allow:    false,
			sender:   func(f *fixture) uuid.UUID { return f.a },
			receiver: func(f *fixture) uuid.UUID { return f.b },
			input:    text("hi"),
			wantErr:  apperror.ErrRateLimitExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.allow)

			_, err := f.svc.SendMessage(ctx, tt.sender(f), tt.receiver(f), tt.input, nil)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.repo.rows)
		})
	}
}

func TestSendMessage_Media(t *testing.T) {
	ctx := context.Background()

	t.Run("media only", func(t *testing.T) {
		f := newFixture(true)
		media := &commonDto.UploadFile{Reader: strings.NewReader("img"), FileName: "p.jpg"}

		res, err := f.svc.SendMessage(ctx, f.a, f.b, text(""), media)

		require.NoError(t, err)
		assert.Nil(t, res.Content)
		require.NotNil(t, res.MediaURL)
		assert.Equal(t, 1, f.storage.Stored())
	})

	t.Run("failed insert removes upload", func(t *testing.T) {
		f := newFixture(true)
		f.repo.createErr = errors.New("db down")
		media := &commonDto.UploadFile{Reader: strings.NewReader("img"), FileName: "p.jpg"}

		_, err := f.svc.SendMessage(ctx, f.a, f.b, text("look"), media)

		require.Error(t, err)
		assert.Equal(t, 0, f.storage.Stored())
		assert.Len(t, f.storage.Deleted, 1)
	})

	t.Run("upload failure", func(t *testing.T) {
		f := newFixture(true)
		f.storage.FailOn = 1
		media := &commonDto.UploadFile{Reader: strings.NewReader("img"), FileName: "p.jpg"}

		_, err := f.svc.SendMessage(ctx, f.a, f.b, text("look"), media)

		assert.ErrorIs(t, err, storagetest.ErrUploadFailed)
		assert.Empty(t, f.repo.rows)
	})
}

func TestListConversation_ExactPairAscending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(true)

	_, err := f.svc.SendMessage(ctx, f.a, f.b, text("one"), nil)
	require.NoError(t, err)
	_, err = f.svc.SendMessage(ctx, f.a, f.c, text("other chat"), nil)
	require.NoError(t, err)
	_, err = f.svc.SendMessage(ctx, f.b, f.a, text("two"), nil)
	require.NoError(t, err)

	f.repo.leak = &entity.Message{ID: uuid.New(), SenderID: f.c, ReceiverID: f.b, CreatedAt: f.repo.tick}

	first, err := f.svc.ListConversation(ctx, f.a, f.b)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "one", *first[0].Content)
	assert.Equal(t, "two", *first[1].Content)
	assert.True(t, first[0].CreatedAt.Before(first[1].CreatedAt))

	again, err := f.svc.ListConversation(ctx, f.b, f.a)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestListConversation_HistorySurvivesUnfriend(t *testing.T) {
	ctx := context.Background()
	f := newFixture(true)

	_, err := f.svc.SendMessage(ctx, f.a, f.b, text("see you there"), nil)
	require.NoError(t, err)

	delete(f.friends.pairs, [2]uuid.UUID{f.a, f.b})
	delete(f.friends.pairs, [2]uuid.UUID{f.b, f.a})

	history, err := f.svc.ListConversation(ctx, f.b, f.a)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "see you there", *history[0].Content)

	_, err = f.svc.SendMessage(ctx, f.b, f.a, text("still there?"), nil)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.svc.ListConversation(ctx, f.a, f.a)
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	f := newFixture(true)

	for _, body := range []string{"1", "2"} {
		_, err := f.svc.SendMessage(ctx, f.b, f.a, text(body), nil)
		require.NoError(t, err)
	}
	_, err := f.svc.SendMessage(ctx, f.a, f.b, text("reply"), nil)
	require.NoError(t, err)

	n, err := f.svc.MarkRead(ctx, f.a, f.b)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = f.svc.MarkRead(ctx, f.a, f.b)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListChats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(true)

	_, err := f.svc.SendMessage(ctx, f.b, f.a, text("from b"), nil)
	require.NoError(t, err)
	_, err = f.svc.SendMessage(ctx, f.c, f.a, text("from c"), nil)
	require.NoError(t, err)
	_, err = f.svc.SendMessage(ctx, f.c, f.a, text("again c"), nil)
	require.NoError(t, err)

	chats, err := f.svc.ListChats(ctx, f.a)
	require.NoError(t, err)
	require.Len(t, chats, 2)

	assert.Equal(t, f.c, chats[0].Friend.ID)
	assert.Equal(t, int64(2), chats[0].UnreadCount)
	assert.Equal(t, "again c", *chats[0].LastMessage.Content)
	assert.Equal(t, f.b, chats[1].Friend.ID)
	assert.Equal(t, int64(1), chats[1].UnreadCount)
}
