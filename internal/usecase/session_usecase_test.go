package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairtalk/internal/domain/entity"
)

func newSessionUseCase(t *testing.T) (*SessionUseCase, *fakeUserRepo, *fakeMessageRepo, *fakePublisher) {
	t.Helper()

	userRepo := newFakeUserRepo(&entity.User{ID: "me"})
	chatRoomRepo := newFakeChatRoomRepo()
	messageRepo := newFakeMessageRepo()
	publisher := newFakePublisher()

	roster := NewRosterUseCase(userRepo, chatRoomRepo, publisher)
	messages := NewMessageUseCase(messageRepo, chatRoomRepo, publisher)
	presence := NewPresenceUseCase(userRepo, 0)

	return NewSessionUseCase(roster, messages, presence, publisher), userRepo, messageRepo, publisher
}

func TestBeginMarksOnlineAndStartsInEmptyView(t *testing.T) {
	uc, userRepo, _, _ := newSessionUseCase(t)

	session := uc.Begin(context.Background(), "me")
	require.NotNil(t, session)
	assert.Equal(t, ViewShowEmpty, session.View())

	require.Len(t, userRepo.presence, 1)
	assert.True(t, userRepo.presence[0].online)
}

func TestBeginIsIdempotentPerUser(t *testing.T) {
	uc, _, _, _ := newSessionUseCase(t)

	first := uc.Begin(context.Background(), "me")
	second := uc.Begin(context.Background(), "me")
	assert.Same(t, first, second)
}

func TestSelectAndDeselectDriveViewState(t *testing.T) {
	uc, _, messageRepo, publisher := newSessionUseCase(t)

	session := uc.Begin(context.Background(), "me")

	uc.SelectChat(context.Background(), session, "room")
	assert.Equal(t, ViewShowChat, session.View())
	assert.NotNil(t, messageRepo.lastWatch())

	uc.DeselectChat(session)
	assert.Equal(t, ViewShowEmpty, session.View())
	assert.Equal(t, StateUnselected, session.Chat.State())

	var views []ViewState
	for _, e := range publisher.eventsFor("me") {
		if e.Type == EventViewState {
			views = append(views, e.Payload.(ViewState))
		}
	}
	assert.Equal(t, []ViewState{ViewShowEmpty, ViewShowChat, ViewShowEmpty}, views)
}

func TestEndTearsDownAndMarksOffline(t *testing.T) {
	uc, userRepo, messageRepo, _ := newSessionUseCase(t)

	session := uc.Begin(context.Background(), "me")
	uc.SelectChat(context.Background(), session, "room")
	watch := messageRepo.lastWatch()

	uc.End(context.Background(), "me")

	assert.Nil(t, uc.Get("me"))

	last := userRepo.presence[len(userRepo.presence)-1]
	assert.False(t, last.online)

	// Late snapshot for the torn-down session must be discarded.
	watch.onSnapshot([]*entity.Message{{ID: "late", ChatRoomID: "room"}})
	assert.Empty(t, session.Chat.Messages())
}
