package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairtalk/internal/domain/entity"
	"pairtalk/pkg/errors"
)

func newChatRoomUseCase(t *testing.T) (*ChatRoomUseCase, *fakeChatRoomRepo, *fakeUserRepo, *fakePublisher) {
	t.Helper()

	userRepo := newFakeUserRepo(
		&entity.User{ID: "alice", Name: "Alice", Email: "alice@example.com"},
		&entity.User{ID: "bob", Name: "Bob", Email: "bob@example.com"},
	)
	chatRoomRepo := newFakeChatRoomRepo()
	publisher := newFakePublisher()

	return NewChatRoomUseCase(chatRoomRepo, userRepo, publisher), chatRoomRepo, userRepo, publisher
}

func TestCreateChatStoresCanonicalPair(t *testing.T) {
	uc, _, _, _ := newChatRoomUseCase(t)

	room, err := uc.CreateChat(context.Background(), "bob", "alice")
	require.NoError(t, err)

	assert.Equal(t, []string{"alice", "bob"}, room.Users, "pair must be written in canonical order")
	assert.Nil(t, room.LastMessage)
	require.Len(t, room.UsersData, 2)
	assert.Equal(t, "Alice", room.UsersData["alice"].Name)
	assert.Equal(t, "Bob", room.UsersData["bob"].Name)
}

func TestCreateChatDuplicateRejected(t *testing.T) {
	uc, repo, _, _ := newChatRoomUseCase(t)

	_, err := uc.CreateChat(context.Background(), "alice", "bob")
	require.NoError(t, err)

	_, err = uc.CreateChat(context.Background(), "alice", "bob")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "DUPLICATE_CHATROOM"))
	assert.Len(t, repo.rooms, 1)
}

// The check and the write both use the canonical pair, so the swapped-order
// race collapses onto one room: the second creator sees the first one's
// write regardless of argument order.
func TestCreateChatSwappedOrderYieldsOneRoom(t *testing.T) {
	uc, repo, _, _ := newChatRoomUseCase(t)

	_, err := uc.CreateChat(context.Background(), "alice", "bob")
	require.NoError(t, err)

	_, err = uc.CreateChat(context.Background(), "bob", "alice")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "DUPLICATE_CHATROOM"))
	assert.Len(t, repo.rooms, 1)
}

func TestCreateChatWithSelfRejected(t *testing.T) {
	uc, repo, _, _ := newChatRoomUseCase(t)

	_, err := uc.CreateChat(context.Background(), "alice", "alice")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
	assert.Empty(t, repo.rooms)
}

func TestCreateChatUnknownRecipientRejected(t *testing.T) {
	uc, repo, _, _ := newChatRoomUseCase(t)

	_, err := uc.CreateChat(context.Background(), "alice", "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
	assert.Empty(t, repo.rooms)
}

func TestCreateChatNotifiesRecipient(t *testing.T) {
	uc, _, _, publisher := newChatRoomUseCase(t)

	_, err := uc.CreateChat(context.Background(), "alice", "bob")
	require.NoError(t, err)

	events := publisher.eventsFor("bob")
	require.Len(t, events, 1)
	assert.Equal(t, EventChatRoomCreated, events[0].Type)
}

func TestGetChatRoomEnforcesMembership(t *testing.T) {
	uc, repo, _, _ := newChatRoomUseCase(t)

	require.NoError(t, repo.Create(context.Background(), &entity.ChatRoom{ID: "r1", Users: []string{"alice", "bob"}}))

	_, err := uc.GetChatRoom(context.Background(), "alice", "r1")
	assert.NoError(t, err)

	_, err = uc.GetChatRoom(context.Background(), "carol", "r1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "UNAUTHORIZED"))
}

func TestCanonicalPairIsOrderIndependent(t *testing.T) {
	assert.Equal(t, entity.CanonicalPair("b", "a"), entity.CanonicalPair("a", "b"))
	assert.Equal(t, []string{"a", "b"}, entity.CanonicalPair("b", "a"))
}
