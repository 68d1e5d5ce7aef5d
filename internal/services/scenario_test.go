package services

import (
	"context"
	"testing"

	"github.com/Adilet2201/ChatConnect/internal/apperrors"
	"github.com/stretchr/testify/require"
)

// Full happy path across the three services: register two users, run the
// request/accept workflow, exchange a message, and confirm a non-friend is
// still locked out.
func TestScenario_RegisterBefriendAndChat(t *testing.T) {
	ctx := context.Background()

	store := newMemUserStore()
	users := NewUserService(store)
	friends := NewFriendService(store)
	messages := NewMessageService(&memMessageStore{}, store)

	alice, err := users.RegisterUser(ctx, "alice", "alice@example.com", "secret-password")
	require.NoError(t, err)
	bob, err := users.RegisterUser(ctx, "bob", "bob@example.com", "secret-password")
	require.NoError(t, err)

	require.NoError(t, friends.SendRequest(ctx, alice.ID, bob.ID))
	require.ErrorIs(t, friends.SendRequest(ctx, alice.ID, bob.ID), apperrors.ErrAlreadyRequested)

	require.NoError(t, friends.AcceptRequest(ctx, bob.ID, alice.ID))

	aRels, err := friends.GetRelationships(ctx, alice.ID)
	require.NoError(t, err)
	bRels, err := friends.GetRelationships(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, aRels.Friends, 1)
	require.Equal(t, "bob", aRels.Friends[0].Username)
	require.Len(t, bRels.Friends, 1)
	require.Equal(t, "alice", bRels.Friends[0].Username)

	sent, err := messages.SendMessage(ctx, bob.ID, alice.ID, "hello")
	require.NoError(t, err)

	history, err := messages.GetHistory(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, sent.ID, history[0].ID)
	require.Equal(t, bob.ID, history[0].SenderID)

	carol, err := users.RegisterUser(ctx, "carol", "carol@example.com", "secret-password")
	require.NoError(t, err)
	_, err = messages.SendMessage(ctx, carol.ID, alice.ID, "hi stranger")
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}
