package services

import (
	"context"
	"fmt"

	"github.com/Adilet2201/ChatConnect/internal/apperrors"
	"github.com/Adilet2201/ChatConnect/internal/models"
	"github.com/Adilet2201/ChatConnect/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendService is the relationship state machine. Every mutation touches
// two user documents; the pair lock keeps mutations on the same unordered
// pair mutually exclusive, and the first (conditional) document write is the
// commit point. If the mirror write fails the first one is compensated, so
// the cross-referencing lists never stay half-updated.
type FriendService struct {
	users repository.UserStore
	pairs *pairLocker
}

// NewFriendService creates a new FriendService.
func NewFriendService(users repository.UserStore) *FriendService {
	return &FriendService{
		users: users,
		pairs: newPairLocker(),
	}
}

// Relationships groups a user's friends and pending requests, populated.
type Relationships struct {
	Friends  []models.PublicUser `json:"friends"`
	Sent     []models.PublicUser `json:"requests_sent"`
	Received []models.PublicUser `json:"requests_received"`
}

// SendRequest records a pending friend request from actor to target.
func (s *FriendService) SendRequest(ctx context.Context, actorID, targetID primitive.ObjectID) error {
	if actorID == targetID {
		return apperrors.ErrSelfRequest
	}

	unlock := s.pairs.Lock(actorID.Hex(), targetID.Hex())
	defer unlock()

	if _, err := s.users.GetUserByID(ctx, targetID); err != nil {
		return err
	}

	actor, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		return err
	}
	if actor.HasSentRequestTo(targetID) {
		return apperrors.ErrAlreadyRequested
	}
	if actor.HasFriend(targetID) {
		return apperrors.ErrAlreadyFriends
	}

	if err := s.users.AddSentRequest(ctx, actorID, targetID); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrTransient, err)
	}
	if err := s.users.AddReceivedRequest(ctx, targetID, actorID); err != nil {
		if _, rbErr := s.users.RemoveSentRequest(ctx, actorID, targetID); rbErr != nil {
			logrus.WithError(rbErr).WithFields(logrus.Fields{
				"actor":  actorID.Hex(),
				"target": targetID.Hex(),
			}).Error("Failed to roll back sent request")
		}
		return fmt.Errorf("%w: %v", apperrors.ErrTransient, err)
	}

	logrus.WithFields(logrus.Fields{
		"actor":  actorID.Hex(),
		"target": targetID.Hex(),
	}).Info("Friend request sent")
	return nil
}

// AcceptRequest converts a pending request from requester into a mutual
// friendship.
func (s *FriendService) AcceptRequest(ctx context.Context, actorID, requesterID primitive.ObjectID) error {
	unlock := s.pairs.Lock(actorID.Hex(), requesterID.Hex())
	defer unlock()

	ok, err := s.users.CompleteReceivedRequest(ctx, actorID, requesterID)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrTransient, err)
	}
	if !ok {
		return apperrors.ErrNoSuchRequest
	}

	if _, err := s.users.CompleteSentRequest(ctx, requesterID, actorID); err != nil {
		if rbErr := s.users.RevertCompletedRequest(ctx, actorID, requesterID); rbErr != nil {
			logrus.WithError(rbErr).WithFields(logrus.Fields{
				"actor":     actorID.Hex(),
				"requester": requesterID.Hex(),
			}).Error("Failed to roll back accepted request")
		}
		return fmt.Errorf("%w: %v", apperrors.ErrTransient, err)
	}

	logrus.WithFields(logrus.Fields{
		"actor":     actorID.Hex(),
		"requester": requesterID.Hex(),
	}).Info("Friend request accepted")
	return nil
}

// RejectRequest removes a pending request from requester without creating a
// friendship.
func (s *FriendService) RejectRequest(ctx context.Context, actorID, requesterID primitive.ObjectID) error {
	unlock := s.pairs.Lock(actorID.Hex(), requesterID.Hex())
	defer unlock()

	ok, err := s.users.RemoveReceivedRequest(ctx, actorID, requesterID)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrTransient, err)
	}
	if !ok {
		return apperrors.ErrNoSuchRequest
	}

	if _, err := s.users.RemoveSentRequest(ctx, requesterID, actorID); err != nil {
		if rbErr := s.users.AddReceivedRequest(ctx, actorID, requesterID); rbErr != nil {
			logrus.WithError(rbErr).Error("Failed to roll back rejected request")
		}
		return fmt.Errorf("%w: %v", apperrors.ErrTransient, err)
	}

	logrus.WithFields(logrus.Fields{
		"actor":     actorID.Hex(),
		"requester": requesterID.Hex(),
	}).Info("Friend request rejected")
	return nil
}

// CancelRequest withdraws a pending request the actor previously sent.
func (s *FriendService) CancelRequest(ctx context.Context, actorID, receiverID primitive.ObjectID) error {
	unlock := s.pairs.Lock(actorID.Hex(), receiverID.Hex())
	defer unlock()

	ok, err := s.users.RemoveSentRequest(ctx, actorID, receiverID)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrTransient, err)
	}
	if !ok {
		return apperrors.ErrNoSuchRequest
	}

	if _, err := s.users.RemoveReceivedRequest(ctx, receiverID, actorID); err != nil {
		if rbErr := s.users.AddSentRequest(ctx, actorID, receiverID); rbErr != nil {
			logrus.WithError(rbErr).Error("Failed to roll back cancelled request")
		}
		return fmt.Errorf("%w: %v", apperrors.ErrTransient, err)
	}

	logrus.WithFields(logrus.Fields{
		"actor":    actorID.Hex(),
		"receiver": receiverID.Hex(),
	}).Info("Friend request cancelled")
	return nil
}

// GetRelationships returns the actor's friends and both pending request
// lists as public profiles.
func (s *FriendService) GetRelationships(ctx context.Context, actorID primitive.ObjectID) (*Relationships, error) {
	actor, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	friends, err := s.publicUsers(ctx, actor.Friends)
	if err != nil {
		return nil, err
	}
	sent, err := s.publicUsers(ctx, actor.RequestsSent)
	if err != nil {
		return nil, err
	}
	received, err := s.publicUsers(ctx, actor.RequestsReceived)
	if err != nil {
		return nil, err
	}

	return &Relationships{Friends: friends, Sent: sent, Received: received}, nil
}

func (s *FriendService) publicUsers(ctx context.Context, ids []primitive.ObjectID) ([]models.PublicUser, error) {
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	public := make([]models.PublicUser, 0, len(users))
	for i := range users {
		public = append(public, users[i].Public())
	}
	return public, nil
}
