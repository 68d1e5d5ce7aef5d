package services

import (
	"context"
	"fmt"

	"github.com/Adilet2201/ChatConnect/internal/apperrors"
	"github.com/Adilet2201/ChatConnect/internal/models"
	"github.com/Adilet2201/ChatConnect/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageService handles direct messaging between friends.
type MessageService struct {
	messages repository.MessageStore
	users    repository.UserStore
}

func NewMessageService(messages repository.MessageStore, users repository.UserStore) *MessageService {
	return &MessageService{messages: messages, users: users}
}

// SendMessage persists a message after checking the sender and receiver are
// currently friends. The friendship check is the authorization gate for
// direct messaging; a failed check stores nothing.
func (s *MessageService) SendMessage(ctx context.Context, senderID, receiverID primitive.ObjectID, text string) (*models.Message, error) {
	sender, err := s.users.GetUserByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	if !sender.HasFriend(receiverID) {
		return nil, apperrors.ErrForbidden
	}

	msg := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
	}

	stored, err := s.messages.InsertMessage(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTransient, err)
	}
	return stored, nil
}

// GetHistory returns the full conversation between the user and a friend,
// oldest first.
func (s *MessageService) GetHistory(ctx context.Context, userID, friendID primitive.ObjectID) ([]models.Message, error) {
	messages, err := s.messages.GetConversation(ctx, userID, friendID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTransient, err)
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}
