package services

import (
	"context"
	"strings"
	"sync"

	"github.com/Adilet2201/ChatConnect/internal/apperrors"
	"github.com/Adilet2201/ChatConnect/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memUserStore is an in-memory UserStore with the same conditional-update
// semantics as the Mongo repository.
type memUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (s *memUserStore) addUser(username, email string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := &models.User{
		ID:               primitive.NewObjectID(),
		Username:         username,
		Email:            email,
		Friends:          []primitive.ObjectID{},
		RequestsSent:     []primitive.ObjectID{},
		RequestsReceived: []primitive.ObjectID{},
	}
	s.users[u.ID] = u
	return u
}

func (s *memUserStore) snapshot(id primitive.ObjectID) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.users[id]
}

func (s *memUserStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = primitive.NewObjectID()
	if user.Friends == nil {
		user.Friends = []primitive.ObjectID{}
	}
	if user.RequestsSent == nil {
		user.RequestsSent = []primitive.ObjectID{}
	}
	if user.RequestsReceived == nil {
		user.RequestsReceived = []primitive.ObjectID{}
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *memUserStore) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *memUserStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *memUserStore) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (s *memUserStore) GetAllUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}
	return users, nil
}

func (s *memUserStore) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(query)
	var users []models.User
	for _, u := range s.users {
		if strings.Contains(strings.ToLower(u.Username), q) ||
			strings.Contains(strings.ToLower(u.Email), q) {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (s *memUserStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *memUserStore) AddSentRequest(ctx context.Context, userID, otherID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.RequestsSent = addID(u.RequestsSent, otherID)
	return nil
}

func (s *memUserStore) AddReceivedRequest(ctx context.Context, userID, otherID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.RequestsReceived = addID(u.RequestsReceived, otherID)
	return nil
}

func (s *memUserStore) RemoveSentRequest(ctx context.Context, userID, otherID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return false, nil
	}
	removed := false
	u.RequestsSent, removed = removeID(u.RequestsSent, otherID)
	return removed, nil
}

func (s *memUserStore) RemoveReceivedRequest(ctx context.Context, userID, otherID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return false, nil
	}
	removed := false
	u.RequestsReceived, removed = removeID(u.RequestsReceived, otherID)
	return removed, nil
}

func (s *memUserStore) CompleteReceivedRequest(ctx context.Context, userID, requesterID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return false, nil
	}
	var removed bool
	u.RequestsReceived, removed = removeID(u.RequestsReceived, requesterID)
	if !removed {
		return false, nil
	}
	u.Friends = addID(u.Friends, requesterID)
	return true, nil
}

func (s *memUserStore) CompleteSentRequest(ctx context.Context, userID, receiverID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return false, nil
	}
	var removed bool
	u.RequestsSent, removed = removeID(u.RequestsSent, receiverID)
	if !removed {
		return false, nil
	}
	u.Friends = addID(u.Friends, receiverID)
	return true, nil
}

func (s *memUserStore) RevertCompletedRequest(ctx context.Context, userID, requesterID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.Friends, _ = removeID(u.Friends, requesterID)
	u.RequestsReceived = addID(u.RequestsReceived, requesterID)
	return nil
}

func (s *memUserStore) SetOnline(ctx context.Context, id primitive.ObjectID, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[id]; ok {
		u.IsOnline = online
	}
	return nil
}

func addID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) ([]primitive.ObjectID, bool) {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...), true
		}
	}
	return ids, false
}
