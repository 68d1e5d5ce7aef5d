package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Adilet2201/ChatConnect/internal/apperrors"
	"github.com/Adilet2201/ChatConnect/internal/models"
	"github.com/Adilet2201/ChatConnect/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService encapsulates the business logic for user operations.
type UserService struct {
	repo repository.UserStore
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo repository.UserStore) *UserService {
	return &UserService{repo: repo}
}

// RegisterUser registers a new user after hashing their password. Username
// uniqueness is case-insensitive; email is stored lowercased.
func (s *UserService) RegisterUser(ctx context.Context, username, email, password string) (*models.User, error) {
	logrus.WithField("username", username).Info("Registering new user")

	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	taken, err := s.repo.UsernameExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTransient, err)
	}
	if taken {
		logrus.WithField("username", username).Warn("Username already in use")
		return nil, apperrors.ErrUsernameTaken
	}

	taken, err = s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTransient, err)
	}
	if taken {
		logrus.WithField("email", email).Warn("Email already in use")
		return nil, apperrors.ErrEmailTaken
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username:       username,
		Email:          email,
		HashedPassword: string(hashedPwd),
	}

	createdUser, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("User registration failed")
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTransient, err)
	}

	logrus.WithField("userID", createdUser.ID.Hex()).Info("User registered successfully")
	return createdUser, nil
}

// AuthenticateUser verifies the username and password and returns the user
// if credentials are valid.
func (s *UserService) AuthenticateUser(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		logrus.WithField("username", username).Warn("User not found")
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("username", username).Warn("Invalid credentials")
		return nil, apperrors.ErrInvalidCredentials
	}

	logrus.WithField("userID", user.ID.Hex()).Info("User authenticated successfully")
	return user, nil
}

// GetUser retrieves a user by their ID.
func (s *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// SearchUsers runs a case-insensitive match over usernames and emails. An
// empty result is not an error.
func (s *UserService) SearchUsers(ctx context.Context, query string) ([]models.PublicUser, error) {
	users, err := s.repo.SearchUsers(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTransient, err)
	}

	public := make([]models.PublicUser, 0, len(users))
	for i := range users {
		public = append(public, users[i].Public())
	}
	return public, nil
}

// UsernameAvailable reports whether a username can still be registered.
func (s *UserService) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	taken, err := s.repo.UsernameExists(ctx, username)
	if err != nil {
		return false, fmt.Errorf("%w: %v", apperrors.ErrTransient, err)
	}
	return !taken, nil
}

// GetAllUsers returns every registered user as a public profile.
func (s *UserService) GetAllUsers(ctx context.Context) ([]models.PublicUser, error) {
	users, err := s.repo.GetAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTransient, err)
	}

	public := make([]models.PublicUser, 0, len(users))
	for i := range users {
		public = append(public, users[i].Public())
	}
	return public, nil
}
