package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/Adilet2201/ChatConnect/internal/apperrors"
	"github.com/Adilet2201/ChatConnect/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserStore is the persistence surface of the user directory. The
// relationship methods operate on one document at a time; the ones returning
// a bool are conditional updates whose filter asserts the pending entry is
// still present, so a lost race reports false instead of silently matching.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)
	SearchUsers(ctx context.Context, query string) ([]models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)

	AddSentRequest(ctx context.Context, userID, otherID primitive.ObjectID) error
	AddReceivedRequest(ctx context.Context, userID, otherID primitive.ObjectID) error
	RemoveSentRequest(ctx context.Context, userID, otherID primitive.ObjectID) (bool, error)
	RemoveReceivedRequest(ctx context.Context, userID, otherID primitive.ObjectID) (bool, error)
	CompleteReceivedRequest(ctx context.Context, userID, requesterID primitive.ObjectID) (bool, error)
	CompleteSentRequest(ctx context.Context, userID, receiverID primitive.ObjectID) (bool, error)
	RevertCompletedRequest(ctx context.Context, userID, requesterID primitive.ObjectID) error

	SetOnline(ctx context.Context, id primitive.ObjectID, online bool) error
}

// UserRepository is the MongoDB implementation of UserStore.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// caseInsensitive matches the collation of the unique username index.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// CreateUser inserts a new user into the database.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	if user.Friends == nil {
		user.Friends = []primitive.ObjectID{}
	}
	if user.RequestsSent == nil {
		user.RequestsSent = []primitive.ObjectID{}
	}
	if user.RequestsReceived == nil {
		user.RequestsReceived = []primitive.ObjectID{}
	}

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert user into database")
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	user.ID = insertedID

	logrus.WithField("userID", user.ID.Hex()).Info("User inserted successfully")
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username, case-insensitively.
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	opts := options.FindOne().SetCollation(caseInsensitive)
	err := r.collection.FindOne(ctx, bson.M{"username": username}, opts).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return &user, nil
}

// GetUsersByIDs fetches user details for a list of ObjectIDs.
func (r *UserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users by IDs: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) GetAllUsers(ctx context.Context) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SearchUsers runs a case-insensitive substring match over username and email.
func (r *UserRepository) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	filter := bson.M{
		"$or": []bson.M{
			{"username": pattern},
			{"email": pattern},
		},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UsernameExists reports whether a username is already taken (any casing).
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	opts := options.Count().SetCollation(caseInsensitive).SetLimit(1)
	count, err := r.collection.CountDocuments(ctx, bson.M{"username": username}, opts)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return count > 0, nil
}

// EmailExists reports whether an email is already registered.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// AddSentRequest records otherID in the user's outgoing request list.
func (r *UserRepository) AddSentRequest(ctx context.Context, userID, otherID primitive.ObjectID) error {
	return r.update(ctx, bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"requests_sent": otherID}})
}

// AddReceivedRequest records otherID in the user's incoming request list.
func (r *UserRepository) AddReceivedRequest(ctx context.Context, userID, otherID primitive.ObjectID) error {
	return r.update(ctx, bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"requests_received": otherID}})
}

// RemoveSentRequest drops a pending outgoing request. Returns false when the
// request was not pending anymore.
func (r *UserRepository) RemoveSentRequest(ctx context.Context, userID, otherID primitive.ObjectID) (bool, error) {
	return r.conditionalUpdate(ctx,
		bson.M{"_id": userID, "requests_sent": otherID},
		bson.M{"$pull": bson.M{"requests_sent": otherID}})
}

// RemoveReceivedRequest drops a pending incoming request. Returns false when
// the request was not pending anymore.
func (r *UserRepository) RemoveReceivedRequest(ctx context.Context, userID, otherID primitive.ObjectID) (bool, error) {
	return r.conditionalUpdate(ctx,
		bson.M{"_id": userID, "requests_received": otherID},
		bson.M{"$pull": bson.M{"requests_received": otherID}})
}

// CompleteReceivedRequest atomically converts a pending incoming request into
// a friendship on the accepting user's document. Returns false when the
// request was already resolved.
func (r *UserRepository) CompleteReceivedRequest(ctx context.Context, userID, requesterID primitive.ObjectID) (bool, error) {
	return r.conditionalUpdate(ctx,
		bson.M{"_id": userID, "requests_received": requesterID},
		bson.M{
			"$pull":     bson.M{"requests_received": requesterID},
			"$addToSet": bson.M{"friends": requesterID},
		})
}

// CompleteSentRequest is the mirror write on the requester's document.
func (r *UserRepository) CompleteSentRequest(ctx context.Context, userID, receiverID primitive.ObjectID) (bool, error) {
	return r.conditionalUpdate(ctx,
		bson.M{"_id": userID, "requests_sent": receiverID},
		bson.M{
			"$pull":     bson.M{"requests_sent": receiverID},
			"$addToSet": bson.M{"friends": receiverID},
		})
}

// RevertCompletedRequest undoes CompleteReceivedRequest when the mirror write
// failed: the friendship entry is removed and the incoming request restored.
func (r *UserRepository) RevertCompletedRequest(ctx context.Context, userID, requesterID primitive.ObjectID) error {
	return r.update(ctx, bson.M{"_id": userID},
		bson.M{
			"$pull":     bson.M{"friends": requesterID},
			"$addToSet": bson.M{"requests_received": requesterID},
		})
}

// SetOnline writes the durable presence snapshot. Going offline also stamps
// last_seen.
func (r *UserRepository) SetOnline(ctx context.Context, id primitive.ObjectID, online bool) error {
	set := bson.M{"is_online": online, "updated_at": time.Now()}
	if !online {
		set["last_seen"] = time.Now()
	}
	return r.update(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

func (r *UserRepository) update(ctx context.Context, filter, update bson.M) error {
	_, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *UserRepository) conditionalUpdate(ctx context.Context, filter, update bson.M) (bool, error) {
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to update user: %w", err)
	}
	return result.MatchedCount > 0, nil
}
