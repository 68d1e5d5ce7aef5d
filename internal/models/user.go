package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a user account in ChatConnect. Friendship state lives
// directly on the document: Friends is symmetric across the two users
// involved, RequestsSent/RequestsReceived form a cross-referencing pair
// (X in A.RequestsSent iff A in X.RequestsReceived).
type User struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username         string               `bson:"username" json:"username"`
	Email            string               `bson:"email" json:"email"`
	HashedPassword   string               `bson:"hashed_password" json:"-"`
	Bio              string               `bson:"bio,omitempty" json:"bio,omitempty"`
	ProfilePic       string               `bson:"profile_pic,omitempty" json:"profile_pic,omitempty"`
	IsOnline         bool                 `bson:"is_online" json:"is_online"`
	LastSeen         time.Time            `bson:"last_seen" json:"last_seen"`
	Friends          []primitive.ObjectID `bson:"friends" json:"friends"`
	RequestsSent     []primitive.ObjectID `bson:"requests_sent" json:"requests_sent"`
	RequestsReceived []primitive.ObjectID `bson:"requests_received" json:"requests_received"`
	CreatedAt        time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time            `bson:"updated_at" json:"updated_at"`
}

// PublicUser is the representation safe to return to other users.
type PublicUser struct {
	ID         primitive.ObjectID `json:"id"`
	Username   string             `json:"username"`
	Email      string             `json:"email"`
	Bio        string             `json:"bio,omitempty"`
	ProfilePic string             `json:"profile_pic,omitempty"`
	IsOnline   bool               `json:"is_online"`
	LastSeen   time.Time          `json:"last_seen"`
}

// Public strips the credential fields from a user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Bio:        u.Bio,
		ProfilePic: u.ProfilePic,
		IsOnline:   u.IsOnline,
		LastSeen:   u.LastSeen,
	}
}

// HasFriend reports whether id is in the user's friends list.
func (u *User) HasFriend(id primitive.ObjectID) bool {
	return containsID(u.Friends, id)
}

// HasSentRequestTo reports whether a request to id is pending.
func (u *User) HasSentRequestTo(id primitive.ObjectID) bool {
	return containsID(u.RequestsSent, id)
}

// HasRequestFrom reports whether a request from id is pending.
func (u *User) HasRequestFrom(id primitive.ObjectID) bool {
	return containsID(u.RequestsReceived, id)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
