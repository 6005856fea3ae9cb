package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account that owns projects and profiles.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"` // stored lowercase, unique
	PasswordHash string             `bson:"password" json:"-"`
	Avatar       *Avatar            `bson:"avatar,omitempty" json:"avatar,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Avatar describes an image held by the blob store.
type Avatar struct {
	URL          string `bson:"url" json:"url"`
	PublicID     string `bson:"publicId,omitempty" json:"publicId,omitempty"`
	ResourceType string `bson:"resourceType,omitempty" json:"resourceType,omitempty"`
}

// Subject is the identifier carried in tokens and used as owner id on projects and profiles.
func (u *User) Subject() string { return u.ID.Hex() }

// PictureURL returns the avatar URL or "" when none is set.
func (u *User) PictureURL() string {
	if u.Avatar == nil {
		return ""
	}
	return u.Avatar.URL
}

// PublicUser is the account shape returned to clients.
type PublicUser struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	ProfilePicture string    `json:"profilePicture"`
	Avatar         *Avatar   `json:"avatar,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:             u.Subject(),
		Name:           u.Name,
		Email:          u.Email,
		ProfilePicture: u.PictureURL(),
		Avatar:         u.Avatar,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
