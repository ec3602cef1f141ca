// internal/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User matches the document in the users collection.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Password     string             `bson:"password,omitempty" json:"-"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	OTP          string             `bson:"otp,omitempty" json:"-"`
	OTPExpires   *time.Time         `bson:"otpExpires,omitempty" json:"-"`
	GoogleID     string             `bson:"googleId,omitempty" json:"googleId,omitempty"`
	GitHubID     string             `bson:"githubId,omitempty" json:"githubId,omitempty"`
	FacebookID   string             `bson:"facebookId,omitempty" json:"facebookId,omitempty"`
	AppleID      string             `bson:"appleId,omitempty" json:"appleId,omitempty"`
	Role         string             `bson:"role" json:"role"`
	Department   string             `bson:"department,omitempty" json:"department,omitempty"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	IsAdmin      bool               `bson:"isAdmin" json:"isAdmin"`
	ProfilePhoto []Photo            `bson:"profilePhoto" json:"profilePhoto"`
	Location     string             `bson:"location,omitempty" json:"location,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// PhotoKey returns the S3 key of the current profile photo, if any.
func (u *User) PhotoKey() string {
	if len(u.ProfilePhoto) == 0 {
		return ""
	}
	return u.ProfilePhoto[0].PublicID
}

// PhotoURL returns the URL of the current profile photo, if any.
func (u *User) PhotoURL() string {
	if len(u.ProfilePhoto) == 0 {
		return ""
	}
	return u.ProfilePhoto[0].URL
}

// OTPValid reports whether otp matches and has not expired at now.
func (u *User) OTPValid(otp string, now time.Time) bool {
	if u.OTP == "" || u.OTP != otp || u.OTPExpires == nil {
		return false
	}
	return !u.OTPExpires.Before(now)
}
