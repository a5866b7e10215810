// Package models contains data structures for the application's domain models.
package models

import "time"

// User is the profile of an identity subject. ID is the subject id issued by
// the identity provider and never changes; UserID is the public handle.
type User struct {
	ID           string    `gorm:"primaryKey;size:128" json:"id" bson:"_id"`
	UserID       string    `gorm:"size:64;not null;uniqueIndex" json:"user_id" bson:"user_id"`
	Email        string    `gorm:"size:255;not null" json:"email" bson:"email"`
	Name         string    `gorm:"size:255;not null" json:"name" bson:"name"`
	Mobile       string    `gorm:"size:32" json:"mobile" bson:"mobile"`
	ProfileImage string    `gorm:"size:1024" json:"profile_image" bson:"profile_image"`
	Gender       string    `gorm:"size:32" json:"gender" bson:"gender"`
	Bio          string    `gorm:"type:text" json:"bio" bson:"bio"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// UserIDClaim reserves a public handle. Its primary key is the handle itself,
// so two concurrent registrations for the same handle cannot both succeed.
type UserIDClaim struct {
	UserID    string    `gorm:"primaryKey;size:64" json:"user_id" bson:"_id"`
	Subject   string    `gorm:"size:128;not null" json:"subject" bson:"subject"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// UserUpdate carries a partial profile change; nil fields are left untouched.
type UserUpdate struct {
	Name         *string
	Mobile       *string
	ProfileImage *string
	Gender       *string
	Bio          *string
}

// Fields returns the column/value pairs present in the update.
func (u UserUpdate) Fields() map[string]any {
	out := make(map[string]any)
	if u.Name != nil {
		out["name"] = *u.Name
	}
	if u.Mobile != nil {
		out["mobile"] = *u.Mobile
	}
	if u.ProfileImage != nil {
		out["profile_image"] = *u.ProfileImage
	}
	if u.Gender != nil {
		out["gender"] = *u.Gender
	}
	if u.Bio != nil {
		out["bio"] = *u.Bio
	}
	return out
}

// Apply merges the update into u.
func (u UserUpdate) Apply(user *User) {
	if u.Name != nil {
		user.Name = *u.Name
	}
	if u.Mobile != nil {
		user.Mobile = *u.Mobile
	}
	if u.ProfileImage != nil {
		user.ProfileImage = *u.ProfileImage
	}
	if u.Gender != nil {
		user.Gender = *u.Gender
	}
	if u.Bio != nil {
		user.Bio = *u.Bio
	}
}
