package models

import (
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

// User is an account directory profile, stored in PostgreSQL.
type User struct {
	gorm.Model  `json:"-"`
	ID          uint   `json:"id" gorm:"primaryKey"`
	UID         string `json:"uid" gorm:"uniqueIndex"` // document-store user id
	DisplayName string `json:"displayName"`
	Username    string `json:"username" gorm:"uniqueIndex"`
	Email       string `json:"email" gorm:"uniqueIndex"`
	AvatarURL   string `json:"avatarUrl"`
	Bio         string `json:"bio"`
	FirebaseUID string `json:"firebase_uid,omitempty" gorm:"uniqueIndex"`
}

// Profile is the compact projection handed to renderers and notifications.
type Profile struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Username    string `json:"username"`
	AvatarURL   string `json:"avatarUrl"`
}

// ToProfile projects the compact display fields.
func (u *User) ToProfile() Profile {
	return Profile{
		UID:         u.UID,
		DisplayName: u.DisplayName,
		Username:    u.Username,
		AvatarURL:   u.AvatarURL,
	}
}

type CreateUserRequest struct {
	DisplayName string `json:"displayName" validate:"required,min=2,max=50"`
	Username    string `json:"username" validate:"required,min=2,max=30"`
	Email       string `json:"email" validate:"required,email"`
	AvatarURL   string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
	FirebaseUID string `json:"firebase_uid" validate:"required"`
}

type UpdateUserRequest struct {
	DisplayName string `json:"displayName,omitempty" validate:"omitempty,min=2,max=50"`
	AvatarURL   string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
	Bio         string `json:"bio,omitempty" validate:"omitempty,max=500"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	UID    string `json:"uid"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
