package model

import "gorm.io/gorm"

// User struct
type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Password     string `gorm:"not null" json:"-"`
	FirstName    string `gorm:"not null" json:"first_name"`
	LastName     string `gorm:"not null" json:"last_name"`
	ProfilePhoto string `json:"profile_photo"`
	Role         string `json:"role"`

	Otp_enabled bool `gorm:"default:false;"`
	Otp_secret  string
}

// PublicUser is the projection of a User that other users may see.
type PublicUser struct {
	Id           uint   `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	ProfilePhoto string `json:"profile_photo"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		Id:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		ProfilePhoto: u.ProfilePhoto,
	}
}
