package model

import "time"

type DTO struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenClaim is the identity carried by an access token.
type TokenClaim struct {
	UserId      uint   `json:"user_id"`
	Email       string `json:"email"`
	IsOrganizer bool   `json:"is_organizer"`
}

type TokenData struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}
