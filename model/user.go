package model

type User struct {
	DTO
	Email        string `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:128;not null" json:"-"`
	Name         string `gorm:"size:80;not null" json:"name"`
	IsOrganizer  bool   `gorm:"not null;default:false" json:"is_organizer"`
}

type UserResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	IsOrganizer bool   `json:"is_organizer"`
}

func (u User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		IsOrganizer: u.IsOrganizer,
	}
}

type RegisterInput struct {
	Email       string `json:"email" validate:"required,max=120"`
	Password    string `json:"password" validate:"required"`
	Name        string `json:"name" validate:"required,max=80"`
	IsOrganizer bool   `json:"is_organizer"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}
