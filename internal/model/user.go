package model

import "time"

type UserRole string

const (
	RoleClient UserRole = "client"
	RoleMaster UserRole = "master"
)

type User struct {
	ID              int64     `json:"id"`
	TelegramID      int64     `json:"telegram_id"`
	Username        string    `json:"username"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	LanguageCode    string    `json:"language_code"`
	Phone           string    `json:"phone"`
	Role            UserRole  `json:"role"`
	ReviewHintShown bool      `json:"review_hint_shown"` // подсказка про "оставить отзыв позже" уже показана
	CreatedAt       time.Time `json:"created_at"`
}

// IsMaster является ли пользователь мастером салона
func (u *User) IsMaster() bool {
	return u.Role == RoleMaster
}

// DisplayName имя для показа мастеру
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return "@" + u.Username
	default:
		return "Клиент"
	}
}
