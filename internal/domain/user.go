package domain

import "time"

// User — пользователь платформы.
type User struct {
	// ID — идентификатор пользователя, назначается БД при создании.
	ID int64 `json:"id"`

	// Username — уникальное имя пользователя.
	Username string `json:"username"`

	// Email — электронная почта.
	Email string `json:"email"`

	// PasswordHash — bcrypt-хэш пароля. Не сериализуется наружу.
	PasswordHash string `json:"-"`

	// Balance — баланс пользователя в условных единицах.
	Balance float64 `json:"balance"`

	// IsActive — флаг активности.
	IsActive bool `json:"is_active"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего обновления.
	UpdatedAt time.Time `json:"updated_at"`
}

// CanAfford проверяет, хватает ли баланса на списание amount.
func (u *User) CanAfford(amount float64) bool {
	return u.Balance >= amount
}
