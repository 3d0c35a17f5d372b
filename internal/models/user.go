package models

// User описывает профиль пользователя, возвращаемый бэкендом.
type User struct {
	ID             string `json:"id,omitempty"`
	Email          string `json:"email" validate:"required"`
	Name           string `json:"name,omitempty"`
	Plan           string `json:"plan"`
	ProposalsCount *int   `json:"proposals_count,omitempty"`
	ProposalsLimit *int   `json:"proposals_limit,omitempty"`
}

// PlanFree назначается новым пользователям.
const PlanFree = "free"

// Validate проверяет профиль пользователя.
func (u *User) Validate() error {
	return validate.Struct(u)
}

// AuthResponse описывает ответ на вход и регистрацию.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	User        *User  `json:"user,omitempty"`
}

// LoginRequest отправляется формой; поле username содержит email.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignupRequest описывает тело запроса регистрации.
type SignupRequest struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
