package userservice

// User пользователь из UserService
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"` // customer | admin
}

// ErrorResponse модель ошибки от UserService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
