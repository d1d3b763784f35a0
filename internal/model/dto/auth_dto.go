package dto

// Identity 经过认证的登录身份
type Identity struct {
	UserID    string
	Email     string
	FullName  *string
	AvatarURL *string
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token string    `json:"token"`
	User  *UserInfo `json:"user"`
	Next  string    `json:"next"`
}

// UserInfo 用户信息（返回给前端）
type UserInfo struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
	Plan      string  `json:"plan"`
}
