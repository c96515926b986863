package dto

// LoginRequest 管理员登录
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=64" example:"admin"`
	Password string `json:"password" binding:"required,min=6,max=72" example:"changeme"`
}

// RefreshTokenRequest 刷新Access Token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse Token对
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type" example:"Bearer"`
	ExpiresIn    int64  `json:"expires_in" example:"3600"`
}
