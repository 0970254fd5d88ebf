package dto

import "time"

// UserOutput carries the public user fields; the credential never leaves
// the service layer.
type UserOutput struct {
	ID           int       `json:"id_usuario"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"fecha_registro"`
}

type TokenResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	TokenType    string     `json:"token_type"`
	ExpiresIn    int64      `json:"expires_in"`
	User         UserOutput `json:"user"`
}
