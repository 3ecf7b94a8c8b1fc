package model

// Credential links a chat user to their Gyazo access token. There is at most
// one credential per UserID; storing a new token replaces the old one.
type Credential struct {
	UserID      int64
	AccessToken string
}
