package entity

type Player struct {
	ID   string `json:"id"`
	Mark string `json:"mark,omitempty"`
}
