package models

import "time"

const (
	DefaultAvatar = "avatar01.png"
	DefaultTheme  = "light"
)

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	PassHash  []byte    `json:"-"`
	Avatar    string    `json:"avatar"`
	Theme     string    `json:"theme"`
	CreatedAt time.Time `json:"created_at"`
}
