package models

import "time"

// Memo is a colored sticky note.
type Memo struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    int64     `json:"user_id"`
}

type MemoInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Color   string `json:"color"`
}
