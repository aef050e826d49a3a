package model

import "time"

type Job struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"` // HTML from the rich text editor, or plain text
	CreatedAt   time.Time `json:"created_at"`
}

func (j Job) Key() int64 {
	return j.ID
}
