package models

import "time"

type Alert struct {
	ID      int       `json:"id"`
	UserID  int       `json:"user_id"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
}
