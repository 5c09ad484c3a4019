package domain

import "time"

type Member struct {
	ID           int64
	Email        string
	Nickname     string
	ProfileImage string
	CreatedAt    time.Time
}

