package domain

import "time"

// SearchEntry records one successful translation.
type SearchEntry struct {
	UserID int64     `bson:"userId" json:"user_id"`
	Date   time.Time `bson:"date" json:"date"`
	Source string    `bson:"source" json:"source"`
	Target string    `bson:"target" json:"target"`
	From   string    `bson:"from" json:"from"`
	To     string    `bson:"to" json:"to"`
}
