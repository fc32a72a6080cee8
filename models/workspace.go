// models/workspace.go
package models

import "time"

// Workspace is the single shared record grouping the journal's content
// and the bottle feature. Exactly one exists per deployment; its ID
// comes from configuration.
type Workspace struct {
	ID            string    `bson:"id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	AllowedEmails []string  `bson:"allowed_emails" json:"allowedEmails"`
	Bottle        *Bottle   `bson:"bottle,omitempty" json:"bottle,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
}

// Bottle is a relocating shared note: one message, a geocoordinate,
// and a reply thread that resets whenever the message is replaced.
type Bottle struct {
	Message     string        `bson:"message" json:"message"`
	Lat         float64       `bson:"lat" json:"lat"`
	Lng         float64       `bson:"lng" json:"lng"`
	LastMovedAt time.Time     `bson:"last_moved_at" json:"lastMovedAt"`
	Replies     []BottleReply `bson:"replies" json:"replies"`
}

// BottleReply is one entry in the bottle's conversation thread.
type BottleReply struct {
	ID        string    `bson:"id" json:"id"`
	Text      string    `bson:"text" json:"text"`
	Author    string    `bson:"author" json:"author"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
