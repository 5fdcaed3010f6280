package settings

import "time"

// GeneralID is the _id of the single settings document.
const GeneralID = "general"

type Settings struct {
	ID                string    `bson:"_id" json:"-"`
	BoardName         string    `bson:"boardName,omitempty" json:"boardName"`
	NotificationEmail string    `bson:"notificationEmail,omitempty" json:"notificationEmail"`
	UpdatedAt         time.Time `bson:"updatedAt,omitempty" json:"updatedAt"`
}

type NotificationEmailRequest struct {
	Email string `json:"email"`
}
