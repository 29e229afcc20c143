// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package models

import (
	"time"

	uuid "github.com/gofrs/uuid"
	votemodels "github.com/qolzam/forum/votes/models"
)

// Notification tells a content author that someone acted on their content.
type Notification struct {
	ObjectId   uuid.UUID             `json:"objectId" bson:"objectId"`
	Recipient  uuid.UUID             `json:"recipient" bson:"recipient"`
	Sender     uuid.UUID             `json:"sender" bson:"sender"`
	Type       string                `json:"type" bson:"type"`
	TargetType votemodels.TargetType `json:"targetType" bson:"targetType"`
	TargetID   uuid.UUID             `json:"targetId" bson:"targetId"`
	Read       bool                  `json:"read" bson:"read"`
	CreatedAt  time.Time             `json:"createdAt" bson:"createdAt"`
}

// NotificationQuery is decoded from the query string of GET /notifications.
type NotificationQuery struct {
	Page  int `schema:"page"`
	Limit int `schema:"limit"`
}

// NotificationsListResponse is the body of GET /notifications.
type NotificationsListResponse struct {
	Notifications []Notification `json:"notifications"`
	Page          int            `json:"page"`
	Limit         int            `json:"limit"`
}
