// Copyright 2025 Ecotoss
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LocationEntry is one deposit event appended to a user's history.
type LocationEntry struct {
	Latitude          float64   `bson:"latitude" json:"latitude"`
	Longitude         float64   `bson:"longitude" json:"longitude"`
	Timestamp         time.Time `bson:"timestamp" json:"timestamp"`
	SuccessfulDeposit bool      `bson:"successfulDeposit" json:"successfulDeposit"`
}

// UserScoreRecord is the per-user score document. The field names mirror the
// documents the mobile backend already maintains, so both services share one
// collection.
type UserScoreRecord struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserAuth0ID         string             `bson:"userAuth0Id" json:"userAuth0Id"`
	Compost             int                `bson:"compost" json:"compost"`
	Recycle             int                `bson:"recycle" json:"recycle"`
	Trash               int                `bson:"trash" json:"trash"`
	TotalItemsCollected int                `bson:"totalItemsCollected" json:"totalItemsCollected"`
	Locations           []LocationEntry    `bson:"locations" json:"locations"`
	ProcessedVideos     []string           `bson:"processedVideos" json:"processedVideos"`
}

// ScoreIncrements is the per-category delta derived from one analysis.
type ScoreIncrements struct {
	Compost int
	Recycle int
	Trash   int
}

// Total is the number of items counted across all categories.
func (s ScoreIncrements) Total() int {
	return s.Compost + s.Recycle + s.Trash
}

// IsZero reports whether the increments would not change any counter.
func (s ScoreIncrements) IsZero() bool {
	return s.Total() == 0
}
