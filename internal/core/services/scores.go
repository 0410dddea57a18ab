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

package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ecotoss/binsight/internal/cloud"
	"github.com/ecotoss/binsight/internal/core/model"
)

// Category names used in the score document.
const (
	CategoryCompost = "compost"
	CategoryRecycle = "recycle"
	CategoryTrash   = "trash"
)

// ClassifyTrashType maps a free-text trash description from the model to a
// score category by keyword. Anything unrecognized counts as trash.
func ClassifyTrashType(trashType string) string {
	t := strings.ToLower(trashType)
	for _, kw := range []string{"compost", "organic", "food"} {
		if strings.Contains(t, kw) {
			return CategoryCompost
		}
	}
	for _, kw := range []string{"recycl", "plastic", "bottle", "can", "paper", "cardboard", "glass", "metal"} {
		if strings.Contains(t, kw) {
			return CategoryRecycle
		}
	}
	return CategoryTrash
}

// ComputeIncrements tallies the scoreable items in an analysis result. Only
// objects the model saw actually land in the bin are counted. Error results
// yield zero increments.
func ComputeIncrements(result *model.AnalysisResult) model.ScoreIncrements {
	var inc model.ScoreIncrements
	if result == nil || result.IsError() {
		return inc
	}
	objects := result.Objects
	if objects == nil {
		objects = []model.DetectedObject{{ThrownInBin: result.ThrownInBin, TrashType: result.TrashType}}
	}
	for _, obj := range objects {
		if !strings.EqualFold(obj.ThrownInBin, "yes") {
			continue
		}
		switch ClassifyTrashType(obj.TrashType) {
		case CategoryCompost:
			inc.Compost++
		case CategoryRecycle:
			inc.Recycle++
		default:
			inc.Trash++
		}
	}
	return inc
}

// IncrementsFromSummary converts a client-side tally into increments. Used
// as the fallback when the model reply could not be scored.
func IncrementsFromSummary(summary *model.SummaryCounts) model.ScoreIncrements {
	if summary == nil {
		return model.ScoreIncrements{}
	}
	return model.ScoreIncrements{
		Compost: summary.Compost,
		Recycle: summary.Recyclable,
		Trash:   summary.Trash,
	}
}

// IncrementsForResult decides what to count for one analysis: the model's
// own reply when it is scoreable, otherwise the client's tally. A reply is
// not scoreable when it is error-shaped, or when it is a legacy single
// observation whose fields had to be defaulted (the retained raw text marks
// that case).
func IncrementsForResult(result *model.AnalysisResult, summary *model.SummaryCounts) model.ScoreIncrements {
	if result == nil || result.IsError() {
		return IncrementsFromSummary(summary)
	}
	if result.Objects == nil && result.RawResponse != "" {
		return IncrementsFromSummary(summary)
	}
	return ComputeIncrements(result)
}

// BuildScoreUpdate produces the filter and update documents for one score
// application. The filter excludes documents that already list the video in
// processedVideos, so replaying the same video is a no-op: the guard and the
// counter increments ride in one atomic UpdateOne.
func BuildScoreUpdate(userID, videoFilename string, inc model.ScoreIncrements, loc *model.GeoPoint, now time.Time) (bson.M, bson.M) {
	filter := bson.M{
		"userAuth0Id":     userID,
		"processedVideos": bson.M{"$ne": videoFilename},
	}
	update := bson.M{
		"$inc": bson.M{
			"compost":             inc.Compost,
			"recycle":             inc.Recycle,
			"trash":               inc.Trash,
			"totalItemsCollected": inc.Total(),
		},
		"$addToSet": bson.M{"processedVideos": videoFilename},
	}
	if loc != nil {
		update["$push"] = bson.M{"locations": model.LocationEntry{
			Latitude:          loc.Latitude,
			Longitude:         loc.Longitude,
			Timestamp:         now,
			SuccessfulDeposit: inc.Total() > 0,
		}}
	}
	return filter, update
}

// ScoreService applies score increments to per-user documents in MongoDB.
type ScoreService struct {
	collection *mongo.Collection
}

// NewScoreService returns a service bound to the configured collection, or
// nil when no Mongo client is available.
func NewScoreService(client *mongo.Client, cfg cloud.Mongo) *ScoreService {
	if client == nil {
		return nil
	}
	return &ScoreService{
		collection: client.Database(cfg.Database).Collection(cfg.ScoreCollection),
	}
}

// Apply records one video's increments against the user's score document.
// A video already present in processedVideos matches no document and leaves
// the record untouched.
func (s *ScoreService) Apply(ctx context.Context, userID, videoFilename string, inc model.ScoreIncrements, loc *model.GeoPoint) error {
	filter, update := BuildScoreUpdate(userID, videoFilename, inc, loc, time.Now().UTC())
	res, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update score for user %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		slog.Info("score update skipped", "user", userID, "video", videoFilename, "reason", "already processed or unknown user")
		return nil
	}
	slog.Info("score updated", "user", userID, "video", videoFilename,
		"compost", inc.Compost, "recycle", inc.Recycle, "trash", inc.Trash)
	return nil
}

// Get fetches a user's score document.
func (s *ScoreService) Get(ctx context.Context, userID string) (*model.UserScoreRecord, error) {
	var record model.UserScoreRecord
	err := s.collection.FindOne(ctx, bson.M{"userAuth0Id": userID}).Decode(&record)
	if err != nil {
		return nil, fmt.Errorf("failed to load score for user %s: %w", userID, err)
	}
	return &record, nil
}
