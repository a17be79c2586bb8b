package notification

import (
	"context"
	"fmt"
	"time"

	"savipets/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoTokenSource reads push tokens off the users collection.
type MongoTokenSource struct {
	coll *mongo.Collection
}

func NewMongoTokenSource() *MongoTokenSource {
	return &MongoTokenSource{
		coll: database.MongoClient.Database("savipets").Collection("users"),
	}
}

func (s *MongoTokenSource) FCMToken(ctx context.Context, userID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc struct {
		FCMToken string `bson:"fcm_token"`
	}
	err := s.coll.FindOne(ctx, bson.M{"id": userID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return "", fmt.Errorf("user %s not found", userID)
		}
		return "", fmt.Errorf("failed to fetch token for user %s: %w", userID, err)
	}
	return doc.FCMToken, nil
}
