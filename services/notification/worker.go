package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"laundrybook/models"
	"laundrybook/utils"

	"firebase.google.com/go/v4/messaging"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Worker delivers queued notifications over FCM. It resolves the holding
// room back to a resident profile for the device token.
type Worker struct {
	DB *mongo.Database
}

func NewWorker(db *mongo.Database) *Worker {
	return &Worker{DB: db}
}

// NewServeMux registers all notification task handlers.
func (w *Worker) NewServeMux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskReservationConfirmed, w.HandleReservationConfirmed)
	return mux
}

func (w *Worker) HandleReservationConfirmed(ctx context.Context, t *asynq.Task) error {
	var p reservationPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("bad reservation payload: %w", err)
	}

	var profile models.Profile
	err := w.DB.Collection("profiles").FindOne(ctx, bson.M{"room": p.Room}).Decode(&profile)
	if err == mongo.ErrNoDocuments {
		utils.GetLogger().Warn("No profile for room, skipping push", zap.String("room", p.Room))
		return nil
	}
	if err != nil {
		return fmt.Errorf("profile lookup for room %s: %w", p.Room, err)
	}
	if profile.FCMToken == "" {
		utils.GetLogger().Debug("Resident has no FCM token, skipping push", zap.String("room", p.Room))
		return nil
	}
	if utils.FCMClient == nil {
		utils.GetLogger().Debug("FCM client not configured, skipping push")
		return nil
	}

	msg := &messaging.Message{
		Token: profile.FCMToken,
		Notification: &messaging.Notification{
			Title: "Slot Booked Successfully!",
			Body:  fmt.Sprintf("Your laundry slot has been confirmed for %s", p.Time),
		},
		Data: map[string]string{
			"type":   "reservation_confirmed",
			"slotId": p.SlotID,
			"time":   p.Time,
			"date":   p.Date,
			"room":   p.Room,
		},
	}
	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("fcm send to room %s: %w", p.Room, err)
	}
	return nil
}
