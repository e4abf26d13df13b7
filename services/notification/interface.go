package notification

import (
	"context"
	"encoding/json"

	"laundrybook/models"
	"laundrybook/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TaskReservationConfirmed is the asynq task type for a confirmed booking.
const TaskReservationConfirmed = "notification:reservation_confirmed"

type reservationPayload struct {
	Room   string `json:"room"`
	SlotID string `json:"slotId"`
	Time   string `json:"time"`
	Date   string `json:"date"`
}

// AsynqNotificationService enqueues push notifications for background
// delivery. Enqueue failures are logged and swallowed: notifications are
// best-effort and must never affect reservation state.
type AsynqNotificationService struct {
	Client *asynq.Client
}

func NewAsynqNotificationService(client *asynq.Client) *AsynqNotificationService {
	return &AsynqNotificationService{Client: client}
}

// ReservationConfirmed queues a "slot booked" push for the holding room.
func (s *AsynqNotificationService) ReservationConfirmed(ctx context.Context, room string, slot models.Slot) {
	payload, err := json.Marshal(reservationPayload{
		Room:   room,
		SlotID: slot.ID,
		Time:   slot.Time,
		Date:   slot.Date,
	})
	if err != nil {
		utils.GetLogger().Error("Failed to marshal reservation notification", zap.Error(err))
		return
	}

	task := asynq.NewTask(TaskReservationConfirmed, payload)
	if _, err := s.Client.EnqueueContext(ctx, task, asynq.MaxRetry(3)); err != nil {
		utils.GetLogger().Error("Failed to enqueue reservation notification",
			zap.String("room", room), zap.String("slot", slot.ID), zap.Error(err))
	}
}
