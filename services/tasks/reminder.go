package tasks

import (
	"encoding/json"
	"time"

	"savipets/models"

	"github.com/hibiken/asynq"
)

const TypeVisitReminder = "visit:reminder"

func NewVisitReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeVisitReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}
