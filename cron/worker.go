package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"savipets/config"
	"savipets/models"
	"savipets/services/notification"
	"savipets/services/tasks"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// InitReminderWorker runs the async worker in background.
func InitReminderWorker(dispatcher notification.Dispatcher) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeVisitReminder, handleReminderTask(dispatcher))

	// Start async worker with retry logic
	go func() {
		log.Println("[ReminderWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReminderWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReminderWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleReminderTask(dispatcher notification.Dispatcher) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ReminderHandler] invalid payload: %v", err)
			return err
		}

		log.Printf("[ReminderHandler] firing reminder %s for visit %s", p.ReminderID, p.VisitID)

		event := models.VisitEvent{
			EventID:    uuid.New().String(),
			VisitID:    p.VisitID,
			BookingID:  p.BookingID,
			ActorID:    "scheduler",
			Recipient:  p.Recipient,
			Kind:       models.EventVisitReminder,
			OccurredAt: time.Now(),
		}
		if err := dispatcher.Dispatch(ctx, event); err != nil {
			log.Printf("[ReminderHandler] failed to dispatch reminder: %v", err)
			return err
		}
		return nil
	}
}
