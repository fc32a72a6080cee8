package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"memorybook/config"
	"memorybook/utils"

	"github.com/hibiken/asynq"
)

const TypeVerificationEmail = "login:verification_email"

// VerificationEmailPayload carries one queued verification link.
type VerificationEmailPayload struct {
	Email string `json:"email"`
	Link  string `json:"link"`
}

var queueClient *asynq.Client

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitQueueClient prepares the enqueue side.
func InitQueueClient() {
	queueClient = asynq.NewClient(redisOpts())
}

// EnqueueVerificationEmail queues a verification link for delivery.
// Delivery is asynchronous: sign-in does not wait on SMTP.
func EnqueueVerificationEmail(email, link string) error {
	if queueClient == nil {
		return fmt.Errorf("queue client not initialized")
	}
	payload, err := json.Marshal(VerificationEmailPayload{Email: email, Link: link})
	if err != nil {
		return fmt.Errorf("failed to marshal verification email payload: %w", err)
	}
	task := asynq.NewTask(TypeVerificationEmail, payload)
	if _, err := queueClient.Enqueue(task, asynq.MaxRetry(5), asynq.Timeout(30*time.Second)); err != nil {
		return fmt.Errorf("failed to enqueue verification email: %w", err)
	}
	return nil
}

// InitMailWorker runs the async worker in background.
func InitMailWorker(mailer utils.Mailer) {
	srv := asynq.NewServer(
		redisOpts(),
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeVerificationEmail, handleVerificationEmail(mailer))

	go func() {
		log.Println("[MailWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[MailWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[MailWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleVerificationEmail(mailer utils.Mailer) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p VerificationEmailPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[MailWorker] invalid payload: %v", err)
			return err
		}
		if err := mailer.SendVerificationEmail(p.Email, p.Link); err != nil {
			log.Printf("[MailWorker] failed to deliver verification email to %s: %v", p.Email, err)
			return err
		}
		return nil
	}
}
