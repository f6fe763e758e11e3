package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-jwt-account-service/config"
	"github.com/oksasatya/go-jwt-account-service/pkg/helpers"
	"github.com/oksasatya/go-jwt-account-service/pkg/mailer"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	if !mg.Configured() {
		log.Fatal("Mailgun not configured")
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()

	// prefetch for fair dispatch across workers
	if err := ch.Qos(16, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}
	if err := helpers.DeclareQueue(ch, cfg.RabbitMQEmailQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	consumer := cfg.AppName + "-email-worker"
	msgs, err := ch.Consume(cfg.RabbitMQEmailQueue, consumer, false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			settle(ctx, logger, msg, mg)
		}
	}()

	logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("email worker listening")
	<-stop
	logger.Info("shutting down...")
	_ = ch.Cancel(consumer, false)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
	}
}

func settle(ctx context.Context, logger *logrus.Logger, msg amqp.Delivery, mg *mailer.Mailgun) {
	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	out, err := mailer.Process(c, msg.Body, mg)
	entry := logger.WithFields(logrus.Fields{"outcome": out.String(), "delivery_tag": msg.DeliveryTag})
	switch out {
	case mailer.Ack:
		entry.Debug("email sent")
		_ = msg.Ack(false)
	case mailer.Drop:
		entry.WithError(err).Error("email job dropped")
		_ = msg.Nack(false, false)
	default:
		entry.WithError(err).Warn("email send failed")
		_ = msg.Nack(false, true)
	}
}
