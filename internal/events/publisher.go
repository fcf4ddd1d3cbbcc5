package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/salonbook/booking-service/internal/domain"
)

const (
	// TypeReservationCreated тип события о созданном бронировании
	TypeReservationCreated = "reservation.created"

	eventSource = "booking-service"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Envelope обёртка события для внешних потребителей (уведомления и т.п.)
type Envelope struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Source string          `json:"source"`
	Time   time.Time       `json:"time"`
	Data   json.RawMessage `json:"data"`
}

// ReservationCreatedEvent payload события о созданном бронировании
type ReservationCreatedEvent struct {
	ReservationID int64  `json:"reservationId"`
	SalonID       int64  `json:"salonId"`
	UserID        int64  `json:"userId"`
	Date          string `json:"date"`      // YYYY-MM-DD
	StartTime     string `json:"startTime"` // HH:MM
	MenuName      string `json:"menuName"`
	Status        string `json:"status"`
}

// Publisher публикует события бронирований в Kafka.
// Публикация best-effort: отказ брокера логируется вызывающим и не должен
// откатывать уже созданное бронирование.
type Publisher struct {
	writer *kafkago.Writer
	log    Logger
}

// NewPublisher создает publisher для указанных брокеров и топика
func NewPublisher(brokers []string, topic string, log Logger) *Publisher {
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}

	return &Publisher{writer: writer, log: log}
}

// PublishReservationCreated публикует событие о созданном бронировании.
// Ключ сообщения - salonId, чтобы события одного салона шли по порядку.
func (p *Publisher) PublishReservationCreated(ctx context.Context, res *domain.Reservation) error {
	payload := ReservationCreatedEvent{
		ReservationID: res.ID,
		SalonID:       res.SalonID,
		UserID:        res.UserID,
		Date:          res.Date.Format(domain.DateFormat),
		StartTime:     res.StartTime.String(),
		MenuName:      res.MenuName,
		Status:        string(res.Status),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("events: failed to marshal payload: %w", err)
	}

	envelope := Envelope{
		ID:     uuid.NewString(),
		Type:   TypeReservationCreated,
		Source: eventSource,
		Time:   time.Now().UTC(),
		Data:   data,
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("events: failed to marshal envelope: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(fmt.Sprintf("%d", res.SalonID)),
		Value: value,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events: failed to write message: %w", err)
	}

	p.log.Info("events: published %s for reservation id=%d", TypeReservationCreated, res.ID)
	return nil
}

// Close закрывает соединение с Kafka
func (p *Publisher) Close() error {
	return p.writer.Close()
}
