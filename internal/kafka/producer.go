package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/engdahman/conference-app/internal/config"
	"github.com/engdahman/conference-app/internal/models"
)

// Producer streams attendee lifecycle events to Kafka. Topics are set per
// message so one writer serves both event types.
type Producer struct {
	Writer *kafka.Writer
	Topics config.TopicConfig
}

func NewProducer(brokers []string, topics config.TopicConfig) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer, Topics: topics}
}

// PublishAttendeeRegistered streams the registration event to Kafka
func (p *Producer) PublishAttendeeRegistered(a models.Attendee) error {
	evt := models.NewAttendeeRegisteredEvent(a)
	msgBytes, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	fmt.Printf("Publishing to Kafka [%s]: %s\n", p.Topics.AttendeeRegistered, string(msgBytes))

	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: p.Topics.AttendeeRegistered,
			Key:   []byte(a.ID),
			Value: msgBytes,
		},
	)
}

// PublishAttendeeCheckedIn streams the check-in event to Kafka. Only the
// winning check-in call publishes it.
func (p *Producer) PublishAttendeeCheckedIn(a models.Attendee) error {
	evt := models.NewAttendeeCheckedInEvent(a)
	msgBytes, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	fmt.Printf("Publishing to Kafka [%s]: %s\n", p.Topics.AttendeeCheckedIn, string(msgBytes))

	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: p.Topics.AttendeeCheckedIn,
			Key:   []byte(a.ID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
