package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/joao-fontenele/hotwheels-storefront/internal/domain"
)

// OrderPlacedTopic carries domain.OrderPlacedEvent payloads keyed by order id.
const OrderPlacedTopic = "order.placed"

const (
	contentTypeHeader = "content-type"
	eventTypeHeader   = "event-type"

	orderPlacedEventType = "order.placed.v1"
)

var producerTracer = otel.Tracer("messaging/producer")

// OrderPublisher announces placed orders.
type OrderPublisher struct {
	writer *kafka.Writer
	topic  string
}

func NewOrderPublisher(brokers []string, topic string) *OrderPublisher {
	if topic == "" {
		topic = OrderPlacedTopic
	}
	return &OrderPublisher{
		topic: topic,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           50 * time.Millisecond,
			RequiredAcks:           kafka.RequireAll,
		},
	}
}

// PublishOrderPlaced writes event keyed by its order id, so every event for
// one order lands on the same partition.
func (p *OrderPublisher) PublishOrderPlaced(ctx context.Context, event domain.OrderPlacedEvent) error {
	if event.OrderID == "" {
		return fmt.Errorf("order placed event %s has no order id", event.OrderNumber)
	}

	msg, err := orderPlacedMessage(event)
	if err != nil {
		return err
	}

	ctx, span := producerTracer.Start(ctx, "send "+p.topic,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingOperationName("send"),
			semconv.MessagingOperationTypePublish,
			semconv.MessagingDestinationName(p.topic),
			semconv.MessagingKafkaMessageKey(event.OrderID),
			attribute.String("order.number", event.OrderNumber),
		),
	)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, NewMessageCarrier(&msg))

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("publish order %s: %w", event.OrderNumber, err)
	}

	return nil
}

func orderPlacedMessage(event domain.OrderPlacedEvent) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode order placed event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.OrderID),
		Value: data,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: contentTypeHeader, Value: []byte("application/json")},
			{Key: eventTypeHeader, Value: []byte(orderPlacedEventType)},
		},
	}, nil
}

func (p *OrderPublisher) Close() error {
	return p.writer.Close()
}
