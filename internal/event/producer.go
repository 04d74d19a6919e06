package event

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer is an async kafka publisher. Messages are queued on a buffered
// channel and written by a single goroutine started with Start.
type Producer struct {
	w       *kafka.Writer
	log     *zap.Logger
	inbox   chan kafka.Message
	closeCh chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewProducer(brokers []string, topic string, buf int, log *zap.Logger) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		log:     log,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				p.drain()
				return
			case m, ok := <-p.inbox:
				if !ok {
					_ = p.w.Close()
					return
				}
				p.write(m)
			}
		}
	}()
}

func (p *Producer) drain() {
	for {
		select {
		case m := <-p.inbox:
			p.write(m)
		default:
			_ = p.w.Close()
			return
		}
	}
}

func (p *Producer) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := p.w.WriteMessages(ctx, m); err != nil {
		p.log.Error("publish event failed", zap.ByteString("key", m.Key), zap.Error(err))
	}
}

func (p *Producer) Publish(ctx context.Context, eventType, key string, payload any) {
	msg, err := newMessage(ctx, eventType, key, payload, time.Now().UTC())
	if err != nil {
		p.log.Error("encode event", zap.String("type", eventType), zap.Error(err))
		return
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.log.Warn("producer closed, dropping event", zap.String("type", eventType), zap.String("key", key))
		return
	}

	select {
	case p.inbox <- msg:
	default:
		p.log.Warn("event buffer full, dropping", zap.String("type", eventType), zap.String("key", key))
	}
}

func newMessage(ctx context.Context, eventType, key string, payload any, now time.Time) (kafka.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return kafka.Message{}, err
	}

	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  Version,
		OccurredAt:    now,
		Producer:      Source,
		CorrelationID: CorrelationID(ctx),
		Payload:       body,
	}
	value, err := json.Marshal(env)
	if err != nil {
		return kafka.Message{}, err
	}

	return kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  now,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(eventType)},
		},
	}, nil
}

// Close stops accepting messages; the writer goroutine flushes what is left.
func (p *Producer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
}

func (p *Producer) WaitClosed() { <-p.closeCh }
