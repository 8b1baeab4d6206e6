package queue

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kursadbilgin/folio-engine/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

func TestQueueNames(t *testing.T) {
	work := EventQueueNames()
	if len(work) != 1 || work[0] != "newsletter.dispatched" {
		t.Fatalf("EventQueueNames = %v, want [newsletter.dispatched]", work)
	}

	dlq := DLQNames()
	if len(dlq) != 1 || dlq[0] != "dlq.newsletter.dispatched" {
		t.Fatalf("DLQNames = %v, want [dlq.newsletter.dispatched]", dlq)
	}

	work[0] = "mutated"
	if EventQueueNames()[0] != NewsletterDispatchedQueue {
		t.Fatal("EventQueueNames must return a copy")
	}
}

func TestNewDispatchEvent(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("TRT", 3*3600))
	msg := domain.DispatchMessage{Subject: "March notes", Content: "body", Tags: []string{" Go ", "go", "K8s"}}
	result := &domain.DispatchResult{SuccessCount: 4, FailureCount: 1, SkippedCount: 2, Canceled: true}

	event := NewDispatchEvent("evt-1", msg, result, at)

	if event.SuccessCount != 4 || event.FailureCount != 1 || event.SkippedCount != 2 || !event.Canceled {
		t.Fatalf("counts = %+v", event)
	}
	if len(event.Tags) != 2 || event.Tags[0] != "go" || event.Tags[1] != "k8s" {
		t.Fatalf("Tags = %v, want [go k8s]", event.Tags)
	}
	if event.DispatchedAt.Location() != time.UTC {
		t.Fatalf("DispatchedAt should be UTC, got %v", event.DispatchedAt.Location())
	}
	if err := event.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
}

func TestDispatchEventValidate(t *testing.T) {
	valid := DispatchEvent{EventID: "e1", Subject: "s", DispatchedAt: time.Now()}

	tests := []struct {
		name   string
		mutate func(e *DispatchEvent)
	}{
		{name: "missing id", mutate: func(e *DispatchEvent) { e.EventID = " " }},
		{name: "missing subject", mutate: func(e *DispatchEvent) { e.Subject = "" }},
		{name: "negative count", mutate: func(e *DispatchEvent) { e.FailureCount = -1 }},
		{name: "missing timestamp", mutate: func(e *DispatchEvent) { e.DispatchedAt = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := valid
			tt.mutate(&event)
			if err := event.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestBuildPublishing(t *testing.T) {
	event := DispatchEvent{
		EventID:      "evt-42",
		RequestID:    "req-7",
		Subject:      "Hello",
		SuccessCount: 3,
		DispatchedAt: time.Now().UTC(),
	}

	publishing, err := buildPublishing(event)
	if err != nil {
		t.Fatalf("buildPublishing() error = %v", err)
	}
	if publishing.MessageId != "evt-42" || publishing.CorrelationId != "req-7" {
		t.Fatalf("ids = %q/%q", publishing.MessageId, publishing.CorrelationId)
	}
	if publishing.DeliveryMode != amqp.Persistent {
		t.Fatalf("DeliveryMode = %d, want persistent", publishing.DeliveryMode)
	}

	var decoded map[string]any
	if err := json.Unmarshal(publishing.Body, &decoded); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if decoded["successCount"] != float64(3) {
		t.Fatalf("successCount = %v", decoded["successCount"])
	}
}

func TestPublisherRejectsInvalidInput(t *testing.T) {
	var nilPublisher *RabbitMQPublisher
	if err := nilPublisher.Publish(context.Background(), NewsletterDispatchedQueue, DispatchEvent{}); err == nil {
		t.Fatal("expected error for nil publisher")
	}

	p := NewRabbitMQPublisher(&RabbitMQ{url: "amqp://unused"})
	err := p.Publish(context.Background(), "unknown.queue", DispatchEvent{EventID: "e", Subject: "s", DispatchedAt: time.Now()})
	if err == nil || !strings.Contains(err.Error(), "unknown queue") {
		t.Fatalf("Publish() error = %v, want unknown queue", err)
	}

	err = p.Publish(context.Background(), NewsletterDispatchedQueue, DispatchEvent{})
	if err == nil || !strings.Contains(err.Error(), "invalid dispatch event") {
		t.Fatalf("Publish() error = %v, want invalid dispatch event", err)
	}
}

type recordingDeclarer struct {
	exchanges []string
	queues    map[string]amqp.Table
	bindings  []string
	failQueue string
}

func (r *recordingDeclarer) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	r.exchanges = append(r.exchanges, name+":"+kind)
	return nil
}

func (r *recordingDeclarer) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	if name == r.failQueue {
		return amqp.Queue{}, errors.New("access refused")
	}
	if r.queues == nil {
		r.queues = make(map[string]amqp.Table)
	}
	r.queues[name] = args
	return amqp.Queue{Name: name}, nil
}

func (r *recordingDeclarer) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	r.bindings = append(r.bindings, name+"<-"+exchange+":"+key)
	return nil
}

func TestDeclareTopology(t *testing.T) {
	rec := &recordingDeclarer{}
	if err := declareTopology(rec); err != nil {
		t.Fatalf("declareTopology() error = %v", err)
	}

	if len(rec.exchanges) != 1 || rec.exchanges[0] != "folio.dlx:direct" {
		t.Fatalf("exchanges = %v", rec.exchanges)
	}
	args, ok := rec.queues["newsletter.dispatched"]
	if !ok {
		t.Fatal("newsletter.dispatched not declared")
	}
	if args["x-dead-letter-exchange"] != "folio.dlx" || args["x-dead-letter-routing-key"] != "newsletter.dispatched" {
		t.Fatalf("dead-letter args = %v", args)
	}
	if _, ok := rec.queues["dlq.newsletter.dispatched"]; !ok {
		t.Fatal("dlq not declared")
	}
	if len(rec.bindings) != 1 || rec.bindings[0] != "dlq.newsletter.dispatched<-folio.dlx:newsletter.dispatched" {
		t.Fatalf("bindings = %v", rec.bindings)
	}

	failing := &recordingDeclarer{failQueue: "dlq.newsletter.dispatched"}
	if err := declareTopology(failing); err == nil {
		t.Fatal("expected error when dlq declaration fails")
	}
}

func TestRabbitMQReconnectHonorsContext(t *testing.T) {
	r := &RabbitMQ{
		url: "amqp://unreachable",
		dial: func(url string) (*amqp.Connection, error) {
			return nil, errors.New("connection refused")
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := r.reconnect(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("reconnect() error = %v, want deadline exceeded", err)
	}
}

func TestNewRabbitMQRequiresURL(t *testing.T) {
	if _, err := NewRabbitMQ(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestRabbitMQPingRedialsDroppedConnection(t *testing.T) {
	dials := 0
	r := &RabbitMQ{
		url: "amqp://unreachable",
		dial: func(url string) (*amqp.Connection, error) {
			dials++
			return nil, errors.New("connection refused")
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := r.Ping(ctx); err == nil {
		t.Fatal("expected ping error without a connection")
	}
	if dials == 0 {
		t.Fatal("ping should attempt to redial")
	}
}
