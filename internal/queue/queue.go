package queue

import (
	"context"
	"fmt"
)

// Publisher publishes domain events to a queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, event DispatchEvent) error
	Close() error
}

const (
	// NewsletterDispatchedQueue receives one DispatchEvent per bulk send.
	NewsletterDispatchedQueue = "newsletter.dispatched"

	dlxExchangeName = "folio.dlx"
)

var eventQueues = []string{
	NewsletterDispatchedQueue,
}

// DLQName returns the dead-letter queue for an event queue, e.g. dlq.newsletter.dispatched.
func DLQName(queue string) string {
	return fmt.Sprintf("dlq.%s", queue)
}

// EventQueueNames returns every declared event queue.
func EventQueueNames() []string {
	return append([]string(nil), eventQueues...)
}

// DLQNames returns the dead-letter queue of every event queue.
func DLQNames() []string {
	queues := make([]string, 0, len(eventQueues))
	for _, name := range eventQueues {
		queues = append(queues, DLQName(name))
	}
	return queues
}

func isKnownQueue(name string) bool {
	for _, q := range eventQueues {
		if q == name {
			return true
		}
	}
	return false
}
