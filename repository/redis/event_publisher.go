package redis

import (
	"context"
	"encoding/json"

	redislib "github.com/redis/go-redis/v9"

	"github.com/Likheet/hermes-monitoring-sub002/domain"
)

// EventPublisher fans task events out over Redis pub/sub so that other
// processes (notification workers, dashboards) can follow task progress.
type EventPublisher struct {
	client  redislib.Cmdable
	channel string
}

func NewEventPublisher(client redislib.Cmdable, channel string) *EventPublisher {
	if channel == "" {
		channel = "hermes:tasks"
	}
	return &EventPublisher{client: client, channel: channel}
}

// Publish sends the event to the shared channel and to a per-task channel.
func (p *EventPublisher) Publish(ctx context.Context, event domain.TaskEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	pipe := p.client.Pipeline()
	pipe.Publish(ctx, p.channel, payload)
	pipe.Publish(ctx, p.channel+":"+event.TaskID, payload)
	_, err = pipe.Exec(ctx)
	return err
}

// Channel returns the shared channel name.
func (p *EventPublisher) Channel() string {
	return p.channel
}
