package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/tafypz/ercot-rts/pkg/queue"
)

type Publisher struct {
	js jetstream.JetStream
}

func NewPublisher(client *Client) *Publisher {
	return &Publisher{js: client.JetStream()}
}

func (p *Publisher) Publish(ctx context.Context, subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	_, err = p.js.Publish(ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}

	return nil
}

func (p *Publisher) PublishPriceBatch(ctx context.Context, batch queue.PriceBatch) error {
	return p.Publish(ctx, SubjectSettlementPrices, batch)
}

func (p *Publisher) PublishRunResult(ctx context.Context, result queue.CollectRunResult) error {
	return p.Publish(ctx, SubjectCollectRuns, result)
}
