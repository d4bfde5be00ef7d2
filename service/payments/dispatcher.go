package payments

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	kafkaGo "github.com/segmentio/kafka-go"

	"gitlab.com/agentlink-marketplace/attribution_api/model"
	kafka "gitlab.com/agentlink-marketplace/attribution_api/net/kafka"
)

// Dispatcher emits payout instructions for the payments collaborator.
// The message key is the commission event id so the collaborator can
// deduplicate replays of the same instruction
type Dispatcher struct {
	writer kafka.KafkaProducer
}

// NewDispatcher godoc
func NewDispatcher(cfg kafka.Config) *Dispatcher {
	return &Dispatcher{writer: kafka.NewWriter(cfg, cfg.PayoutTopic)}
}

// Dispatch publishes one payout instruction
func (dispatcher *Dispatcher) Dispatch(ctx context.Context, instruction model.PayoutInstruction) error {
	data, err := json.Marshal(instruction)
	if err != nil {
		return errors.Wrap(err, "marshal payout instruction")
	}
	return dispatcher.writer.WriteMessages(ctx, kafkaGo.Message{
		Key:   []byte(strconv.FormatUint(instruction.IdempotencyKey, 10)),
		Value: data,
	})
}

// Close godoc
func (dispatcher *Dispatcher) Close() error {
	return dispatcher.writer.Close()
}
