package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"tracking/internal/core/application/usecases/commands"
	"tracking/internal/core/domain/model/kernel"

	"github.com/segmentio/kafka-go"
)

// positionTick is the wire format of one telemetry message.
type positionTick struct {
	CourierID  string    `json:"courier_id"`
	Sequence   int64     `json:"sequence"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Heading    float64   `json:"heading"`
	RecordedAt time.Time `json:"recorded_at"`
}

// PositionConsumer feeds telemetry messages into the position relay.
type PositionConsumer struct {
	consumer *Consumer
	handler  commands.ReportPositionCommandHandler
	logger   *slog.Logger
}

// NewPositionConsumer wires the telemetry topic to the report-position handler.
func NewPositionConsumer(
	consumer *Consumer,
	handler commands.ReportPositionCommandHandler,
	logger *slog.Logger,
) *PositionConsumer {
	return &PositionConsumer{
		consumer: consumer,
		handler:  handler,
		logger:   logger.With("component", "position-consumer"),
	}
}

// Start consumes position ticks until the context is canceled.
func (c *PositionConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx, c.handleMessage)
}

// handleMessage decodes and relays one tick. Malformed messages are logged
// and committed: redelivering them cannot succeed, and an uncommitted poison
// message would wedge its partition.
func (c *PositionConsumer) handleMessage(ctx context.Context, msg kafka.Message) error {
	var tick positionTick
	if err := json.Unmarshal(msg.Value, &tick); err != nil {
		c.logger.Warn("discarding malformed tick",
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err)
		return nil
	}

	cmd, err := c.buildCommand(tick)
	if err != nil {
		c.logger.Warn("discarding invalid tick",
			"courier_id", tick.CourierID,
			"sequence", tick.Sequence,
			"error", err)
		return nil
	}

	// Stale ticks come back as a dropped result, not an error, so they
	// commit like any processed message.
	_, err = c.handler.Handle(ctx, cmd)
	return err
}

func (c *PositionConsumer) buildCommand(tick positionTick) (commands.ReportPositionCommand, error) {
	courierID, err := kernel.UUIDFromString(tick.CourierID)
	if err != nil {
		return commands.ReportPositionCommand{}, err
	}
	point, err := kernel.NewGeoPoint(tick.Lat, tick.Lng)
	if err != nil {
		return commands.ReportPositionCommand{}, err
	}
	position, err := kernel.NewPosition(point, tick.Heading, tick.RecordedAt)
	if err != nil {
		return commands.ReportPositionCommand{}, err
	}

	return commands.NewReportPositionCommand(courierID, tick.Sequence, position)
}
