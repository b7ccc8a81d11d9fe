package queue

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/vportela/leadcrm/internal/entity"
)

// ConversionSink is one downstream collaborator notified when a lead is won.
// Delivery is best-effort: a sink error is logged and counted, never retried.
type ConversionSink interface {
	Name() string
	Notify(ctx context.Context, settings *entity.Settings, payload ConversionPayload) error
}

// Worker consumes conversion events and fans them out to the configured
// sinks (mail alert, WordPress success story, Sheets backup).
type Worker struct {
	Channel  *amqp.Channel
	Settings entity.SettingsRepositoryInterface
	Sinks    []ConversionSink
	Logger   *zap.Logger

	// OnSinkError is a metrics hook; nil is fine.
	OnSinkError func(sink string)
}

func NewWorker(ch *amqp.Channel, settings entity.SettingsRepositoryInterface, logger *zap.Logger, sinks ...ConversionSink) *Worker {
	return &Worker{
		Channel:  ch,
		Settings: settings,
		Sinks:    sinks,
		Logger:   logger,
	}
}

func (w *Worker) Start(queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer tag
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return err
	}

	for d := range msgs {
		var payload ConversionPayload
		if err := json.Unmarshal(d.Body, &payload); err != nil {
			w.Logger.Error("malformed conversion message", zap.Error(err))
			// Malformed message: reject without requeue so it dead-letters.
			d.Nack(false, false)
			continue
		}

		w.process(context.Background(), payload)

		// Sink failures are best-effort and already logged; the message is
		// done either way.
		d.Ack(false)
	}

	return nil
}

func (w *Worker) process(ctx context.Context, payload ConversionPayload) {
	settings, err := w.Settings.Get(ctx)
	if err != nil {
		w.Logger.Warn("settings load failed, skipping conversion side effects",
			zap.String("lead_id", payload.LeadID), zap.Error(err))
		return
	}

	for _, sink := range w.Sinks {
		if err := sink.Notify(ctx, settings, payload); err != nil {
			w.Logger.Warn("conversion sink failed",
				zap.String("sink", sink.Name()),
				zap.String("lead_id", payload.LeadID),
				zap.Error(err))
			if w.OnSinkError != nil {
				w.OnSinkError(sink.Name())
			}
			continue
		}
		w.Logger.Info("conversion delivered",
			zap.String("sink", sink.Name()),
			zap.String("lead_id", payload.LeadID))
	}
}
