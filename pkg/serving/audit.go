package serving

import (
	"context"

	"github.com/synaptica-ai/cardiorisk/pkg/common/logger"
	"github.com/synaptica-ai/cardiorisk/pkg/common/models"
)

type PredictionRecorder interface {
	RecordPrediction(ctx context.Context, log *PredictionLog) error
}

// AuditHandler stores prediction.completed events. Failed-prediction events
// are logged and acknowledged; malformed completed events are dropped so they
// do not block the partition.
func AuditHandler(recorder PredictionRecorder) func(ctx context.Context, event models.Event) error {
	return func(ctx context.Context, event models.Event) error {
		switch event.Type {
		case models.EventPredictionCompleted:
		case models.EventPredictionFailed:
			logger.Log.WithFields(map[string]interface{}{
				"event_id": event.ID,
				"error":    event.Data["error"],
			}).Info("prediction failed upstream")
			return nil
		default:
			logger.Log.WithField("event_type", event.Type).Debug("ignoring event")
			return nil
		}

		entry, err := LogFromEvent(event)
		if err != nil {
			logger.Log.WithError(err).WithField("event_id", event.ID).Warn("dropping malformed prediction event")
			return nil
		}
		return recorder.RecordPrediction(ctx, entry)
	}
}
