package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/forecast-scoring-service/internal/config"
	"github.com/couchcryptid/forecast-scoring-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces score messages to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured scores topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaScoresTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// scoreMessage is the wire form of one model/region score.
type scoreMessage struct {
	Model       string    `json:"model"`
	Region      string    `json:"region"`
	Year        int       `json:"year"`
	RMSE        float64   `json:"rmse"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// LoadBatch serializes and publishes score rows in a single WriteMessages
// call. Rows for the same model and region land on the same partition.
func (w *Writer) LoadBatch(ctx context.Context, rows []domain.MetricRow) error {
	if len(rows) == 0 {
		return nil
	}
	publishedAt := domain.Now().UTC()
	msgs := make([]kafkago.Message, len(rows))
	for i := range rows {
		msg, err := serializeToMessage(rows[i], publishedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d score messages: %w", len(msgs), err)
	}
	w.logger.Debug("scores written", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// messageKey identifies a score stream: model/region/year.
func messageKey(row domain.MetricRow) []byte {
	return []byte(row.Model + "/" + row.Region.String() + "/" + strconv.Itoa(row.Year))
}

// serializeToMessage marshals a MetricRow into a Kafka message.
func serializeToMessage(row domain.MetricRow, publishedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(scoreMessage{
		Model:       row.Model,
		Region:      row.Region.String(),
		Year:        row.Year,
		RMSE:        row.RMSE,
		Source:      row.Source,
		PublishedAt: publishedAt,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize score %s/%s: %w", row.Model, row.Region, err)
	}
	return kafkago.Message{
		Key:   messageKey(row),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte(row.Source)},
			{Key: "published_at", Value: []byte(publishedAt.Format(time.RFC3339))},
		},
	}, nil
}
