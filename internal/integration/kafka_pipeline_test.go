//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/forecast-scoring-service/internal/adapter/kafka"
	"github.com/couchcryptid/forecast-scoring-service/internal/catalog"
	"github.com/couchcryptid/forecast-scoring-service/internal/config"
	"github.com/couchcryptid/forecast-scoring-service/internal/domain"
	"github.com/couchcryptid/forecast-scoring-service/internal/mockdata"
	"github.com/couchcryptid/forecast-scoring-service/internal/observability"
	"github.com/couchcryptid/forecast-scoring-service/internal/pipeline"
	"github.com/couchcryptid/forecast-scoring-service/internal/query"
	"github.com/couchcryptid/forecast-scoring-service/internal/scoring"
	"github.com/couchcryptid/forecast-scoring-service/internal/series"
)

const testScoresTopic = "test-forecast-scores"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	cc, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer cc.Close()

	require.NoError(t, cc.CreateTopics(kafkago.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}))
}

// publishedScore holds a deserialized message read from the scores topic.
type publishedScore struct {
	Row     domain.MetricRow
	Key     string
	Headers map[string]string
}

func readScore(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedScore {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from scores topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var row domain.MetricRow
	require.NoError(t, json.Unmarshal(msg.Value, &row), "unmarshal score message")

	return publishedScore{Row: row, Key: string(msg.Key), Headers: headers}
}

// TestExporterEndToEnd generates a data directory, builds the metrics table
// through the query facade, and publishes it to a real Kafka broker.
func TestExporterEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testScoresTopic)

	dir := t.TempDir()
	models := []string{"holtwinters", "prophet"}
	_, err := mockdata.Generate(dir, mockdata.Options{Models: models, ForecastYear: 2024, UnseenYear: 2025, Seed: 11})
	require.NoError(t, err)

	metrics := observability.NewMetricsForTesting()
	logger := discardLogger()
	facade := query.New(
		catalog.NewScanner(dir),
		series.NewLoader(dir, logger, metrics),
		scoring.NewMetricsReader(dir, logger, metrics),
		logger, metrics, 4,
	)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaScoresTopic: testScoresTopic}
	writer := kafka.NewWriter(cfg, logger)
	t.Cleanup(func() { _ = writer.Close() })

	exp := pipeline.New(facade, writer, logger, metrics, 5)
	n, err := exp.Run(ctx, 2024, pipeline.SourceMetrics)
	require.NoError(t, err)
	require.Equal(t, len(models)*len(domain.Regions()), n)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testScoresTopic,
		GroupID:     fmt.Sprintf("test-scores-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	table, err := facade.RMSETable(ctx, 2024)
	require.NoError(t, err)

	for range n {
		ps := readScore(ctx, t, consumer)
		assert.Equal(t, fmt.Sprintf("%s/%s/2024", ps.Row.Model, ps.Row.Region), ps.Key)
		assert.Equal(t, "metrics", ps.Headers["source"])
		_, err := time.Parse(time.RFC3339, ps.Headers["published_at"])
		assert.NoError(t, err, "published_at should be valid RFC3339")
		assert.InDelta(t, table[ps.Row.Model][ps.Row.Region], ps.Row.RMSE, 1e-9)
	}
}

// TestExporterUnreachableBroker verifies that a publish against an
// unreachable broker fails after the bounded attempts.
func TestExporterUnreachableBroker(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := &config.Config{KafkaBrokers: []string{"127.0.0.1:1"}, KafkaScoresTopic: testScoresTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	src := staticSource{query.Table{"lstm": {domain.Bopal: 1.5}}}
	exp := pipeline.New(src, writer, discardLogger(), observability.NewMetricsForTesting(), 2)

	_, err := exp.Run(ctx, 2024, pipeline.SourceMetrics)
	require.Error(t, err)
}

type staticSource struct{ table query.Table }

func (s staticSource) RMSETable(context.Context, int) (query.Table, error)    { return s.table, nil }
func (s staticSource) RawRMSETable(context.Context, int) (query.Table, error) { return s.table, nil }
