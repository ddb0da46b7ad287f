package cmd

import (
	"errors"
	"fmt"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/forecast-scoring-service/internal/adapter/kafka"
	"github.com/couchcryptid/forecast-scoring-service/internal/config"
	"github.com/couchcryptid/forecast-scoring-service/internal/pipeline"
)

func newPublishCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a year's RMSE scores to Kafka",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			brokers := sharedcfg.ParseBrokers(a.v.GetString("brokers"))
			if len(brokers) == 0 {
				return errors.New("no kafka brokers configured")
			}
			topic := a.v.GetString("topic")
			source, _ := cmd.Flags().GetString("source")
			attempts, _ := cmd.Flags().GetInt("attempts")

			writer := kafka.NewWriter(&config.Config{KafkaBrokers: brokers, KafkaScoresTopic: topic}, a.logger)
			defer writer.Close()

			exp := pipeline.New(a.facade, writer, a.logger, a.metrics, attempts)
			n, err := exp.Run(cmd.Context(), a.year(cmd), source)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Published %d scores to %s\n", n, topic)
			return nil
		},
	}
	cmd.Flags().String("brokers", "localhost:9092", "comma-separated Kafka brokers")
	cmd.Flags().String("topic", "forecast-scores", "Kafka topic")
	cmd.Flags().Int("year", 0, "year (default: forecast year)")
	cmd.Flags().String("source", pipeline.SourceMetrics, "score source: metrics or raw")
	cmd.Flags().Int("attempts", 5, "publish attempts before giving up")
	return cmd
}
