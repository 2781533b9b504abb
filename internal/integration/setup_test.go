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
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/ridgecast/forecast-sms/internal/adapter/forecaststore"
	"github.com/ridgecast/forecast-sms/internal/adapter/registry"
	"github.com/ridgecast/forecast-sms/internal/config"
	"github.com/ridgecast/forecast-sms/internal/domain"
	"github.com/ridgecast/forecast-sms/internal/observability"
	"github.com/ridgecast/forecast-sms/internal/pipeline"
)

const (
	testSender = "+15550001111"
	testRegion = "sierra"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-broker Kafka container and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func testConfig(t *testing.T, broker, groupSuffix string) *config.Config {
	t.Helper()

	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.KafkaBrokers = []string{broker}
	cfg.KafkaSourceTopic = testSourceTopic
	cfg.KafkaSinkTopic = testSinkTopic
	cfg.KafkaGroupID = fmt.Sprintf("test-%s-%d", groupSuffix, time.Now().UnixNano())
	return cfg
}

// staticTerrain fails every lookup; the fixture commands never target raw GPS
// coordinates, so the responder falls back to cell elevations if it is hit.
type staticTerrain struct{}

func (staticTerrain) ElevationM(context.Context, float64, float64) (float64, error) {
	return 0, fmt.Errorf("terrain lookups not available in fixture")
}

// seededResponder builds a responder over in-memory reference data: one
// two-waypoint route with forecast series stored for both cells.
func seededResponder(t *testing.T, cfg *config.Config) *pipeline.SMSResponder {
	t.Helper()

	route := domain.Route{
		ID:       1,
		Code:     "JMTN",
		Name:     "John Muir Trail North",
		RefLat:   37.85,
		RefLon:   -119.55,
		Timezone: "UTC",
		Region:   testRegion,
		Waypoints: []domain.Waypoint{
			{ID: 1, Code: "TRAILH", Name: "Trailhead", Kind: domain.WaypointPOI, Lat: 37.852, Lon: -119.558, ElevationM: 1230},
			{ID: 2, Code: "BEARPK", Name: "Bear Peak", Kind: domain.WaypointPeak, Lat: 37.952, Lon: -119.508, ElevationM: 3210},
		},
	}

	reg := registry.NewMemory()
	reg.AddRoute(route)
	reg.Subscribe(domain.Subscription{
		Phone:         testSender,
		RouteID:       1,
		Tier:          domain.TierStandard,
		BillingRegion: "us",
	})

	region, ok := domain.RegionByName(testRegion)
	require.True(t, ok)

	store := forecaststore.NewMemory()
	for _, wp := range route.Waypoints {
		cell, err := region.Resolve(wp.Lat, wp.Lon)
		require.NoError(t, err)
		store.Put(testRegion, seriesForCell(cell, wp.ElevationM-150))
	}

	responder, err := pipeline.NewResponder(cfg, reg, store, staticTerrain{}, discardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)
	return responder
}

func seriesForCell(cell domain.GridCell, elevM float64) domain.CellSeries {
	base := time.Date(2025, 8, 26, 6, 0, 0, 0, time.UTC)
	samples := make([]domain.ForecastSample, 8)
	for i := range samples {
		samples[i] = domain.ForecastSample{
			ValidAt:        base.Add(time.Duration(i) * time.Hour),
			Temp:           domain.TempRange{Lo: 5, Hi: 15},
			RainProbPct:    20,
			Precip:         domain.MMRange{Lo: 0, Hi: 0.4},
			PrecipType:     domain.PrecipRain,
			WindAvgKmh:     10,
			WindGustKmh:    20,
			WindDirection:  "SW",
			CloudCoverPct:  30,
			SourceProvider: "test-model",
		}
	}
	return domain.CellSeries{Cell: cell, ElevationM: elevM, Samples: samples}
}

func inboundPayload(t *testing.T, id, from, text string) []byte {
	t.Helper()
	payload, err := json.Marshal(domain.InboundMessage{
		MessageID:  id,
		From:       from,
		To:         "+15550009999",
		Text:       text,
		ReceivedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return payload
}

// reply holds a deserialized message read from the sink topic.
type reply struct {
	Out     domain.OutboundMessage
	Key     string
	Headers map[string]string
}

// readReply reads a single message from the sink consumer and deserializes it.
func readReply(ctx context.Context, t *testing.T, consumer *kafkago.Reader) reply {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var out domain.OutboundMessage
	require.NoError(t, json.Unmarshal(msg.Value, &out), "unmarshal reply")

	return reply{Out: out, Key: string(msg.Key), Headers: headers}
}
