package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/cakeday/core/metrics"
	"github.com/kilianp07/cakeday/infra/logger"
)

// InfluxSink writes pipeline events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
	now      func() time.Time
}

// NewInfluxSink creates a sink writing to bucket on the given endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
		now:      time.Now,
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordChunk writes one cakeday_chunk point.
func (s *InfluxSink) RecordChunk(ev coremetrics.ChunkEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("cakeday_chunk").
		AddTag("converged", strconv.FormatBool(ev.Converged)).
		AddField("persons", ev.Persons).
		AddField("cake_days", ev.CakeDays).
		AddField("rounds", ev.Rounds).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(s.now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRun writes one cakeday_run point.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("cakeday_run").
		AddTag("backend", ev.Backend).
		AddTag("failed", strconv.FormatBool(ev.Failed)).
		AddField("persons", ev.Persons).
		AddField("chunks", ev.Chunks).
		AddField("cake_days", ev.CakeDays).
		AddField("small_cakes", ev.SmallCakes).
		AddField("large_cakes", ev.LargeCakes).
		AddField("nonconverged_runs", ev.NonConvergedRuns).
		AddField("peak_heap_bytes", ev.PeakHeapBytes).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(s.now())
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client's idle connections.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
