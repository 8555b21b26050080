package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/feasnet/core/metrics"
	"github.com/kilianp07/feasnet/infra/logger"
)

// InfluxSink writes search activity to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
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

// RecordSearchStep writes the step as a line protocol point.
func (s *InfluxSink) RecordSearchStep(step coremetrics.SearchStep) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("search_step").
		AddTag("trial_id", step.TrialID).
		AddTag("cache_hit", strconv.FormatBool(step.CacheHit)).
		AddField("bias", step.Bias).
		AddField("generation", step.Generation).
		AddField("step", step.Step).
		AddField("electrified_count", step.ElectrifiedCount).
		AddField("split_count", step.SplitCount).
		AddField("rotations_below_zero", step.RotationsBelowZero).
		SetTime(step.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTrialOutcome writes the generation outcome.
func (s *InfluxSink) RecordTrialOutcome(outcome coremetrics.TrialOutcome) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("trial_outcome").
		AddTag("trial_id", outcome.TrialID).
		AddTag("status", outcome.Status).
		AddField("bias", outcome.Bias).
		AddField("generation", outcome.Generation).
		AddField("steps", outcome.Steps).
		SetTime(outcome.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordOracleRun writes the oracle invocation.
func (s *InfluxSink) RecordOracleRun(run coremetrics.OracleRun) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("oracle_run").
		AddTag("trial_id", run.TrialID).
		AddTag("failed", strconv.FormatBool(run.Failed)).
		AddField("scenario_id", run.ScenarioID).
		AddField("duration_ms", run.Duration.Milliseconds()).
		SetTime(run.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }
