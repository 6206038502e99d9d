package metrics

import (
	"errors"

	"github.com/kilianp07/cakeday/core/factory"
	coremetrics "github.com/kilianp07/cakeday/core/metrics"
)

// ErrNoPromSink is returned by WriteTextfile when no Prometheus sink is
// configured.
var ErrNoPromSink = errors.New("no prometheus sink configured")

// init registers built-in metrics sinks.
func init() {
	mustRegister("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	mustRegister("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		s, err := NewPromSink()
		if err != nil {
			return nil, err
		}
		return s, nil
	})

	mustRegister("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c struct {
			URL    string `json:"url"`
			Token  string `json:"token"`
			Org    string `json:"org"`
			Bucket string `json:"bucket"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})
}

func mustRegister(name string, f factory.Factory[coremetrics.MetricsSink]) {
	if err := coremetrics.RegisterMetricsSink(name, f); err != nil {
		panic(err)
	}
}

// WriteTextfile writes the metrics of the first Prometheus sink found in
// sink to path.
func WriteTextfile(sink coremetrics.MetricsSink, path string) error {
	switch s := sink.(type) {
	case *PromSink:
		return s.WriteTextfile(path)
	case *coremetrics.MultiSink:
		for _, inner := range s.Sinks {
			err := WriteTextfile(inner, path)
			if !errors.Is(err, ErrNoPromSink) {
				return err
			}
		}
	}
	return ErrNoPromSink
}
