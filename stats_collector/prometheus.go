package stats_collector

import (
	"errors"

	"github.com/Depado/ginprom"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	DEFAULT_PROMETHEUS_NAMESPACE = "chatot"
)

type PrometheusConfig struct {
	Enabled    bool      `koanf:"enabled"`
	Token      string    `koanf:"token"`
	BucketSize []float64 `koanf:"bucket_size"`
	Namespace  string    `koanf:"namespace"`
}

func (cfg *PrometheusConfig) Validate() error {
	if !cfg.Enabled {
		return nil
	}
	if len(cfg.BucketSize) == 0 {
		return errors.New("'prometheus.bucket_size' needs at least one bucket")
	}
	return nil
}

func GetDefaultPrometheusConfig() PrometheusConfig {
	return PrometheusConfig{
		BucketSize: []float64{.00005, .000075, .0001, .00025, .0005, .00075, .001, .0025, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		Namespace:  DEFAULT_PROMETHEUS_NAMESPACE,
	}
}

var _ StatsCollector = (*PrometheusCollector)(nil)

type PrometheusCollector struct {
	config   PrometheusConfig
	registry *prometheus.Registry

	featuresProcessed  prometheus.Counter
	groupsProcessed    prometheus.Counter
	degenerateFeatures prometheus.Counter
	labelPointsEmitted prometheus.Counter
	rejectedRequests   prometheus.Counter
}

func (col *PrometheusCollector) Name() string {
	return "prometheus"
}

func (col *PrometheusCollector) Registry() *prometheus.Registry {
	return col.registry
}

func (col *PrometheusCollector) RegisterGinEngine(engine *gin.Engine) {
	p := ginprom.New(
		ginprom.Engine(engine),
		ginprom.Registry(col.registry),
		ginprom.Subsystem("gin"),
		ginprom.Path("/metrics"),
		ginprom.Token(col.config.Token),
		ginprom.BucketSize(col.config.BucketSize),
	)
	engine.Use(p.Instrument())
}

func (col *PrometheusCollector) AddFeaturesProcessed(num uint64) {
	col.featuresProcessed.Add(float64(num))
}

func (col *PrometheusCollector) AddGroupsProcessed(num uint64) {
	col.groupsProcessed.Add(float64(num))
}

func (col *PrometheusCollector) AddDegenerateFeatures(num uint64) {
	col.degenerateFeatures.Add(float64(num))
}

func (col *PrometheusCollector) AddLabelPointsEmitted(num uint64) {
	col.labelPointsEmitted.Add(float64(num))
}

func (col *PrometheusCollector) AddRejectedRequest() {
	col.rejectedRequests.Inc()
}

func NewPrometheusCollector(config PrometheusConfig) *PrometheusCollector {
	ns := config.Namespace
	if ns == "" {
		ns = DEFAULT_PROMETHEUS_NAMESPACE
	}

	newCounter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: ns,
				Name:      name,
				Help:      help,
			},
		)
	}

	registry := prometheus.NewRegistry()
	collector := &PrometheusCollector{
		config:             config,
		registry:           registry,
		featuresProcessed:  newCounter("features_processed", "Total number of polygon features labeled"),
		groupsProcessed:    newCounter("groups_processed", "Total number of name groups reduced"),
		degenerateFeatures: newCounter("degenerate_features", "Total number of features with no usable polygon part"),
		labelPointsEmitted: newCounter("label_points_emitted", "Total number of label points produced"),
		rejectedRequests:   newCounter("rejected_requests", "Total number of label requests rejected as invalid"),
	}

	processOpts := collectors.ProcessCollectorOpts{
		Namespace: ns,
	}

	registry.MustRegister(
		collectors.NewProcessCollector(processOpts),
		collectors.NewGoCollector(
			collectors.WithGoCollectorRuntimeMetrics(
				collectors.MetricsGC,
				collectors.MetricsMemory,
			),
		),
		collector.featuresProcessed,
		collector.groupsProcessed,
		collector.degenerateFeatures,
		collector.labelPointsEmitted,
		collector.rejectedRequests,
	)

	return collector
}
