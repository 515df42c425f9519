package cli

import (
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/carbon"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/config"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/footprint"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/location"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/observability"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/report"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/weather"
)

// newService wires the configured providers into a footprint.Service.
// metrics and publisher may be nil.
func (o *rootOptions) newService(metrics *observability.Metrics, publisher report.Publisher) (*footprint.Service, error) {
	search, err := newLocationSearch(o.cfg.Location, o.logger, metrics)
	if err != nil {
		return nil, err
	}
	lookup, err := newWeatherLookup(o.cfg.Weather, o.logger, metrics)
	if err != nil {
		return nil, err
	}

	opts := []footprint.Option{footprint.WithMetrics(metrics)}
	if publisher != nil {
		opts = append(opts, footprint.WithPublisher(publisher))
	}
	return footprint.NewService(
		carbon.NewCalculator(nil),
		search,
		lookup,
		report.NewBuilder(clockwork.NewRealClock()),
		o.logger,
		opts...,
	), nil
}

func newLocationSearch(cfg config.LocationConfig, logger zerolog.Logger, metrics *observability.Metrics) (location.LocationSearch, error) {
	switch cfg.Provider {
	case config.ProviderStatic:
		return location.NewStaticSearch(nil), nil
	case config.ProviderNominatim:
		client := location.NewNominatimClient(location.NominatimConfig{
			BaseURL:    cfg.BaseURL,
			UserAgent:  cfg.UserAgent,
			RateLimit:  cfg.RateLimit,
			Burst:      cfg.Burst,
			MaxResults: cfg.MaxResults,
			Timeout:    cfg.Timeout,
		}, logger, metrics)
		cached, err := location.NewCachedSearch(client, cfg.CacheSize, metrics)
		if err != nil {
			return nil, fmt.Errorf("create location cache: %w", err)
		}
		return cached, nil
	default:
		return nil, fmt.Errorf("unknown location provider %q", cfg.Provider)
	}
}

func newWeatherLookup(cfg config.WeatherConfig, logger zerolog.Logger, metrics *observability.Metrics) (weather.WeatherLookup, error) {
	switch cfg.Provider {
	case config.ProviderStatic:
		return weather.NewStaticLookup(clockwork.NewRealClock()), nil
	case config.ProviderOpenMeteo:
		return weather.NewOpenMeteoClient(weather.OpenMeteoConfig{
			ForecastURL:   cfg.ForecastURL,
			AirQualityURL: cfg.AirQualityURL,
			Timeout:       cfg.Timeout,
		}, logger, metrics), nil
	default:
		return nil, fmt.Errorf("unknown weather provider %q", cfg.Provider)
	}
}

// newKafkaPublisher returns nil when no brokers are configured.
func newKafkaPublisher(cfg config.KafkaConfig) report.Publisher {
	if !cfg.Enabled() {
		return nil
	}
	return report.NewKafkaPublisher(report.KafkaConfig{Brokers: cfg.Brokers, Topic: cfg.Topic})
}
