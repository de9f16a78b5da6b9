package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/i474232898/iss-tracker/internal/config"
	"github.com/i474232898/iss-tracker/internal/sink"
	"github.com/i474232898/iss-tracker/internal/tracker"
	"github.com/i474232898/iss-tracker/internal/tracker/providers"
)

// buildService assembles the pipeline from cfg. mem, when non-nil, is
// appended to the configured sinks so the watch-mode API can read it.
func buildService(ctx context.Context, cfg *config.AppConfig, logger *log.Logger, mem *sink.Memory) (*tracker.Service, error) {
	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	positionFetcher, geocodeFetcher := newFetchers(cfg, httpClient, logger)

	source, err := buildSource(cfg, positionFetcher, logger)
	if err != nil {
		return nil, err
	}

	out, err := buildSinks(ctx, cfg, logger, mem)
	if err != nil {
		return nil, err
	}

	return tracker.NewService(source, buildGeocoder(cfg, geocodeFetcher, logger), out, logger,
		tracker.WithSourceTag(cfg.SourceTag)), nil
}

// newFetchers gives the position source and the geocoder separate breakers
// so failures at one upstream never short-circuit the other.
func newFetchers(cfg *config.AppConfig, client *http.Client, logger *log.Logger) (position, geocode *providers.Fetcher) {
	maxFailures := uint32(cfg.BreakerMaxFailures)
	position = providers.NewFetcher(cfg.PositionProvider, client, logger, maxFailures)
	geocode = providers.NewFetcher(cfg.GeocoderProvider, client, logger, maxFailures)
	return position, geocode
}

// positionURL returns the configured URL, or the default endpoint of the
// selected provider when none is set.
func positionURL(cfg *config.AppConfig) string {
	if cfg.PositionURL != "" {
		return cfg.PositionURL
	}
	if cfg.PositionProvider == "wheretheiss" {
		return providers.DefaultWhereTheISSURL
	}
	return providers.DefaultOpenNotifyURL
}

func buildSource(cfg *config.AppConfig, fetcher *providers.Fetcher, logger *log.Logger) (tracker.PositionSource, error) {
	switch cfg.PositionProvider {
	case "open-notify", "":
		return providers.NewOpenNotifyProvider(fetcher, positionURL(cfg), logger), nil
	case "wheretheiss":
		return providers.NewWhereTheISSProvider(fetcher, positionURL(cfg), logger), nil
	default:
		return nil, fmt.Errorf("unknown position provider %q", cfg.PositionProvider)
	}
}

// buildGeocoder returns nil when no key is configured; records are then
// written without an address.
func buildGeocoder(cfg *config.AppConfig, fetcher *providers.Fetcher, logger *log.Logger) tracker.Geocoder {
	if cfg.GeocoderKey == "" {
		logger.Println("INFO: REV_GEO_KEY not set; reverse geocoding disabled")
		return nil
	}
	if cfg.GeocoderProvider == "google" {
		return providers.NewGoogleGeocoder(cfg.GeocoderKey, logger)
	}
	return providers.NewGeoapifyGeocoder(fetcher, cfg.GeocoderURL, cfg.GeocoderKey, logger)
}

func buildSinks(ctx context.Context, cfg *config.AppConfig, logger *log.Logger, mem *sink.Memory) (tracker.Sink, error) {
	var sinks []tracker.Sink
	for _, name := range cfg.Sinks {
		switch name {
		case config.SinkFile:
			sinks = append(sinks, sink.NewFileSink(cfg.LocationsFile, logger))
		case config.SinkDuckDB:
			sinks = append(sinks, sink.NewDuckDB(cfg.DuckDBPath))
		case config.SinkPostgres:
			sinks = append(sinks, sink.NewPostgres(cfg.PostgresDSN))
		case config.SinkKafka:
			sinks = append(sinks, sink.NewKafka(cfg.KafkaBroker, cfg.KafkaTopic, sink.Encoding(cfg.KafkaEncoding)))
		case config.SinkS3:
			s3, err := sink.NewS3(sink.S3Options{
				Endpoint:  cfg.MinioEndpoint,
				AccessKey: cfg.MinioAccessKey,
				SecretKey: cfg.MinioSecretKey,
				Bucket:    cfg.MinioBucket,
				UseSSL:    cfg.MinioUseSSL,
				Encoding:  sink.Encoding(cfg.KafkaEncoding),
			}, logger)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, s3)
		case config.SinkDynamoDB:
			ddb, err := sink.NewDynamoDB(ctx, cfg.AWSRegion, cfg.DynamoDBTable)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, ddb)
		case config.SinkMemory:
			if mem == nil {
				mem = sink.NewMemory(cfg.StoreMaxHistory, cfg.StoreMaxAge)
			}
			sinks = append(sinks, mem)
			mem = nil
		default:
			return nil, fmt.Errorf("unknown sink %q", name)
		}
	}
	if mem != nil {
		sinks = append(sinks, mem)
	}

	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return sink.NewMulti(sinks...), nil
}
