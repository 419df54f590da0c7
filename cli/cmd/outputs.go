package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/justapithecus/lode/lode"
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/gopherline/adapter"
	"github.com/pithecene-io/gopherline/adapter/redis"
	"github.com/pithecene-io/gopherline/adapter/webhook"
	"github.com/pithecene-io/gopherline/archive"
	"github.com/pithecene-io/gopherline/cli/config"
	"github.com/pithecene-io/gopherline/metrics"
)

// storageFlags locate the archive dataset for decode --archive and show.
func storageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "storage-dataset", Usage: "Archive dataset name", Value: archive.DefaultDataset},
		&cli.StringFlag{Name: "storage-backend", Usage: "Archive backend: fs or s3", Value: config.BackendFS},
		&cli.StringFlag{Name: "storage-path", Usage: "Archive location (fs: directory, s3: bucket/prefix)"},
		&cli.StringFlag{Name: "storage-region", Usage: "AWS region for s3 (default: SDK chain)"},
		&cli.StringFlag{Name: "storage-endpoint", Usage: "Custom S3 endpoint, e.g. for MinIO"},
		&cli.BoolFlag{Name: "storage-s3-path-style", Usage: "Use path-style S3 addressing"},
	}
}

// adapterFlags configure --notify.
func adapterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "notify", Usage: "Publish a listing_decoded event through the adapter"},
		&cli.StringFlag{Name: "adapter", Usage: "Adapter type: webhook or redis"},
		&cli.StringFlag{Name: "adapter-url", Usage: "Webhook URL or Redis URL"},
		&cli.StringFlag{Name: "adapter-channel", Usage: "Redis channel (default " + redis.DefaultChannel + ")"},
		&cli.DurationFlag{Name: "adapter-timeout", Usage: "Per-attempt timeout"},
		&cli.IntFlag{Name: "adapter-retries", Usage: "Retries after the first attempt", Value: webhook.DefaultRetries},
		&cli.StringSliceFlag{Name: "adapter-header", Usage: "Webhook header as Key=Value (repeatable)"},
	}
}

// storageChoice is the resolved archive configuration.
type storageChoice struct {
	dataset   string
	backend   string
	path      string
	region    string
	endpoint  string
	pathStyle bool
}

func parseStorageChoice(c *cli.Context, cfg *config.Config) (storageChoice, error) {
	sc := storageChoice{
		dataset:   resolveString(c, "storage-dataset", configVal(cfg, func(c *config.Config) string { return c.Storage.Dataset })),
		backend:   resolveString(c, "storage-backend", configVal(cfg, func(c *config.Config) string { return c.Storage.Backend })),
		path:      resolveString(c, "storage-path", configVal(cfg, func(c *config.Config) string { return c.Storage.Path })),
		region:    resolveString(c, "storage-region", configVal(cfg, func(c *config.Config) string { return c.Storage.Region })),
		endpoint:  resolveString(c, "storage-endpoint", configVal(cfg, func(c *config.Config) string { return c.Storage.Endpoint })),
		pathStyle: resolveBool(c, "storage-s3-path-style", configVal(cfg, func(c *config.Config) bool { return c.Storage.S3PathStyle })),
	}
	switch sc.backend {
	case config.BackendFS, config.BackendS3:
	default:
		return sc, fmt.Errorf("--storage-backend %q: must be fs or s3", sc.backend)
	}
	if sc.path == "" {
		return sc, fmt.Errorf("--storage-path is required (fs: directory, s3: bucket/prefix)")
	}
	return sc, nil
}

func openArchive(ctx context.Context, sc storageChoice, cfg archive.Config, collector *metrics.Collector) (*archive.Writer, error) {
	if sc.backend == config.BackendS3 {
		bucket, prefix := archive.ParseS3Path(sc.path)
		return archive.NewS3Writer(ctx, cfg, archive.S3Config{
			Bucket:       bucket,
			Prefix:       prefix,
			Region:       sc.region,
			Endpoint:     sc.endpoint,
			UsePathStyle: sc.pathStyle,
		}, collector)
	}
	return archive.NewFSWriter(cfg, sc.path, collector)
}

func openReadDataset(ctx context.Context, sc storageChoice) (lode.Dataset, error) {
	if sc.backend == config.BackendS3 {
		bucket, prefix := archive.ParseS3Path(sc.path)
		return archive.NewReadDatasetS3(ctx, sc.dataset, archive.S3Config{
			Bucket:       bucket,
			Prefix:       prefix,
			Region:       sc.region,
			Endpoint:     sc.endpoint,
			UsePathStyle: sc.pathStyle,
		})
	}
	return archive.NewReadDatasetFS(sc.dataset, sc.path)
}

// adapterChoice is the resolved notification configuration.
type adapterChoice struct {
	kind    string
	url     string
	channel string
	headers map[string]string
	timeout time.Duration
	retries int
}

func parseAdapterChoice(c *cli.Context, cfg *config.Config) (adapterChoice, error) {
	ac := adapterChoice{
		kind:    resolveString(c, "adapter", configVal(cfg, func(c *config.Config) string { return c.Adapter.Type })),
		url:     resolveString(c, "adapter-url", configVal(cfg, func(c *config.Config) string { return c.Adapter.URL })),
		channel: resolveString(c, "adapter-channel", configVal(cfg, func(c *config.Config) string { return c.Adapter.Channel })),
		timeout: resolveDuration(c, "adapter-timeout", configVal(cfg, func(c *config.Config) time.Duration { return c.Adapter.Timeout.Duration })),
		retries: c.Int("adapter-retries"),
		headers: map[string]string{},
	}
	if !c.IsSet("adapter-retries") {
		if r := configVal(cfg, func(c *config.Config) *int { return c.Adapter.Retries }); r != nil {
			ac.retries = *r
		}
	}
	for k, v := range configVal(cfg, func(c *config.Config) map[string]string { return c.Adapter.Headers }) {
		ac.headers[k] = v
	}
	for _, h := range c.StringSlice("adapter-header") {
		k, v, ok := strings.Cut(h, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return ac, fmt.Errorf("--adapter-header %q: expected Key=Value", h)
		}
		ac.headers[http.CanonicalHeaderKey(strings.TrimSpace(k))] = v
	}

	switch ac.kind {
	case "":
		return ac, fmt.Errorf("--adapter is required with --notify (webhook or redis)")
	case config.AdapterWebhook, config.AdapterRedis:
	default:
		return ac, fmt.Errorf("unknown adapter %q: must be webhook or redis", ac.kind)
	}
	if ac.url == "" {
		return ac, fmt.Errorf("--adapter-url is required for %s adapter", ac.kind)
	}
	if ac.retries < 0 {
		return ac, fmt.Errorf("--adapter-retries must be >= 0, got %d", ac.retries)
	}
	return ac, nil
}

func buildAdapter(ac adapterChoice) (adapter.Adapter, error) {
	if ac.kind == config.AdapterRedis {
		a, err := redis.New(redis.Config{
			URL:     ac.url,
			Channel: ac.channel,
			Timeout: ac.timeout,
			Retries: ac.retries,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	}
	a, err := webhook.New(webhook.Config{
		URL:     ac.url,
		Headers: ac.headers,
		Timeout: ac.timeout,
		Retries: ac.retries,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}
