package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/justapithecus/lode/lode"
	lodes3 "github.com/justapithecus/lode/lode/s3"

	"github.com/pithecene-io/gopherline/listing"
	"github.com/pithecene-io/gopherline/metrics"
	"github.com/pithecene-io/gopherline/types"
)

// Writer archives decoded listings into a lode dataset.
type Writer struct {
	dataset   lode.Dataset
	config    Config
	collector *metrics.Collector
}

// NewFSWriter creates a Writer with filesystem storage rooted at root.
func NewFSWriter(cfg Config, root string, collector *metrics.Collector) (*Writer, error) {
	return NewWriterWithFactory(cfg, lode.NewFSFactory(root), collector)
}

// NewS3Writer creates a Writer with S3 storage.
// Uses the AWS SDK default credential chain (env vars, shared config, IAM role).
func NewS3Writer(ctx context.Context, cfg Config, s3cfg S3Config, collector *metrics.Collector) (*Writer, error) {
	factory, err := newS3Factory(ctx, s3cfg)
	if err != nil {
		return nil, err
	}
	return NewWriterWithFactory(cfg, factory, collector)
}

// NewWriterWithFactory creates a Writer with a custom store factory.
// Use lode.NewMemoryFactory() for testing. collector may be nil.
func NewWriterWithFactory(cfg Config, factory lode.StoreFactory, collector *metrics.Collector) (*Writer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ds, err := newDataset(cfg.Dataset, factory)
	if err != nil {
		return nil, wrapStorageError("init", cfg.Dataset, err)
	}
	return &Writer{dataset: ds, config: cfg, collector: collector}, nil
}

// WriteListing writes every entry plus the summary record in one snapshot.
// One call counts as one archive write in the collector.
func (w *Writer) WriteListing(ctx context.Context, entries []listing.Entry, sum types.ListingSummary, snap metrics.Snapshot) error {
	records := make([]any, 0, len(entries)+1)
	for i, e := range entries {
		records = append(records, toEntryRecordMap(i+1, e, w.config))
	}
	records = append(records, toListingRecordMap(sum, snap, time.Now(), w.config))

	if _, err := w.dataset.Write(ctx, records, lode.Metadata{}); err != nil {
		w.collector.IncArchiveWriteFailure()
		return wrapStorageError("write", w.Path(), err)
	}
	w.collector.IncArchiveWriteSuccess()
	return nil
}

// Path returns the Hive partition prefix this writer targets, used in
// notifications and logs.
func (w *Writer) Path() string {
	return fmt.Sprintf("%s/source=%s/day=%s/listing_id=%s",
		w.config.Dataset, w.config.Source, w.config.Day, w.config.ListingID)
}

// Close releases writer resources.
func (w *Writer) Close() error {
	// Datasets hold no open handles.
	return nil
}

func newDataset(id string, factory lode.StoreFactory) (lode.Dataset, error) {
	return lode.NewDataset(
		lode.DatasetID(id),
		factory,
		lode.WithHiveLayout(partitionKeys...),
		lode.WithCodec(lode.NewJSONLCodec()),
	)
}

// newS3Factory builds a lode S3 store factory with optional region,
// endpoint and path-style overrides.
func newS3Factory(ctx context.Context, s3cfg S3Config) (lode.StoreFactory, error) {
	if err := s3cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []func(*config.LoadOptions) error
	if s3cfg.Region != "" {
		opts = append(opts, config.WithRegion(s3cfg.Region))
	}
	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, wrapStorageError("init", s3cfg.Bucket, fmt.Errorf("load AWS config: %w", err))
	}

	var s3Opts []func(*s3.Options)
	if s3cfg.Endpoint != "" {
		endpoint := s3cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	if s3cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	s3Client := s3.NewFromConfig(awsConfig, s3Opts...)

	return func() (lode.Store, error) {
		return lodes3.New(s3Client, lodes3.Config{
			Bucket: s3cfg.Bucket,
			Prefix: s3cfg.Prefix,
		})
	}, nil
}
