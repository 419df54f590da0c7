// Package archive persists decoded listings into a lode dataset.
//
// Records are JSONL, Hive-partitioned by source/day/listing_id/record_kind.
// Each listing produces one entry record per decoded line and one listing
// summary record, written in a single dataset snapshot.
package archive

import (
	"errors"
	"strings"
	"time"
)

// DefaultDataset is the dataset ID used when none is configured.
const DefaultDataset = "gopherline"

// partitionKeys is the Hive layout shared by the write and read paths.
var partitionKeys = []string{"source", "day", "listing_id", "record_kind"}

// DeriveDay computes the partition day from the listing start time.
// Format: YYYY-MM-DD in UTC.
func DeriveDay(startTime time.Time) string {
	return startTime.UTC().Format("2006-01-02")
}

// Config holds archive partition values. All fields are required.
type Config struct {
	// Dataset is the lode dataset ID.
	Dataset string
	// Source is the partition key for where the listing came from.
	Source string
	// Day is the partition key derived from the listing start time.
	Day string
	// ListingID is the partition key for the decode session.
	ListingID string
}

// Validate checks that every partition value is set.
func (c Config) Validate() error {
	switch {
	case c.Dataset == "":
		return errors.New("archive dataset is required")
	case c.Source == "":
		return errors.New("archive source is required")
	case c.Day == "":
		return errors.New("archive day is required")
	case c.ListingID == "":
		return errors.New("archive listing_id is required")
	}
	return nil
}

// S3Config holds configuration for the S3 storage backend.
type S3Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string
	// Prefix is the key prefix within the bucket (optional).
	Prefix string
	// Region is the AWS region (optional, uses default chain if empty).
	Region string
	// Endpoint is a custom endpoint URL for S3-compatible providers
	// (MinIO, R2). Empty uses the default AWS endpoint.
	Endpoint string
	// UsePathStyle forces path-style addressing. Most S3-compatible
	// providers require it.
	UsePathStyle bool
}

// Validate checks that required S3 configuration is present.
func (c *S3Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("S3 bucket is required")
	}
	return nil
}

// ParseS3Path parses a path in format "bucket/prefix" or "bucket".
func ParseS3Path(path string) (bucket, prefix string) {
	bucket, prefix, _ = strings.Cut(path, "/")
	return bucket, prefix
}
