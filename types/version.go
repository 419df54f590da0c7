// Package types defines shared domain types for gopherline: listing
// identity, entry views, and listing summaries.
//
//nolint:revive // types is a common Go package naming convention
package types

// Version is the canonical project version.
// The CLI, the frame contract and the notification contract share it.
const Version = "0.1.0"

// ContractVersion is stamped on frames, archive records and notifications.
// It moves in lockstep with Version.
const ContractVersion = Version
