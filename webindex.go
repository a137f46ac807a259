// Package webindex provides a crawl-extract-index pipeline that fetches web
// pages, extracts normalized text and metadata, and writes the results into a
// remote search index in rate-limited batches.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., http/, goquery/, sqlite/).
package webindex
