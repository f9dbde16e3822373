// Package model defines the core data structures shared across netrecon.
//
// The central types are:
//
//   - CrawlTarget: the immutable scheme+authority scope of one crawl
//   - CrawledPage: one successfully fetched page in crawl output order
//   - ReconReport: the accumulated result of a full reconnaissance run
//   - Finding and Severity: ranked observations from header and port analysis
//
// These types carry no behavior beyond construction and small helpers so
// that every other package (crawler, pipeline, report, database) can depend
// on them without import cycles.
package model
