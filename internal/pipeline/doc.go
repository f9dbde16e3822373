// Package pipeline orchestrates recon scans. A scan is a sequence of steps
// that each enrich one report; multiple targets run through a concurrent
// batch processor with a bounded worker count.
package pipeline
