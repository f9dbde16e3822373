// Package crawler implements a bounded, domain-scoped web crawler.
//
// The traversal is depth-first from a single seed URL, restricted to the
// seed's exact authority, with a configurable depth bound and a politeness
// delay between requests. Fetching, link extraction, and scope filtering
// are separate pieces so each can be tested in isolation.
package crawler
