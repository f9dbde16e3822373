// Package dnsx provides DNS resolution for recon targets: single-domain
// IPv4 resolution, full record enumeration, and concurrent batch
// resolution of domain lists.
package dnsx
