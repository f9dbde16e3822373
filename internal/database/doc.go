// Package database persists scan reports and crawl records in a local
// SQLite database, so past recon runs stay queryable.
package database
