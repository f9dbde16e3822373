// Package protocol implements the network probes used by recon scans:
// TCP port probing with outcome classification, HTTP header collection
// with security analysis, and a reachability probe for web services.
package protocol
