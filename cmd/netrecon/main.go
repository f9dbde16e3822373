// Package main provides the entry point for the netrecon CLI.
//
// netrecon is a network reconnaissance toolkit for authorized security
// assessments. It crawls target sites within a strict domain scope and
// gathers DNS, WHOIS, web, and port information about target domains.
//
// Usage:
//
//	netrecon crawl <url>
//	netrecon recon <domain>
//
// See --help for all available options.
package main

// main is the entry point for netrecon.
func main() {
	Execute()
}
