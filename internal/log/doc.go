// Package log provides SecureHandler, an slog.Handler wrapper that redacts
// credentials from log output. netrecon passes per-site cookies and headers
// through its crawl and recon paths; SecureHandler guarantees those values
// are masked no matter which code path logs them.
package log
