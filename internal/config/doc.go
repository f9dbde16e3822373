// Package config holds netrecon's configuration: compiled-in defaults, the
// flat Config struct populated from CLI flags, and the optional .netrecon
// YAML file with per-site overrides.
//
// Validation happens once after flag parsing via Config.Validate, which
// returns sentinel errors suitable for errors.Is matching. XDG helper
// functions resolve the per-user data directory used by the scan database.
package config
