// Package config loads and validates Hearth Core configuration.
//
// Configuration comes from three layers, later layers overriding earlier:
//
//  1. Hardcoded defaults
//  2. A YAML file (configs/config.yaml by default)
//  3. HEARTH_* environment variables (secrets belong here, not in the file)
//
// The loaded Config is passed down explicitly to every component at
// construction time; nothing reads configuration from ambient globals.
package config
