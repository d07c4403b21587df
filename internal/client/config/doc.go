// Package config loads runtime configuration for the recipe-ai CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with --config/-c: JSON (.json) or YAML
//     (.yaml, .yml).
//  3. Environment variables (RECIPEAI_*), typically loaded from .env.
//  4. Command-line flags that were set explicitly.
//
// # File schema
//
// Durations accept strings like "60s" or integer nanoseconds:
//
//	{
//	  "server_base_url": "http://127.0.0.1:8000",
//	  "session_db_path": "recipeai.db",
//	  "detect_timeout": "60s",
//	  "request_timeout": "15s",
//	  "reveal_delay": "100ms",
//	  "upload_policy": "advisory",
//	  "max_upload_bytes": 5242880,
//	  "log_level": "info"
//	}
package config
