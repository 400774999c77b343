// Package config handles configuration loading for valiance-gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	inference:
//	  api_key: "${GEMINI_API_KEY}"
//
// Syntax: ${VAR_NAME}
//
// For compatibility with existing deployments, GEMINI_API_KEY and
// MONGO_URI are also read directly from the environment when the
// corresponding config fields are empty.
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	inference:
//	  timeout: "20s"
//	storage:
//	  health_timeout: "1s"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//
// Inference provider:
//
//	inference:
//	  api_key: "${GEMINI_API_KEY}"
//	  model: "gemini-2.0-flash"
//	  timeout: "20s"
//
// Document store (optional; leave uri empty for local-only mode):
//
//	storage:
//	  uri: "${MONGO_URI}"
//	  database: "valiance_ai_db"
//	  max_pool_size: 5
//	  max_conn_idle: "60s"
//	  connect_timeout: "5s"
//	  health_timeout: "1s"
//
// Tuning examples:
//
//	tuning:
//	  path: "tuning_data.json"
//	  prompt_examples: 10
//
// Conversation sync:
//
//	sync:
//	  max_conversations: 10
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config
