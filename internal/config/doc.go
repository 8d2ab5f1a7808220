// Package config handles configuration loading for docket-gateway.
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
//	auth:
//	  jwt_secret: "${DOCKET_JWT_SECRET}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//	  shutdown_timeout: "10s"
//
// Databases:
//
//	database:
//	  checkpoint_path: "/var/lib/docket/checkpoints.db"
//	  clients_path: "/var/lib/docket/clients.db"
//
// Authentication:
//
//	auth:
//	  jwt_secret: "${DOCKET_JWT_SECRET}"
//
// Model provider:
//
//	llm:
//	  api_key: "${ANTHROPIC_API_KEY}"
//	  model: "claude-sonnet-4-5-20250929"
//	  max_tokens: 4096
//
// Agent integrations:
//
//	agents:
//	  prompts_dir: ""                      # optional, overrides embedded prompts
//	  legal_docs:
//	    base_url: "https://docs.example.com/api"
//	    api_key: "${LEGAL_DOCS_API_KEY}"
//	  search:
//	    api_key: "${TAVILY_API_KEY}"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
// Load configuration from a specific path:
//
//	cfg, err := config.Load("/etc/docket/gateway.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
