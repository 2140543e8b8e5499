// Package driving defines what the CLI, the HTTP API and the MCP server
// call into: ingest, chat, stores and settings.
//
// internal/core/services implements every interface here.
package driving
