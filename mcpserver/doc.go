// Package mcpserver exposes a radare2 pipe as Model Context Protocol tools.
//
// The server speaks MCP over stdio and registers two tools: r2_cmd for plain
// text commands and r2_cmd_json for JSON-producing commands with optional
// gjson path extraction. See cmd/r2mcp for the runnable binary.
package mcpserver
