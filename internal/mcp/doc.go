// Package mcp exposes text extraction as MCP (Model Context Protocol) tools.
//
// The server speaks JSON-RPC 2.0 over stdio, one message per line:
//   - Input: requests and notifications on stdin
//   - Output: responses and notifications on stdout
//
// Supported methods:
//   - initialize: Protocol handshake
//   - notifications/initialized: Client acknowledgment (no response)
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Tools
//
//   - image_extract_text: Extract Markdown from one or more image files
//   - image_normalize: Normalize an image without sending it anywhere
//   - image_inspect: Read image dimensions and format from the header
//
// image_extract_text processes files one at a time. When the call carries
// _meta.progressToken, a notifications/progress message is written after
// each file.
//
// # Error Handling
//
// Protocol errors use the standard JSON-RPC codes (-32601 unknown method,
// -32602 invalid params). A tool that cannot run at all returns -32000.
// Per-file failures inside image_extract_text are not protocol errors; they
// are listed in the tool result next to the files that succeeded.
package mcp
