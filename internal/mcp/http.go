package mcp

import (
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// DefaultSessionTimeout closes idle streamable HTTP sessions.
const DefaultSessionTimeout = 30 * time.Minute

// NewHTTPHandler serves the MCP server over streamable HTTP. Bearer tokens are
// checked by the server's receiving middleware, which sees the request
// headers.
func NewHTTPHandler(server *sdkmcp.Server, sessionTimeout time.Duration) http.Handler {
	if sessionTimeout <= 0 {
		sessionTimeout = DefaultSessionTimeout
	}
	return sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: sessionTimeout},
	)
}
