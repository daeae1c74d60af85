package webhook

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
)

// BuildAbsoluteURL builds a public absolute URL for callbacks. Priority:
// BASE_URL env > X-Forwarded-* headers > request Host heuristic.
func BuildAbsoluteURL(c echo.Context, path string) string {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		proto := c.Request().Header.Get("X-Forwarded-Proto")
		host := c.Request().Header.Get("X-Forwarded-Host")
		if proto != "" && host != "" {
			baseURL = fmt.Sprintf("%s://%s", proto, host)
		}
	}
	if baseURL == "" {
		host := c.Request().Host
		proto := "https"
		if strings.HasPrefix(host, "localhost:") || strings.HasPrefix(host, "127.0.0.1:") {
			proto = "http"
		}
		baseURL = fmt.Sprintf("%s://%s", proto, host)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return baseURL + path
}

// VoiceTwiML renders the TwiML bridging an inbound call to our WebSocket
// session transport (spec §6 "serves thin REST endpoints for OAuth
// bootstrap" sibling boundary; protocol shaped per
// <Connect><Stream url=".../voice/{call_id}?tenant_id=..."/></Connect>).
func VoiceTwiML(c echo.Context, tenantID, callID string) string {
	streamURL := strings.Replace(BuildAbsoluteURL(c, "/voice/"+callID), "http://", "ws://", 1)
	streamURL = strings.Replace(streamURL, "https://", "wss://", 1)
	streamURL += "?tenant_id=" + url.QueryEscape(tenantID)

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<Response>
  <Connect>
    <Stream url="%s" />
  </Connect>
</Response>`, streamURL)
}
