// Package webhook implements the voice transport's non-core HTTP boundary
// (spec §6): Twilio webhook signature verification, TwiML bootstrap
// rendering, and the absolute-URL helper callbacks are built from.
//
// Adapted from the teacher's internal/middleware/twilio_sig.go (signature
// verification) and internal/usecase/twilio.go's BuildAbsoluteURL.
package webhook

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
)

// ValidateSignature verifies a Twilio request signature against the
// deterministic key-sorted concatenation of fullURL and the request's form
// parameters (Twilio's documented signing scheme).
func ValidateSignature(authToken, signature, fullURL string, params map[string]string) bool {
	if authToken == "" || signature == "" {
		return false
	}

	data := fullURL
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		data += k + params[k]
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(data))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

// TwilioAuth is echo middleware validating the X-Twilio-Signature header on
// every /twilio/ route, stashing the parsed form parameters under
// "twilioParams" for handlers to read.
func TwilioAuth(getAuthToken func() string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !strings.HasPrefix(c.Request().URL.Path, "/twilio/") {
				return next(c)
			}

			authToken := getAuthToken()
			if authToken == "" {
				return c.String(http.StatusInternalServerError, "TWILIO_AUTH_TOKEN not configured")
			}

			bodyBytes, err := io.ReadAll(c.Request().Body)
			if err != nil {
				return c.String(http.StatusBadRequest, "failed to read request body")
			}

			formData, err := url.ParseQuery(string(bodyBytes))
			if err != nil {
				return c.String(http.StatusBadRequest, "failed to parse form data")
			}

			params := make(map[string]string, len(formData))
			for key, values := range formData {
				if len(values) > 0 {
					params[key] = values[0]
				}
			}

			signature := c.Request().Header.Get("X-Twilio-Signature")
			requestURL := fmt.Sprintf("https://%s%s", c.Request().Host, c.Request().URL.Path)

			if !ValidateSignature(authToken, signature, requestURL, params) {
				return c.String(http.StatusUnauthorized, "invalid twilio signature")
			}

			c.Set("twilioParams", params)
			return next(c)
		}
	}
}

// Params reads the form parameters TwilioAuth stashed on the context.
func Params(c echo.Context) (map[string]string, bool) {
	params, ok := c.Get("twilioParams").(map[string]string)
	return params, ok
}
