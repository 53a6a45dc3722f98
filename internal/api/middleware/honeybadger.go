package middleware

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/bassista/go_watchlist/internal/logger"
	"github.com/gin-gonic/gin"
	honeybadger "github.com/honeybadger-io/honeybadger-go"
)

// HoneybadgerMiddleware reports panics and error responses to Honeybadger.
// With an empty apiKey it is a pass-through.
// On panic it notifies Honeybadger and re-panics so gin.Recovery writes the response.
func HoneybadgerMiddleware(apiKey, env string) gin.HandlerFunc {
	log := logger.WithComponent("honeybadger")
	if strings.TrimSpace(apiKey) == "" {
		log.Info("Honeybadger is not active. To enable error reporting, set HONEYBADGER_API_KEY or misc.honeybadger_api_key.")
		return func(c *gin.Context) {
			c.Next()
		}
	}

	honeybadger.Configure(honeybadger.Configuration{
		APIKey: apiKey,
		Env:    env,
	})
	log.Info("Honeybadger error reporting is enabled.")

	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				honeybadger.Notify(fmt.Sprintf("Panic: %s %s", c.Request.Method, c.Request.URL.Path),
					c.Request, honeybadger.Context{"stack": string(debug.Stack())}, honeybadger.Tags{"panic", "http"})
				log.Error("Recovered from panic, notified Honeybadger: ", rec)
				panic(rec)
			}
		}()

		c.Next()

		status := c.Writer.Status()
		// 404 and 400 are ordinary client outcomes for watchlist lookups
		if status < 400 || status == 404 || status == 400 {
			return
		}
		msg := fmt.Sprintf("HTTP %d: %s %s", status, c.Request.Method, c.Request.URL.Path)
		if len(c.Errors) > 0 {
			msg += ": " + c.Errors.String()
		}
		if status >= 500 {
			honeybadger.Notify("Error: "+msg, c.Request, honeybadger.Tags{"5XX", "http"})
		} else {
			honeybadger.Notify("Warning: "+msg, honeybadger.Tags{"4XX", "http"})
		}
		log.Warnf("Honeybadger reported %s", msg)
	}
}
