// Package o11ygin traces gin requests and records a timing metric per handler.
package o11ygin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zetteln/server/o11y"
)

const contextCancelledKey = "o11y-context-cancelled-key"

// Middleware starts a span per request, named after the matched route rather
// than the raw path so that spans group by handler.
func Middleware(provider o11y.Provider, serverName string) gin.HandlerFunc {
	m := provider.MetricsProvider()
	return func(c *gin.Context) {
		before := time.Now()

		route := c.FullPath()
		if route == "" {
			route = "not-found"
		}

		ctx := o11y.WithProvider(c.Request.Context(), provider)
		ctx, span := provider.StartSpan(ctx, fmt.Sprintf("http-server %s: %s %s", serverName, c.Request.Method, route))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Route", route)

		for _, param := range c.Params {
			span.AddRawField("handler.vars."+param.Key, param.Value)
		}

		span.AddRawField("meta.type", "http_server")
		span.AddRawField("http.server_name", serverName)
		span.AddRawField("http.route", c.FullPath())
		span.AddRawField("http.client_ip", c.ClientIP())
		span.AddRawField("http.method", c.Request.Method)
		span.AddRawField("http.target", c.Request.URL.Path)
		span.AddRawField("http.host", c.Request.Host)
		span.AddRawField("http.user_agent", c.Request.UserAgent())
		span.AddRawField("http.request_content_length", c.Request.ContentLength)

		defer func() {
			status := c.Writer.Status()
			if c.GetBool(contextCancelledKey) {
				status = 499
				o11y.AddResultToSpan(span, context.Canceled)
			}
			span.AddRawField("http.status_code", status)
			span.AddRawField("http.response_content_length", c.Writer.Size())

			if m != nil {
				_ = m.TimeInMilliseconds("handler",
					float64(time.Since(before).Nanoseconds())/1e6,
					[]string{
						"http.server_name:" + serverName,
						"http.method:" + c.Request.Method,
						"http.route:" + c.FullPath(),
						"http.status_code:" + strconv.Itoa(status),
					},
					1,
				)
			}
		}()

		c.Next()
	}
}

// ClientCancelled marks the request so Middleware reports 499 (a la nginx) when
// the client went away. It also records gin's internal errors, such as render
// failures, on the request span.
func ClientCancelled() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		defer func() {
			if errors.Is(ctx.Err(), context.Canceled) {
				c.Set(contextCancelledKey, true)
				return
			}
			if len(c.Errors) > 0 {
				o11y.AddField(ctx, "gin_internal_error", c.Errors.String())
			}
		}()
		c.Next()
	}
}

// Recovery turns a handler panic into a 500 and reports it via o11y.HandlePanic.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, err interface{}) {
		c.AbortWithStatus(http.StatusInternalServerError)
		ctx := c.Request.Context()
		span := o11y.FromContext(ctx).GetSpan(ctx)
		if span == nil {
			return
		}

		// The client or proxy went away mid-response, this is not a bug in the handler.
		// https://github.com/golang/go/issues/28239
		if origErr, ok := err.(error); ok && errors.Is(origErr, http.ErrAbortHandler) {
			o11y.AddResultToSpan(span, origErr)
			return
		}

		_ = o11y.HandlePanic(ctx, span, err, c.Request)
	})
}
