package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zetteln/server/o11y"
)

func (a *API) getVersion(c *gin.Context) {
	ctx := c.Request.Context()

	info, err := a.versions.GetVersionInfo(ctx)
	if err != nil {
		if span := o11y.FromContext(ctx).GetSpan(ctx); span != nil {
			o11y.AddResultToSpan(span, err)
		}
		// The body is the bare message rather than a JSON error object.
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, info)
}
