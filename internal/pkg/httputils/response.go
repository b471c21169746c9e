// Package httputils bridges handler results onto the wire format in
// pkg/utils/response.
package httputils

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/docpipe/pkg/utils/errors"
	"github.com/kart-io/docpipe/pkg/utils/response"
)

// WriteResponse renders err as an error envelope, or data as a success
// envelope. Handlers that already built a *response.Response (pagination)
// pass it through unchanged.
func WriteResponse(c *gin.Context, err error, data interface{}) {
	if err != nil {
		resp := response.Err(errors.FromError(err))
		c.JSON(resp.HTTPStatus(), resp)
		return
	}

	if resp, ok := data.(*response.Response); ok {
		c.JSON(resp.HTTPStatus(), resp)
		return
	}

	resp := response.Success(data)
	c.JSON(resp.HTTPStatus(), resp)
}
