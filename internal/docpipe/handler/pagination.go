package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/docpipe/pkg/utils/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pagination parses page and page_size query parameters, clamping
// page_size to a sane upper bound.
func pagination(c *gin.Context) (page, pageSize int, err error) {
	page = 1
	if raw := c.Query("page"); raw != "" {
		if page, err = strconv.Atoi(raw); err != nil || page < 1 {
			return 0, 0, errors.ErrInvalidParam.WithMessage("page must be a positive integer")
		}
	}

	pageSize = defaultPageSize
	if raw := c.Query("page_size"); raw != "" {
		if pageSize, err = strconv.Atoi(raw); err != nil || pageSize < 1 {
			return 0, 0, errors.ErrInvalidParam.WithMessage("page_size must be a positive integer")
		}
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return page, pageSize, nil
}
