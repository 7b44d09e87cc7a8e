package controllers

import (
	"strconv"

	"github.com/araddon/dateparse"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"PhoenixAggregator/goaggregator/core/store/models"
)

func statusForError(err error) int {
	switch errors.Cause(err) {
	case models.ErrNoData:
		return 404
	case models.ErrUnauthorizedReader:
		return 403
	case models.ErrExpiredBatch,
		models.ErrMalformedBatch,
		models.ErrQuorumNotMet,
		models.ErrNonSequentialRound,
		models.ErrUnauthorizedSubmitter,
		models.ErrInsufficientFunds,
		models.ErrSubmissionOutOfBounds:
		return 400
	default:
		return 500
	}
}

func renderError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{
		"errors": []string{err.Error()},
	})
}

func parseRoundID(c *gin.Context) (uint32, bool) {
	id, err := strconv.ParseUint(c.Param("roundID"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{
			"errors": []string{"invalid round id"},
		})
		return 0, false
	}
	return uint32(id), true
}

// parseDeadline accepts unix seconds or anything dateparse understands.
func parseDeadline(s string) (uint64, error) {
	if unix, err := strconv.ParseUint(s, 10, 64); err == nil {
		return unix, nil
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot parse deadline %q", s)
	}
	return uint64(t.Unix()), nil
}
