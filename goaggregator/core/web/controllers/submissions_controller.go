package controllers

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"PhoenixAggregator/goaggregator/core/services"
	"PhoenixAggregator/goaggregator/core/utils"
)

type SubmissionsController struct {
	App *services.Application
}

type submissionJSON struct {
	Prices    []string `json:"prices" binding:"required"`
	Deadline  string   `json:"deadline" binding:"required"`
	R         []string `json:"r" binding:"required"`
	S         []string `json:"s" binding:"required"`
	V         []uint8  `json:"v" binding:"required"`
	Submitter string   `json:"submitter" binding:"required"`
}

func (sc *SubmissionsController) Create(c *gin.Context) {
	roundID, ok := parseRoundID(c)
	if !ok {
		return
	}
	var body submissionJSON
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{
			"errors": []string{err.Error()},
		})
		return
	}

	req, err := buildRequest(roundID, body)
	if err != nil {
		c.JSON(400, gin.H{
			"errors": []string{err.Error()},
		})
		return
	}

	round, err := sc.App.Aggregator.Submit(req)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(200, gin.H{
		"round":     round.ID,
		"answer":    round.Answer.String(),
		"updatedAt": round.UpdatedAt,
		"audit":     round.AuditID,
	})
}

func buildRequest(roundID uint32, body submissionJSON) (services.SubmissionRequest, error) {
	var req services.SubmissionRequest
	prices, err := utils.ParseBigInts(body.Prices)
	if err != nil {
		return req, err
	}
	deadline, err := parseDeadline(body.Deadline)
	if err != nil {
		return req, err
	}
	r, err := parseHashes(body.R)
	if err != nil {
		return req, err
	}
	s, err := parseHashes(body.S)
	if err != nil {
		return req, err
	}
	submitter, err := utils.ParseAddress(body.Submitter)
	if err != nil {
		return req, err
	}

	return services.SubmissionRequest{
		RoundID:   roundID,
		Prices:    prices,
		Deadline:  deadline,
		R:         r,
		S:         s,
		V:         body.V,
		Submitter: submitter,
	}, nil
}

func parseHashes(strs []string) ([]common.Hash, error) {
	hashes := make([]common.Hash, len(strs))
	for i, s := range strs {
		h, err := utils.StringToHash(s)
		if err != nil {
			return nil, err
		}
		hashes[i] = h
	}
	return hashes, nil
}
