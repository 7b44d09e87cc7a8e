package controllers

import (
	"github.com/gin-gonic/gin"
	null "gopkg.in/guregu/null.v3"

	"PhoenixAggregator/goaggregator/core/services"
	"PhoenixAggregator/goaggregator/core/store"
	"PhoenixAggregator/goaggregator/core/store/models"
)

type RoundsController struct {
	App *services.Application
}

type roundPresenter struct {
	Round           uint32      `json:"round"`
	Answer          null.String `json:"answer"`
	UpdatedAt       uint64      `json:"updatedAt"`
	AnsweredInRound null.Int    `json:"answeredInRound"`
	Submissions     []string    `json:"submissions,omitempty"`
	PaymentAmount   null.String `json:"paymentAmount"`
}

func presentRound(round *models.Round) roundPresenter {
	p := roundPresenter{
		Round:     round.ID,
		UpdatedAt: round.UpdatedAt,
	}
	if round.Answer != nil {
		p.Answer = null.StringFrom(round.Answer.String())
	}
	if round.AnsweredInRound > 0 {
		p.AnsweredInRound = null.IntFrom(int64(round.AnsweredInRound))
	}
	if round.PaymentAmount != nil {
		p.PaymentAmount = null.StringFrom(round.PaymentAmount.String())
	}
	for _, s := range round.Submissions {
		p.Submissions = append(p.Submissions, s.String())
	}
	return p
}

func (rc *RoundsController) Latest(c *gin.Context) {
	round, err := store.LatestRound(rc.App.Store.ORM)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(200, presentRound(round))
}

func (rc *RoundsController) Show(c *gin.Context) {
	id, ok := parseRoundID(c)
	if !ok {
		return
	}
	round, err := store.GetRoundInfo(rc.App.Store.ORM, id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(200, presentRound(round))
}

func (rc *RoundsController) Answer(c *gin.Context) {
	id, ok := parseRoundID(c)
	if !ok {
		return
	}
	answer := store.GetAnswerByRound(rc.App.Store.ORM, id)
	updatedAt := store.GetTimestampByRound(rc.App.Store.ORM, id)
	c.JSON(200, gin.H{
		"round":     id,
		"answer":    answer.String(),
		"updatedAt": updatedAt,
	})
}
