package controllers

import (
	"github.com/gin-gonic/gin"

	"PhoenixAggregator/goaggregator/core/services"
	"PhoenixAggregator/goaggregator/core/store"
	"PhoenixAggregator/goaggregator/core/utils"
)

type RewardsController struct {
	App *services.Application
}

func (rw *RewardsController) Show(c *gin.Context) {
	address, err := utils.ParseAddress(c.Param("address"))
	if err != nil {
		c.JSON(400, gin.H{
			"errors": []string{err.Error()},
		})
		return
	}
	vesting, err := store.GetSubmitterVesting(rw.App.Store.ORM, address)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(200, gin.H{
		"submitter":     vesting.Submitter.Hex(),
		"lastUpdated":   vesting.LastUpdated,
		"releasable":    vesting.Releasable.String(),
		"remainVesting": vesting.RemainVesting.String(),
	})
}

func (rw *RewardsController) Unlock(c *gin.Context) {
	address, err := utils.ParseAddress(c.Param("address"))
	if err != nil {
		c.JSON(400, gin.H{
			"errors": []string{err.Error()},
		})
		return
	}
	amount, err := rw.App.Aggregator.UnlockRewards(address)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(200, gin.H{
		"submitter": address.Hex(),
		"released":  amount.String(),
	})
}
