package controllers

import (
	"github.com/gin-gonic/gin"

	"PhoenixAggregator/goaggregator/core/assets"
	"PhoenixAggregator/goaggregator/core/services"
	"PhoenixAggregator/goaggregator/core/store/models"
	"PhoenixAggregator/goaggregator/core/utils"
)

type FundsController struct {
	App *services.Application
}

func (fc *FundsController) Show(c *gin.Context) {
	funds, err := models.GetFunds(fc.App.Store.ORM)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(200, gin.H{
		"available": funds.Available.String(),
		"allocated": funds.Allocated.String(),
	})
}

type depositJSON struct {
	From   string `json:"from" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

func (fc *FundsController) Create(c *gin.Context) {
	var body depositJSON
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(400, gin.H{
			"errors": []string{err.Error()},
		})
		return
	}
	from, err := utils.ParseAddress(body.From)
	if err != nil {
		c.JSON(400, gin.H{
			"errors": []string{err.Error()},
		})
		return
	}
	amount := new(assets.DTO)
	if _, ok := amount.SetString(body.Amount, 10); !ok {
		c.JSON(400, gin.H{
			"errors": []string{"invalid amount"},
		})
		return
	}

	if err := fc.App.Aggregator.AddFunds(from, amount); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(200, gin.H{"deposited": amount.String()})
}
