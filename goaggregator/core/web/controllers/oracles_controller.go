package controllers

import (
	"strconv"

	"github.com/asdine/storm"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"PhoenixAggregator/goaggregator/core/services"
	"PhoenixAggregator/goaggregator/core/store/models"
	"PhoenixAggregator/goaggregator/core/utils"
)

// challenge signatures older than this are refused.
const roundStateChallengeWindow = uint64(300)

type OraclesController struct {
	App *services.Application
}

func (oc *OraclesController) Admin(c *gin.Context) {
	address, err := utils.ParseAddress(c.Param("address"))
	if err != nil {
		c.JSON(400, gin.H{
			"errors": []string{err.Error()},
		})
		return
	}
	oracle, err := models.GetOracle(oc.App.Store.ORM, address)
	if err == storm.ErrNotFound {
		c.JSON(404, gin.H{
			"errors": []string{"oracle not found"},
		})
		return
	}
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(200, gin.H{
		"oracle": oracle.Address.Hex(),
		"admin":  oracle.Admin.Hex(),
	})
}

// RoundState is the oracle-facing snapshot: eligibility, the round id to
// submit for next, pool funding and the applicable payment. Gated on a signed
// recent timestamp so only a caller holding the oracle key directly, not a
// delegating contract, can read it.
func (oc *OraclesController) RoundState(c *gin.Context) {
	address, ok := oc.verifyChallenge(c)
	if !ok {
		return
	}

	db := oc.App.Store.ORM
	state, err := models.GetReportingState(db)
	if err != nil {
		renderError(c, err)
		return
	}
	funds, err := models.GetFunds(db)
	if err != nil {
		renderError(c, err)
		return
	}
	count, err := models.EnabledOracleCount(db)
	if err != nil {
		renderError(c, err)
		return
	}

	nextRound := state.LastReportedRound + 1
	eligible := false
	oracle, err := models.GetOracle(db, address)
	if err == nil {
		eligible = oracle.EligibleForRound(nextRound)
	} else if err != storm.ErrNotFound {
		renderError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"eligibleToSubmit": eligible,
		"roundId":          nextRound,
		"availableFunds":   funds.Available.String(),
		"oracleCount":      count,
		"paymentAmount":    oc.App.Store.Config.PaymentAmount.String(),
	})
}

func (oc *OraclesController) verifyChallenge(c *gin.Context) (common.Address, bool) {
	address, err := utils.ParseAddress(c.Query("address"))
	if err != nil {
		c.JSON(400, gin.H{
			"errors": []string{err.Error()},
		})
		return common.Address{}, false
	}
	timestamp, err := strconv.ParseUint(c.Query("timestamp"), 10, 64)
	if err != nil {
		c.JSON(400, gin.H{
			"errors": []string{"invalid timestamp"},
		})
		return common.Address{}, false
	}
	now := utils.NowUnix()
	if timestamp > now || now-timestamp > roundStateChallengeWindow {
		c.JSON(403, gin.H{
			"errors": []string{models.ErrUnauthorizedReader.Error()},
		})
		return common.Address{}, false
	}

	sig := common.FromHex(c.Query("signature"))
	if len(sig) != 65 {
		c.JSON(400, gin.H{
			"errors": []string{"invalid signature"},
		})
		return common.Address{}, false
	}
	r := common.BytesToHash(sig[:32])
	s := common.BytesToHash(sig[32:64])
	v := sig[64]
	if v < 27 {
		v += 27
	}

	signer, err := utils.RecoverSigner(utils.RoundStateChallengeHash(timestamp), r, s, v)
	if err != nil || signer != address {
		c.JSON(403, gin.H{
			"errors": []string{models.ErrUnauthorizedReader.Error()},
		})
		return common.Address{}, false
	}
	return address, true
}
