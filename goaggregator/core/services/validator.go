package services

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"time"

	simplejson "github.com/bitly/go-simplejson"

	"PhoenixAggregator/goaggregator/core/logger"
)

// ValidatorClient pushes each new answer to an external data checker. The call
// is a best-effort consistency signal: it runs under a hard timeout and every
// outcome, verdict included, is logged and discarded. It must never abort or
// stall a submission.
type ValidatorClient struct {
	URL    string
	Client *http.Client
}

func NewValidatorClient(url string, timeout time.Duration) *ValidatorClient {
	return &ValidatorClient{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

type validationRequest struct {
	PreviousAnsweredRound uint32 `json:"previousAnsweredRound"`
	PreviousAnswer        string `json:"previousAnswer"`
	Round                 uint32 `json:"round"`
	Answer                string `json:"answer"`
}

func (vc *ValidatorClient) Validate(prevAnsweredRound uint32, prevAnswer *big.Int, newRound uint32, newAnswer *big.Int) {
	if vc.URL == "" {
		return
	}
	payload := validationRequest{
		PreviousAnsweredRound: prevAnsweredRound,
		Round:                 newRound,
		Answer:                newAnswer.String(),
	}
	if prevAnswer != nil {
		payload.PreviousAnswer = prevAnswer.String()
	}
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Errorw("validator payload marshal failed", "error", err)
		return
	}

	resp, err := vc.Client.Post(vc.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		logger.Warnw("validator unreachable", "round", newRound, "error", err)
		return
	}
	defer resp.Body.Close()

	js, err := simplejson.NewFromReader(resp.Body)
	if err != nil {
		logger.Warnw("validator returned unparseable verdict", "round", newRound, "error", err)
		return
	}
	valid, _ := js.Get("valid").Bool()
	logger.Infow("validator verdict",
		"round", newRound,
		"answer", newAnswer.String(),
		"valid", valid,
		"status", resp.StatusCode,
	)
}
