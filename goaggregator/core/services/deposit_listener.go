package services

import (
	"context"

	"PhoenixAggregator/goaggregator/core/logger"
	"PhoenixAggregator/goaggregator/core/store"
)

// DepositListener watches settlement-token logs and refreshes the available
// funds bookkeeping whenever a deposit toward custody lands.
type DepositListener struct {
	Store      *store.Store
	Aggregator *Aggregator
	logs       chan store.EventLog
	cancel     context.CancelFunc
}

func NewDepositListener(s *store.Store, aggregator *Aggregator) *DepositListener {
	return &DepositListener{
		Store:      s,
		Aggregator: aggregator,
		logs:       make(chan store.EventLog, 16),
	}
}

func (dl *DepositListener) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	dl.cancel = cancel

	filter := map[string]interface{}{
		"address": dl.Store.Config.DTOTokenAddress,
	}
	sub, err := dl.Store.Eth.Subscription.Subscribe(ctx, dl.logs, filter)
	if err != nil {
		cancel()
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				sub.Unsubscribe()
				return
			case err := <-sub.Err():
				logger.Errorw("deposit subscription dropped", "error", err)
				return
			case event := <-dl.logs:
				logger.Infow("token deposit observed", "block", event.BlockHash.Hex())
				dl.Aggregator.RefreshFunds()
			}
		}
	}()
	return nil
}

func (dl *DepositListener) Stop() error {
	if dl.cancel != nil {
		dl.cancel()
	}
	return nil
}
