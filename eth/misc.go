package eth

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// WaitSync waits for the synchronization of the node.
func WaitSync(ctx context.Context, client *Client,
	pauseTime time.Duration, log *zap.Logger) error {
	for {
		progress, err := client.SyncProgress(ctx)
		if err != nil {
			return err
		}

		if progress == nil {
			block, err := client.BlockNumber(ctx)
			if err != nil {
				return err
			}

			if block > 0 {
				return nil
			}
		} else {
			log.Info("node is syncing",
				zap.Uint64("startingBlock", progress.StartingBlock),
				zap.Uint64("currentBlock", progress.CurrentBlock),
				zap.Uint64("highestBlock", progress.HighestBlock),
				zap.Uint64("pulledStates", progress.PulledStates),
				zap.Uint64("knownStates", progress.KnownStates))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pauseTime):
		}
	}
}
