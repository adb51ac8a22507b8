package main

import (
	"context"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/admon/ledger-mirror/api"
	"github.com/admon/ledger-mirror/config"
	"github.com/admon/ledger-mirror/db"
	"github.com/admon/ledger-mirror/eth"
	"github.com/admon/ledger-mirror/gen"
	"github.com/admon/ledger-mirror/metrics"
	"github.com/admon/ledger-mirror/oracle"
	"github.com/admon/ledger-mirror/proc"
	"github.com/admon/ledger-mirror/reconcile"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server and the event scanner",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer log.Sync()

			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := serve(cmd.Context(), cfg, log); err != nil {
				log.Error("server failed", zap.Error(err))
				return err
			}
			return nil
		},
	}
}

func millis(ms uint64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	conn, err := db.Connect(db.ConnectArgs(cfg.DB))
	if err != nil {
		return err
	}

	database := db.NewDB(conn, log)
	defer db.CloseDB(database)

	ledger := db.NewLedger(database)

	ethClient, err := eth.NewClient(ctx, cfg.Eth.NodeURL)
	if err != nil {
		return err
	}
	defer ethClient.Close()

	if err := eth.WaitSync(ctx, ethClient,
		millis(cfg.Proc.UpdateLastBlockPause), log); err != nil {
		return err
	}

	signer, err := oracle.NewSigner(cfg.Oracle.PrivateKey,
		ethClient.ChainID())
	if err != nil {
		return err
	}

	mirror := reconcile.NewService(ledger, gen.NewUUID, log, m)
	oracleSvc := oracle.NewService(signer, ethClient, ledger, mirror,
		gen.NewUUID, oracle.Options{
			ConfirmTimeout: millis(cfg.Oracle.ConfirmTimeout),
			ReceiptPoll:    millis(cfg.Oracle.ReceiptPoll),
			GasLimit:       cfg.Oracle.GasLimit,
		}, log, m)

	log.Info("oracle account", zap.String("address",
		signer.Address().Hex()),
		zap.String("chainId", ethClient.ChainID().String()))
	logTokenBalance(ctx, cfg, ethClient, signer.Address(), log)

	scheduler := proc.NewScheduler(ctx, cfg, ethClient, ledger, mirror,
		oracleSvc, log, m)
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer scheduler.Close()

	srv := api.NewServer(cfg.API, registry)
	if err := srv.AddHandler(api.NewHandler(mirror, oracleSvc,
		log)); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("api server started", zap.String("addr", cfg.API.Addr))

	select {
	case err = <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// logTokenBalance reports the oracle balance of the protocol token.
func logTokenBalance(ctx context.Context, cfg *config.Config,
	client *eth.Client, account common.Address, log *zap.Logger) {
	if !common.IsHexAddress(cfg.Eth.TokenAddress) {
		return
	}

	out, err := client.ReadContractState(ctx,
		common.HexToAddress(cfg.Eth.TokenAddress), eth.ERC20ABI,
		"balanceOf", account)
	if err != nil {
		log.Warn("failed to read token balance", zap.Error(err))
		return
	}

	if len(out) == 1 {
		if balance, ok := out[0].(*big.Int); ok {
			log.Info("oracle token balance",
				zap.String("balance", balance.String()))
		}
	}
}
