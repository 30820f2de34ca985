// Command seed creates demo accounts from a YAML file. Deposits go through
// the ledger service, so balances and history stay consistent.
package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"strconv"

	"balance/internal/config"
	"balance/internal/logger"
	"balance/internal/models"
	"balance/internal/repositories"
	"balance/internal/services/ledger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// SeedFile is the document read from SEED_FILE.
type SeedFile struct {
	Accounts []SeedAccount `yaml:"accounts"`
}

type SeedAccount struct {
	Name     string   `yaml:"name"`
	Deposits []string `yaml:"deposits"`
}

func main() {
	config.LoadEnv()
	cfg := config.Load()

	log, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		stdlog.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	seed, err := loadSeedFile(config.GetEnv("SEED_FILE", "cmd/seed/accounts.yaml"))
	if err != nil {
		log.Fatal("failed to read seed file", zap.Error(err))
	}

	db, err := repositories.NewPostgres(cfg.DB.DSN(), cfg.DB, log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer func() {
		if err := repositories.Close(db); err != nil {
			log.Warn("failed to close database connection", zap.Error(err))
		}
	}()

	if reset, _ := strconv.ParseBool(os.Getenv("SEED_RESET")); reset {
		if err := repositories.DropAllTables(db); err != nil {
			log.Fatal("failed to drop tables", zap.Error(err))
		}
		if err := repositories.Migrate(db); err != nil {
			log.Fatal("failed to migrate", zap.Error(err))
		}
		log.Info("schema reset")
	}

	svc := ledger.NewService(
		repositories.NewAccountRepository(db, cfg.DB.LockTimeout),
		ledger.Config{Timeout: cfg.LedgerTimeout},
		nil,
		log,
	)

	if err := apply(context.Background(), svc, seed, log); err != nil {
		log.Fatal("seeding failed", zap.Error(err))
	}
	log.Info("seed complete", zap.Int("accounts", len(seed.Accounts)))
}

func loadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &seed, nil
}

type accountCreator interface {
	CreateAccount(ctx context.Context, name string) (*models.Account, error)
	ApplyTransaction(ctx context.Context, accountID string, direction models.Direction, amount decimal.Decimal) (*models.Transaction, error)
}

func apply(ctx context.Context, svc accountCreator, seed *SeedFile, log *zap.Logger) error {
	for _, sa := range seed.Accounts {
		account, err := svc.CreateAccount(ctx, sa.Name)
		if err != nil {
			return fmt.Errorf("create %q: %w", sa.Name, err)
		}
		balance := account.Balance
		for _, raw := range sa.Deposits {
			amount, err := decimal.NewFromString(raw)
			if err != nil {
				return fmt.Errorf("deposit %q for %q: %w", raw, sa.Name, err)
			}
			tx, err := svc.ApplyTransaction(ctx, account.ID, models.DirectionDeposit, amount)
			if err != nil {
				return fmt.Errorf("deposit into %q: %w", sa.Name, err)
			}
			balance = tx.BalanceAfter
		}
		log.Info("account seeded",
			zap.String("id", account.ID),
			zap.String("name", account.Name),
			zap.String("balance", balance.StringFixed(2)),
		)
	}
	return nil
}
