package db

import (
	"context"

	"github.com/pkg/errors"
	"gopkg.in/reform.v1"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id uuid PRIMARY KEY,
		wallet_address varchar(255) NOT NULL,
		email varchar(255),
		created_at timestamptz NOT NULL DEFAULT now(),
		CONSTRAINT accounts_wallet_address_key UNIQUE (wallet_address)
	)`,
	`DO $$ BEGIN
		CREATE TYPE campaign_status AS ENUM ('open', 'resolved', 'canceled');
	EXCEPTION
		WHEN duplicate_object THEN NULL;
	END $$`,
	`CREATE TABLE IF NOT EXISTS campaigns (
		id uuid PRIMARY KEY,
		creator_wallet varchar(255) NOT NULL
			REFERENCES accounts (wallet_address),
		contract_address varchar(255) NOT NULL,
		title varchar(255) NOT NULL,
		symbol varchar(64) NOT NULL,
		end_time timestamptz NOT NULL,
		fee_bps integer NOT NULL CHECK (fee_bps BETWEEN 0 AND 10000),
		creation_stake numeric(38,18) NOT NULL CHECK (creation_stake >= 0),
		status campaign_status NOT NULL DEFAULT 'open',
		outcome boolean,
		created_at timestamptz NOT NULL DEFAULT now(),
		CONSTRAINT campaigns_contract_address_key UNIQUE (contract_address),
		CONSTRAINT campaigns_outcome_check
			CHECK ((status = 'resolved') = (outcome IS NOT NULL))
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id uuid PRIMARY KEY,
		campaign_id uuid NOT NULL
			REFERENCES campaigns (id) ON DELETE CASCADE,
		user_id uuid NOT NULL
			REFERENCES accounts (id) ON DELETE CASCADE,
		nft_id bigint NOT NULL,
		side boolean NOT NULL,
		stake numeric(38,18) NOT NULL CHECK (stake >= 0),
		claimed boolean NOT NULL DEFAULT false,
		created_at timestamptz NOT NULL DEFAULT now(),
		CONSTRAINT tickets_campaign_nft_key UNIQUE (campaign_id, nft_id)
	)`,
	`CREATE INDEX IF NOT EXISTS tickets_campaign_id_idx
		ON tickets (campaign_id)`,
	`CREATE TABLE IF NOT EXISTS submissions (
		id uuid PRIMARY KEY,
		hash varchar(66) NOT NULL,
		nonce bigint NOT NULL,
		"to" varchar(42),
		status varchar(16) NOT NULL,
		receipt_block bigint,
		created_at timestamptz NOT NULL DEFAULT now(),
		CONSTRAINT submissions_hash_key UNIQUE (hash)
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key varchar(64) PRIMARY KEY,
		value text NOT NULL
	)`,
}

// Migrate creates the mirror tables. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *reform.DB) error {
	return db.InTransactionContext(ctx, nil, func(t *reform.TX) error {
		for k := range schema {
			if _, err := t.Exec(schema[k]); err != nil {
				return errors.Wrapf(err, "failed to apply statement %d", k)
			}
		}
		return nil
	})
}
