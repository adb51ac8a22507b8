package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/admon/ledger-mirror/config"
)

func writeConfig(t *testing.T, body string) string {
	name := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(name, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	return name
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.DB.Port != 5432 || cfg.Eth.ScanBatch != 1000 {
		t.Fatalf("unexpected defaults: %+v %+v", cfg.DB, cfg.Eth)
	}

	if cfg.API.Addr != "localhost:8080" ||
		cfg.Eth.NodeURL != "http://localhost:8545" {
		t.Fatalf("api and node must not share an address: %+v %+v",
			cfg.API, cfg.Eth)
	}
}

func TestLoadFileAndEnvironment(t *testing.T) {
	name := writeConfig(t, `{
		"DB": {"Host": "db.internal", "DBName": "mirror"},
		"Eth": {"NodeURL": "http://node:8545", "StartBlock": 42},
		"Oracle": {"PrivateKey": "from-file"}
	}`)

	t.Setenv("ADMON_ORACLE_PRIVATE_KEY", "from-env")
	t.Setenv("ADMON_DB_PASSWORD", "secret")
	t.Setenv("ADMON_ETH_FACTORY_ADDRESS", "0xfactory")

	cfg, err := config.Load(name)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.DB.Host != "db.internal" || cfg.DB.DBName != "mirror" {
		t.Fatalf("file values not applied: %+v", cfg.DB)
	}

	// Untouched defaults survive a partial section.
	if cfg.DB.Port != 5432 {
		t.Fatalf("expected default port, got %d", cfg.DB.Port)
	}

	if cfg.Eth.StartBlock != 42 || cfg.Eth.FactoryAddress != "0xfactory" {
		t.Fatalf("unexpected eth config: %+v", cfg.Eth)
	}

	if cfg.Oracle.PrivateKey != "from-env" {
		t.Fatalf("private key must come from the environment, got %q",
			cfg.Oracle.PrivateKey)
	}

	if cfg.DB.Password != "secret" {
		t.Fatalf("expected password override, got %q", cfg.DB.Password)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	cfg := config.NewConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error without oracle key")
	}

	cfg.Oracle.PrivateKey = "key"
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	cfg.Proc.CollectPause = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error with zero pause")
	}

	cfg.Proc.CollectPause = 1
	cfg.Eth.NodeURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error without node url")
	}
}
