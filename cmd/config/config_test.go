package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"

	"ammengine/internal/testutil"
)

func TestLoadConfigDefault(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(".."); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("")
	if AppConfig.AMM.DefaultSlippageBps != 100 {
		t.Fatalf("unexpected default slippage bps: %d", AppConfig.AMM.DefaultSlippageBps)
	}
	if len(AppConfig.AMM.CPFeeTiers) != 3 {
		t.Fatalf("unexpected cp fee tiers: %v", AppConfig.AMM.CPFeeTiers)
	}
}

func TestLoadConfigOverride(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(".."); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("bootstrap")
	if AppConfig.AMM.DefaultSlippageBps != 250 {
		t.Fatalf("expected overridden slippage bps 250, got %d", AppConfig.AMM.DefaultSlippageBps)
	}
	if AppConfig.Logging.Level != "debug" {
		t.Fatalf("expected overridden logging level debug, got %s", AppConfig.Logging.Level)
	}
}

func TestLoadConfigSandbox(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox failed: %v", err)
	}
	defer sb.Cleanup()

	if err := os.Mkdir(sb.Path("config"), 0700); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	data := []byte("amm:\n  default_slippage_bps: 42\n")
	if err := sb.WriteFile("config/default.yaml", data, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(sb.Root); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("")

	if AppConfig.AMM.DefaultSlippageBps != 42 {
		t.Fatalf("expected default slippage bps 42, got %d", AppConfig.AMM.DefaultSlippageBps)
	}
}
