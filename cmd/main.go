package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zzenonn/dasim/internal/config"
	"github.com/zzenonn/dasim/internal/identity"
	"github.com/zzenonn/dasim/internal/logging"
	"github.com/zzenonn/dasim/internal/service"
)

var (
	cfg              *config.Config
	configPath       string
	proposerService  *service.ProposerService
	validatorService *service.ValidatorService
)

var rootCmd = &cobra.Command{
	Use:   "dasim",
	Short: "Data availability sampling transfer simulator",
	Long:  "Simulates blockchain data availability sampling: a proposer erasure-codes a blob and a validator reconstructs it, or verifies availability from a partial sample",
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().String("log_level", "", "Log level (trace, debug, info, warn)")
	rootCmd.PersistentFlags().Bool("quiet", false, "Suppress progress bars")
	rootCmd.PersistentFlags().String("output_dir", ".", "Directory for received and reconstructed files")
}

func initConfig() {
	var err error
	cfg, err = config.LoadConfig(configPath, rootCmd)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logging.InitLogger(cfg)

	// One keypair per process run, shared by both roles.
	id, err := identity.Generate()
	if err != nil {
		log.Fatalf("Failed to generate identity: %v", err)
	}

	proposerService = service.NewProposerService(id, cfg.Quiet)
	validatorService = service.NewValidatorService(
		id,
		service.NewShardAccumulator(),
		identity.AcceptAll{},
		cfg.OutputDir,
		cfg.Quiet,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
