package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// CLI flags for the sandwich evaluation
	seed         int64  // Seed controlling all randomness
	logLevel     string // Log verbosity level
	numParticles int    // Particles per bound estimate
	numTrials    int    // Independent sandwich trials
	parallelism  int    // Concurrent trials (0 = GOMAXPROCS)
	scenarioPath string // Optional YAML scenario file
	modelName    string // Built-in model to evaluate
	elboSamples  int    // Guide samples per ELBO estimate (0 = skip KL gap)
	sgdSteps     int    // Guide optimization steps before ELBO estimation
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "evidence-sim",
	Short: "Monte Carlo sandwich bounds for marginal likelihoods",
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogging parses and applies the --log flag.
func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// init sets up CLI flags and subcommands
func init() {
	sandwichCmd.Flags().Int64Var(&seed, "seed", 42, "Seed controlling all randomness")
	sandwichCmd.Flags().StringVar(&logLevel, "log", "warning", "Log level (trace, debug, info, warn, error, fatal, panic)")
	sandwichCmd.Flags().IntVar(&numParticles, "particles", 100, "Particles per bound estimate")
	sandwichCmd.Flags().IntVar(&numTrials, "trials", 100, "Independent sandwich trials")
	sandwichCmd.Flags().IntVar(&parallelism, "parallelism", 0, "Concurrent trials (0 = GOMAXPROCS)")
	sandwichCmd.Flags().StringVar(&scenarioPath, "scenario", "", "YAML scenario file (overrides model flags)")
	sandwichCmd.Flags().StringVar(&modelName, "model", "bearing", "Built-in model (bearing, conjugate-gaussian)")
	sandwichCmd.Flags().IntVar(&elboSamples, "elbo-samples", 0, "Guide samples per ELBO estimate (0 = skip KL gap)")
	sandwichCmd.Flags().IntVar(&sgdSteps, "sgd-steps", 500, "Guide optimization steps before ELBO estimation")

	rootCmd.AddCommand(sandwichCmd)
}
