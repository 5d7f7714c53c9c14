package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "linguaflow",
		Short: "LinguaFlow translation service (gRPC + HTTP API)",
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the gRPC and HTTP servers",
		RunE:  runServe,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the linguaflow version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	cfgFile string
	// version is set at build time with -ldflags "-X main.version=...".
	version = "dev"
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to TOML configuration file (optional)")

	f := serveCmd.Flags()
	f.Int("grpc-port", 50051, "gRPC server port")
	f.Int("http-port", 8080, "HTTP API port")
	f.String("mt-engine", "mock", "Translation engine: mock, libretranslate or argos")
	f.String("mt-url", "", "Base URL for the translation engine API")
	f.String("logger-level", "info", "Log level: debug, info, warn, error")
	f.String("logger-format", "text", "Log format: text or json")
	f.String("history-backend", "memory", "History store: memory or bunt")
	f.String("history-path", "", "buntdb file for the history store")
	f.String("voice-engine", "null", "Voice engine: null or simulated")

	rootCmd.AddCommand(serveCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Error("linguaflow exited with error")
		os.Exit(1)
	}
}
