/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/tradutor/internal/config"
	"github.com/valpere/tradutor/internal/logging"
)

var version = "0.1.0"

var (
	cfgFile string
	v       = viper.New()

	cfg       *config.Config
	logger    = slog.Default()
	flushLogs = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "tradutor",
	Short: "Terminal translator backed by the MyMemory API",
	Long: `A terminal translator: type text, pick the source and target languages
and the translation appears as soon as you stop typing.

Supported languages: en, es, fr, de, it, pt

Use "tradutor live" for the interactive mode and
"tradutor translate --help" for one-shot translations.`,
	Version:       version,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(v, cfgFile)
		if err != nil {
			return err
		}

		log, flush, err := logging.New(os.Stderr, loaded.Log, loaded.Sentry)
		if err != nil {
			return err
		}

		cfg = loaded
		logger = log
		flushLogs = flush
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		flushLogs()
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		flushLogs()
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", "Config file (default ./tradutor.yaml or ~/.config/tradutor/tradutor.yaml)")
	flags.StringP("source", "s", "", "Source language code (default pt)")
	flags.StringP("target", "t", "", "Target language code (default en)")
	flags.String("service", "", "Translation service: mymemory or google (default mymemory)")
	flags.String("endpoint", "", "Override the MyMemory endpoint URL")
	flags.Duration("debounce", 0, "Quiet period before translating (default 500ms)")
	flags.Duration("timeout", 0, "Timeout for a single request (default 30s)")
	flags.String("cleanup", "", "Cleanup of translated text: none, entities or strip (default none)")
	flags.String("mymemory-email", "", "MyMemory email (for higher limits)")
	flags.String("log-level", "", "Log level: debug, info, warn, error (default warn)")
	flags.String("log-format", "", "Log format: text or json (default text)")

	for key, name := range map[string]string{
		"source":         "source",
		"target":         "target",
		"service":        "service",
		"endpoint":       "endpoint",
		"debounce":       "debounce",
		"timeout":        "timeout",
		"cleanup":        "cleanup",
		"mymemory.email": "mymemory-email",
		"log.level":      "log-level",
		"log.format":     "log-format",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}
