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
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/tradutor/internal/catalog"
	"github.com/valpere/tradutor/internal/config"
	"github.com/valpere/tradutor/internal/coordinator"
	"github.com/valpere/tradutor/internal/detector"
)

var (
	inputFile  string
	outputFile string
)

var translateCmd = &cobra.Command{
	Use:   "translate [text...]",
	Short: "Translate text once and print the result",
	Long: `Translate the given text, the contents of --input, or standard input,
and print the translation.

Use --source auto to detect the source language among the supported ones.`,
	Example: `  tradutor translate -s pt -t en "bom dia"
  echo "guten Morgen" | tradutor translate -s auto -t pt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile != "" && inputFile == outputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		text, err := readSourceText(args, inputFile, cmd.InOrStdin())
		if err != nil {
			return err
		}

		sessionCfg := cfg.CoordinatorConfig()
		if cfg.Source == config.AutoSource {
			detected, err := detectSource(text)
			if err != nil {
				return err
			}
			sessionCfg.SourceLang = detected
			fmt.Fprintf(cmd.ErrOrStderr(), "Detected source language: %s\n", detected)
		}

		svc, err := buildService(cfg)
		if err != nil {
			return err
		}

		session, err := coordinator.New(svc, sessionCfg, coordinator.WithLogger(logger))
		if err != nil {
			return err
		}
		defer session.Close()

		session.SetSourceText(text)
		if err := session.Flush(cmd.Context()); err != nil {
			return fmt.Errorf("translation interrupted: %w", err)
		}

		state := session.State()
		if state.Error != "" {
			return errors.New(state.Error)
		}

		if outputFile == "" {
			fmt.Fprintln(cmd.OutOrStdout(), state.TranslatedText)
			return nil
		}

		if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(outputFile, []byte(state.TranslatedText+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Successfully translated %s to %s\n", state.SourceLang, state.TargetLang)
		return nil
	},
}

// readSourceText takes the text from args, then the input file, then stdin.
// Trailing line breaks are dropped; whitespace-only text is still sent, as in
// the interactive session.
func readSourceText(args []string, file string, stdin io.Reader) (string, error) {
	var text string
	switch {
	case len(args) > 0:
		text = strings.Join(args, " ")
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		text = string(data)
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read standard input: %w", err)
		}
		text = string(data)
	}

	text = strings.TrimRight(text, "\r\n")
	if text == "" {
		return "", fmt.Errorf("nothing to translate")
	}
	return text, nil
}

func detectSource(text string) (string, error) {
	det, err := detector.New(catalog.Codes())
	if err != nil {
		return "", err
	}
	code, ok := det.DetectISO(text)
	if !ok {
		return "", fmt.Errorf("could not detect the source language; pass --source explicitly")
	}
	return code, nil
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file to translate")
	translateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file for translation (default stdout)")
}
