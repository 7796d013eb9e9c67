package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/testdesk/backend/internal/config"
	"github.com/testdesk/backend/internal/engine"
	"github.com/testdesk/backend/internal/similarity"
)

type rootOptions struct {
	dictPath string
	noDict   bool
	jsonOut  bool
	verbose  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "dupscan",
		Short: "Score and group similar bug texts",
		Long: `dupscan scores how alike short texts are, finds likely duplicates,
extracts keywords and clusters texts. Chinese text is segmented with a
dictionary; pass --no-dict to split on whitespace only.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.dictPath, "dict", "", "segmentation dictionary file")
	cmd.PersistentFlags().BoolVar(&opts.noDict, "no-dict", false, "skip dictionary segmentation")
	cmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "output results as JSON")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newCompareCmd(opts),
		newSimilarCmd(opts),
		newKeywordsCmd(opts),
		newClusterCmd(opts),
		newFeaturesCmd(opts),
	)
	return cmd
}

// engine builds a similarity engine from the environment configuration and
// the dictionary flags.
func (o *rootOptions) engine(cmd *cobra.Command) *similarity.Engine {
	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(logrus.WarnLevel)
	if o.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg := config.Load()
	simCfg := engine.SimilarityConfig(cfg.Similarity)
	if o.dictPath != "" {
		simCfg.DictPath = o.dictPath
	}
	if o.noDict {
		simCfg.DisableDictionary = true
	}
	return similarity.New(simCfg, logger.WithField("service", "dupscan"))
}

func (o *rootOptions) printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// readLines returns the non-blank lines of path, or of stdin when path is "-".
func readLines(cmd *cobra.Command, path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}
