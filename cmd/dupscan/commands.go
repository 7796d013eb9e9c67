package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/testdesk/backend/internal/similarity"
)

func newCompareCmd(opts *rootOptions) *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "compare [text-a] [text-b]",
		Short: "Score the similarity of two texts",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, ok := similarity.ParseMethod(method)
			if !ok {
				return fmt.Errorf("unsupported method %q", method)
			}

			score := opts.engine(cmd).Similarity(args[0], args[1], m)
			if opts.jsonOut {
				return opts.printJSON(cmd, map[string]interface{}{"score": score, "method": m})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.4f\n", score)
			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "m", string(similarity.MethodCombined), "jaccard, cosine, levenshtein, edit or combined")
	return cmd
}

func newSimilarCmd(opts *rootOptions) *cobra.Command {
	var (
		file       string
		threshold  float64
		maxResults int
	)

	cmd := &cobra.Command{
		Use:   "similar [target]",
		Short: "Find candidates similar to a target text",
		Long: `Scores every line of the candidates file against the target with the
combined measure and lists the best matches.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			candidates, err := readLines(cmd, file)
			if err != nil {
				return err
			}

			matches := opts.engine(cmd).FindSimilar(args[0], candidates, threshold, maxResults)
			if opts.jsonOut {
				return opts.printJSON(cmd, matches)
			}

			if len(matches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No similar texts found.")
				return nil
			}
			for _, m := range matches {
				fmt.Fprintf(cmd.OutOrStdout(), "  [%d] %.4f  %s\n", m.Index+1, m.Score, candidates[m.Index])
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "candidates file, one text per line")
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", similarity.DefaultThreshold, "minimum score")
	cmd.Flags().IntVarP(&maxResults, "max", "n", similarity.DefaultMaxResults, "maximum number of results")
	return cmd
}

func newKeywordsCmd(opts *rootOptions) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "keywords [text]",
		Short: "Extract the most frequent keywords",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keywords := opts.engine(cmd).ExtractKeywords(args[0], top)
			if opts.jsonOut {
				return opts.printJSON(cmd, keywords)
			}
			for _, k := range keywords {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&top, "top", "k", similarity.DefaultKeywordCount, "number of keywords")
	return cmd
}

func newClusterCmd(opts *rootOptions) *cobra.Command {
	var (
		file      string
		threshold float64
	)

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Group similar texts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			texts, err := readLines(cmd, file)
			if err != nil {
				return err
			}

			clusters := opts.engine(cmd).Cluster(texts, threshold)
			if opts.jsonOut {
				return opts.printJSON(cmd, clusters)
			}

			for i, cluster := range clusters {
				fmt.Fprintf(cmd.OutOrStdout(), "Cluster %d:\n", i+1)
				for _, idx := range cluster {
					fmt.Fprintf(cmd.OutOrStdout(), "  [%d] %s\n", idx+1, texts[idx])
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "texts file, one text per line")
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", similarity.DefaultClusterThreshold, "minimum score to join a cluster")
	return cmd
}

func newFeaturesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "features [text]",
		Short: "Show text statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.engine(cmd).Features(args[0])
			if opts.jsonOut {
				return opts.printJSON(cmd, f)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Characters:        %d\n", f.CharCount)
			fmt.Fprintf(cmd.OutOrStdout(), "Words:             %d\n", f.WordCount)
			fmt.Fprintf(cmd.OutOrStdout(), "Sentences:         %d\n", f.SentenceCount)
			fmt.Fprintf(cmd.OutOrStdout(), "Tokens:            %d\n", f.TokenCount)
			fmt.Fprintf(cmd.OutOrStdout(), "Unique tokens:     %d\n", f.UniqueTokens)
			fmt.Fprintf(cmd.OutOrStdout(), "Avg token length:  %.2f\n", f.AvgTokenLength)
			fmt.Fprintf(cmd.OutOrStdout(), "Lexical diversity: %.3f\n", f.LexicalDiversity)
			for _, tc := range f.MostCommonTokens {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d\n", tc.Token, tc.Count)
			}
			return nil
		},
	}
}
