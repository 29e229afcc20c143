package cli

import (
	"fmt"
	"time"

	"github.com/qolzam/forum/votes/models"
	"github.com/qolzam/forum/votes/ranking"
	"github.com/spf13/cobra"
)

type scoreOptions struct {
	up, down int64
	ranker   ranking.Ranker
}

// scoreResult is printed by the score subcommands.
type scoreResult struct {
	Function string  `json:"function"`
	Up       int64   `json:"upvoteCount"`
	Down     int64   `json:"downvoteCount"`
	Age      string  `json:"age,omitempty"`
	Score    float64 `json:"score"`
}

func newScoreCommand(root *rootOptions) *cobra.Command {
	opts := &scoreOptions{ranker: ranking.Default()}
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Evaluate the ranking functions",
	}
	cmd.PersistentFlags().Int64Var(&opts.up, "up", 0, "Upvote count")
	cmd.PersistentFlags().Int64Var(&opts.down, "down", 0, "Downvote count")

	var age time.Duration
	hot := &cobra.Command{
		Use:   "hot",
		Short: "Hot score of a post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			if age < 0 {
				return fmt.Errorf("--age must not be negative")
			}
			now := time.Now()
			score := opts.ranker.HotScore(opts.counts(), now.Add(-age), now)
			return printScore(cmd, root, scoreResult{Function: "hot", Up: opts.up, Down: opts.down, Age: age.String(), Score: score})
		},
	}
	hot.Flags().DurationVar(&age, "age", 0, "Age of the post, e.g. 90m")
	hot.Flags().Float64Var(&opts.ranker.Gravity, "gravity", ranking.DefaultGravity, "Age penalty exponent")
	hot.Flags().Float64Var(&opts.ranker.OffsetHours, "offset-hours", ranking.DefaultOffsetHours, "Hours added to the age")

	best := &cobra.Command{
		Use:   "best",
		Short: "Best (lower confidence bound) score of a comment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			score := opts.ranker.BestScore(opts.counts())
			return printScore(cmd, root, scoreResult{Function: "best", Up: opts.up, Down: opts.down, Score: score})
		},
	}
	best.Flags().Float64Var(&opts.ranker.Z, "z", ranking.DefaultZ, "Confidence multiplier")

	cmd.AddCommand(hot, best)
	return cmd
}

func (o *scoreOptions) validate() error {
	if o.up < 0 || o.down < 0 {
		return fmt.Errorf("--up and --down must not be negative")
	}
	return nil
}

func (o *scoreOptions) counts() models.Counts {
	return models.Counts{Up: o.up, Down: o.down}
}

func printScore(cmd *cobra.Command, root *rootOptions, res scoreResult) error {
	if root.output == OutputJSON {
		return printJSON(cmd.OutOrStdout(), res)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s score: %.4f\n", res.Function, res.Score)
	return err
}
