package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/okian/staffwise/internal/domain/types"
)

func newRecommendCmd(opts *rootOptions) *cobra.Command {
	var compact bool
	cmd := &cobra.Command{
		Use:   "recommend <project_id>...",
		Short: "Print recommendations for one or more projects as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseProjectIDs(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			env, err := setup(ctx, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer env.Close()

			var out any
			if len(ids) == 1 {
				resp, err := env.svc.Recommend(ctx, ids[0])
				if err != nil {
					return err
				}
				out = resp
			} else {
				if err := env.svc.Start(ctx); err != nil {
					return err
				}
				defer env.svc.Stop()
				results, err := env.svc.RecommendBatch(ctx, ids)
				if err != nil {
					return err
				}
				out = types.BatchResponse{Results: results}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if !compact {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(out)
		},
	}
	cmd.Flags().BoolVar(&compact, "compact", false, "print JSON on a single line")
	return cmd
}

func parseProjectIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid project id %q: %w", a, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
