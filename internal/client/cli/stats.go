package cli

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"
)

func (a *App) cmdStats(_ context.Context, _ []string) error {
	s, err := a.metrics.Summary()
	if err != nil {
		return err
	}
	if len(s.Operations) == 0 {
		fmt.Fprintln(a.out, "No API calls yet.")
	} else {
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "OPERATION\tCALLS\tERRORS\tNETWORK\tAVG ms")
		for _, op := range s.Operations {
			fmt.Fprintf(tw, "%s\t%.0f\t%.0f\t%.0f\t%.1f\n",
				op.Operation, op.Requests, op.Errors, op.NetworkErrors, op.AvgSeconds*1000)
		}
		_ = tw.Flush()
	}

	if len(s.Transitions) > 0 {
		keys := make([]string, 0, len(s.Transitions))
		for k := range s.Transitions {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintln(a.out, "Session transitions:")
		for _, k := range keys {
			fmt.Fprintf(a.out, "  %s: %.0f\n", k, s.Transitions[k])
		}
	}
	return nil
}
