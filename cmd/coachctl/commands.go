package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"founder-coach-api/pkg/client"
	"founder-coach-api/pkg/entitlements"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	apiURL   string
	token    string
	timezone string
	asJSON   bool
	timeout  time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "coachctl",
		Short:         "Inspect plans and entitlements",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", envOr("COACH_API_URL", "http://localhost:8080"), "API base URL")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("COACH_TOKEN"), "access token (or COACH_TOKEN)")
	root.PersistentFlags().StringVar(&opts.timezone, "tz", os.Getenv("COACH_TZ"), "IANA time zone for daily limits")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print JSON")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 15*time.Second, "request timeout")

	root.AddCommand(
		newPlansCmd(opts),
		newAccessCmd(opts),
		newCheckCmd(opts),
		newUsageCmd(opts),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (o *rootOptions) client() *client.Client {
	var opts []client.Option
	if o.timezone != "" {
		opts = append(opts, client.WithTimezone(o.timezone))
	}
	return client.New(o.apiURL, o.token, opts...)
}

func (o *rootOptions) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), o.timeout)
}

func (o *rootOptions) requireToken() error {
	if o.token == "" {
		return errors.New("an access token is required (--token or COACH_TOKEN)")
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newPlansCmd(opts *rootOptions) *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "List the plan catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			var plans []entitlements.PlanDisplayInfo
			if offline {
				for _, def := range entitlements.Plans() {
					plans = append(plans, entitlements.GetPlanDisplayInfo(string(def.ID)))
				}
			} else {
				ctx, cancel := opts.context(cmd)
				defer cancel()
				var err error
				if plans, err = opts.client().Plans(ctx); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if opts.asJSON {
				return printJSON(out, plans)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PLAN\tMONTHLY\tIDEAS\tSAVED\tBLUEPRINTS\tRADAR/DAY")
			for _, p := range plans {
				f := p.Features
				fmt.Fprintf(tw, "%s\t$%d.%02d\t%s\t%s\t%s\t%s\n",
					p.ID, p.MonthlyPriceCents/100, p.MonthlyPriceCents%100,
					f.MaxIdeaGenerationsTotal, f.MaxSavedIdeas, f.MaxBlueprints, f.MaxRadarSignalsDaily)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "print the built-in catalog without calling the API")
	return cmd
}

// newAccessCmd shows the client-side view of the caller's plan, gated on the
// restricted subscription view the same way an app would.
func newAccessCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "access",
		Short: "Show the caller's plan as the client sees it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireToken(); err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()

			access := client.NewFeatureAccess(opts.client())
			refreshErr := access.Refresh(ctx)

			out := cmd.OutOrStdout()
			if opts.asJSON {
				return printJSON(out, map[string]interface{}{
					"plan":        access.Plan(),
					"status":      access.Status(),
					"has_pro":     access.HasPro(),
					"has_founder": access.HasFounder(),
					"error":       errString(refreshErr),
				})
			}

			fmt.Fprintf(out, "plan:        %s\n", access.Plan())
			fmt.Fprintf(out, "status:      %s\n", access.Status())
			fmt.Fprintf(out, "has pro:     %t\n", access.HasPro())
			fmt.Fprintf(out, "has founder: %t\n", access.HasFounder())
			if refreshErr != nil {
				fmt.Fprintf(out, "warning:     %v (showing free)\n", refreshErr)
			}
			return nil
		},
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// newCheckCmd asks the server, which re-reads the subscription from storage.
func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <feature>",
		Short: "Check a feature against the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireToken(); err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()

			feature := args[0]
			err := opts.client().CheckFeature(ctx, feature)
			out := cmd.OutOrStdout()

			var apiErr *client.APIError
			switch {
			case err == nil:
				fmt.Fprintf(out, "%s: allowed\n", feature)
				return nil
			case errors.As(err, &apiErr) && apiErr.IsDenial():
				fmt.Fprintf(out, "%s: denied (%s)\n", feature, apiErr.Code)
				if apiErr.Copy != nil {
					fmt.Fprintf(out, "  %s\n  %s\n", apiErr.Copy.Headline, apiErr.Copy.Subhead)
				}
				return fmt.Errorf("feature %s denied", feature)
			default:
				return err
			}
		},
	}
}

func newUsageCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show usage against the caller's plan limits",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.requireToken(); err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()

			summary, err := opts.client().Usage(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.asJSON {
				return printJSON(out, summary)
			}
			fmt.Fprintf(out, "plan: %s\n", summary.Plan)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RESOURCE\tUSED\tLIMIT\tREMAINING\tALLOWED")
			for _, u := range summary.Usage {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%t\n", u.Resource, u.Used, u.Limit, u.Remaining, u.Allowed)
			}
			return tw.Flush()
		},
	}
}
