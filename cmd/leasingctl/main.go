// Command leasingctl prices selections and builds handoff links from a vehicle catalog file.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alc/leasing-form/internal/leasing"
	"github.com/alc/leasing-form/internal/vehicles"
)

type globalFlags struct {
	catalog  string
	currency string
	combo    bool
}

type selectionFlags struct {
	vehicle      string
	subscription string
	insurance    string
	mileage      string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:          "leasingctl",
		Short:        "Quote leasing selections and build messaging handoff links",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&g.catalog, "catalog", "", "Vehicle catalog YAML (default: bundled seed)")
	cmd.PersistentFlags().StringVar(&g.currency, "currency", leasing.DefaultCurrency, "Currency label")
	cmd.PersistentFlags().BoolVar(&g.combo, "combo-discount", false, "Apply the 9 months + full cover + 5,000 km discount")

	cmd.AddCommand(newVehiclesCmd(g), newQuoteCmd(g), newLinkCmd(g))
	return cmd
}

func newVehiclesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "vehicles",
		Short: "List catalog vehicles with their lowest monthly price",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := g.repository()
			if err != nil {
				return err
			}
			list, err := repo.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SLUG\tTITLE\tFROM")
			for _, v := range list {
				from := v.Listing().Catalog(g.currency).LowestSubscriptionPrice()
				fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Slug, v.Title, leasing.FormatAmount(from, g.currency))
			}
			return tw.Flush()
		},
	}
}

func newQuoteCmd(g *globalFlags) *cobra.Command {
	s := &selectionFlags{}
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a selection for one vehicle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := g.form(cmd.Context(), s)
			if err != nil {
				return err
			}
			return printQuote(cmd.OutOrStdout(), form)
		},
	}
	s.bind(cmd)
	return cmd
}

func newLinkCmd(g *globalFlags) *cobra.Command {
	s := &selectionFlags{}
	var token, baseURL, fallback string
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Build the messaging handoff link for a selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := g.form(cmd.Context(), s)
			if err != nil {
				return err
			}
			m := leasing.Messenger{BaseURL: baseURL, FallbackContact: fallback}
			h, err := m.Handoff(form.Submission(token))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h.URL)
			return nil
		},
	}
	s.bind(cmd)
	cmd.Flags().StringVar(&token, "token", "", "Security token forwarded with the submission")
	cmd.Flags().StringVar(&baseURL, "base-url", leasing.DefaultMessagingBaseURL, "Messaging service base URL")
	cmd.Flags().StringVar(&fallback, "fallback-contact", leasing.FallbackContact, "Contact used when the vehicle has none")
	return cmd
}

func (s *selectionFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.vehicle, "vehicle", "", "Vehicle slug")
	cmd.Flags().StringVar(&s.subscription, "subscription", "", "Subscription option id (default: catalog default)")
	cmd.Flags().StringVar(&s.insurance, "insurance", "", "Insurance option id (default: catalog default)")
	cmd.Flags().StringVar(&s.mileage, "mileage", "", "Mileage option id (default: catalog default)")
	_ = cmd.MarkFlagRequired("vehicle")
}

func (g *globalFlags) repository() (vehicles.Repository, error) {
	seed, err := vehicles.LoadSeedFile(g.catalog)
	if err != nil {
		return nil, err
	}
	return vehicles.NewStaticRepository(seed), nil
}

func (g *globalFlags) calculator() *leasing.Calculator {
	opts := []leasing.CalculatorOption{leasing.WithCurrency(g.currency)}
	if g.combo {
		opts = append(opts, leasing.WithRules(leasing.NineMonthFullCoverDiscount()))
	}
	return leasing.NewCalculator(opts...)
}

// form opens a form for the chosen vehicle and applies the requested selections. Unknown ids
// are reported rather than silently ignored.
func (g *globalFlags) form(ctx context.Context, s *selectionFlags) (*leasing.Form, error) {
	repo, err := g.repository()
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	v, err := repo.GetBySlug(ctx, s.vehicle)
	if err != nil {
		return nil, fmt.Errorf("vehicle %q: %w", s.vehicle, err)
	}
	form := leasing.NewForm("cli", v.Listing(), g.calculator())
	picks := map[leasing.Category]string{
		leasing.CategorySubscription: s.subscription,
		leasing.CategoryInsurance:    s.insurance,
		leasing.CategoryMileage:      s.mileage,
	}
	for _, cat := range leasing.Categories {
		id := strings.TrimSpace(picks[cat])
		if id == "" {
			continue
		}
		if !form.Select(cat, id) {
			return nil, fmt.Errorf("unknown %s option %q", cat, id)
		}
	}
	return form, nil
}

func printQuote(w io.Writer, form *leasing.Form) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Vehicle\t%s\n", form.Listing.VehicleTitle)
	for _, cat := range leasing.Categories {
		opt, _ := form.Selected(cat)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", cat.SummaryLabel(), opt.Label, leasing.GroupDigits(opt.Price))
	}
	q := form.Quote()
	for _, adj := range q.Adjustments {
		fmt.Fprintf(tw, "Adjustment\t%s\t%s\n", adj.Rule, leasing.GroupDigits(adj.Amount))
	}
	fmt.Fprintf(tw, "Total\t%s\n", q.Formatted())
	return tw.Flush()
}
