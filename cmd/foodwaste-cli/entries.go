package main

import (
	"fmt"
	"time"

	"foodwaste/internal/cli"
	"foodwaste/internal/core"

	"github.com/spf13/cobra"
)

func (a *app) addCmd() *cobra.Command {
	var (
		in     core.EntryInput
		advice bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a wasted food item",
		Example: `  foodwaste-cli add --item "Spinach" --category vegetables --quantity 200 --unit g --reason spoiled
  foodwaste-cli add --item "Lasagne" --category grains --quantity 2 --unit servings --reason leftover --advice`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.openBackend(cmd)
			if err != nil {
				return err
			}
			defer closeBackend(b)

			id, err := b.Service.AddEntry(cmd.Context(), in)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.SuccessStyle.Render("Saved entry "+id))

			if advice {
				e, err := b.Service.GetEntry(cmd.Context(), id)
				if err != nil {
					return err
				}
				if tip := b.Service.Advise(cmd.Context(), e); tip != "" {
					fmt.Fprintln(out, cli.SubtleStyle.Render("Tip: ")+tip)
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.FoodItem, "item", "", "food item name")
	f.StringVar(&in.Category, "category", "", "category (Vegetables, Fruits, Dairy, Grains, Meat, Others)")
	f.StringVar(&in.Quantity, "quantity", "", "quantity in the given unit")
	f.StringVar(&in.Unit, "unit", "kg", "unit (kg, g, lbs, oz, ltr, ml, servings, items)")
	f.StringVar(&in.Date, "date", time.Now().Format(core.DateLayout), "date wasted (YYYY-MM-DD)")
	f.StringVar(&in.Reason, "reason", "", "reason (Expired, Spoiled, Leftover, Overcooked, Others)")
	f.StringVar(&in.Notes, "notes", "", "free-text notes")
	f.BoolVar(&advice, "advice", false, "ask the assistant for a tip about this entry")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	var req core.PageRequest
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List logged entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.openBackend(cmd)
			if err != nil {
				return err
			}
			defer closeBackend(b)

			page, err := b.Service.ListEntries(cmd.Context(), req)
			if err != nil {
				return err
			}
			return cli.RenderEntries(cmd.OutOrStdout(), page)
		},
	}
	f := cmd.Flags()
	f.IntVar(&req.Limit, "limit", core.DefaultLimit, "entries per page")
	f.IntVar(&req.Offset, "offset", 0, "entries to skip")
	f.StringVar(&req.Sort, "sort", core.DefaultSortField, "sort field")
	f.StringVar(&req.Order, "order", core.SortOrderDesc, "sort order (asc, desc)")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.openBackend(cmd)
			if err != nil {
				return err
			}
			defer closeBackend(b)

			if err := b.Service.DeleteEntry(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render("Deleted entry "+args[0]))
			return nil
		},
	}
}

func (a *app) statsCmd() *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show waste statistics for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.openBackend(cmd)
			if err != nil {
				return err
			}
			defer closeBackend(b)

			stats, err := b.Service.GetStats(cmd.Context(), period)
			if err != nil {
				return err
			}
			return cli.RenderStats(cmd.OutOrStdout(), core.ParsePeriod(period).String(), stats)
		},
	}
	cmd.Flags().StringVar(&period, "period", "7days", "period (7days, 30days, month, year, all)")
	return cmd
}
