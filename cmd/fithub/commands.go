package main

import (
	"fmt"
	"strconv"

	"fithub/internal/filter"
	"fithub/internal/recipe"

	"github.com/spf13/cobra"
)

func addFilterFlags(cmd *cobra.Command, filters *[]string) {
	cmd.Flags().StringArrayVarP(filters, "filter", "f", nil,
		"filter as key=value, e.g. max_cost=20, min_taste_rating=3, exclude_allergens=gluten (repeatable)")
}

func recipesCmd() *cobra.Command {
	var filters []string
	cmd := &cobra.Command{
		Use:   "recipes <breakfast|lunch|dinner>",
		Short: "List candidate recipes for a meal slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mt, err := recipe.ParseMealType(args[0])
			if err != nil {
				return err
			}
			c, err := filter.ParseArgs(filters)
			if err != nil {
				return err
			}
			return application.ListRecipes(cmd.Context(), mt, c)
		},
	}
	addFilterFlags(cmd, &filters)
	return cmd
}

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build, inspect and keep meal plans",
	}
	cmd.AddCommand(planRandomCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the current plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return application.ShowPlan(cmd.Context())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "select <slot> <recipe-id>",
		Short: "Put a recipe in a slot, or take it out if it is already there",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mt, err := recipe.ParseMealType(args[0])
			if err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid recipe id %q: %w", args[1], err)
			}
			return application.SelectRecipe(cmd.Context(), mt, id)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty every slot of the current plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return application.ClearPlan(cmd.Context())
		},
	})
	cmd.AddCommand(planSaveCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return application.ListSavedPlans(cmd.Context())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <plan-id>",
		Short: "Delete a saved plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return application.DeleteSavedPlan(cmd.Context(), args[0])
		},
	})
	return cmd
}

func planRandomCmd() *cobra.Command {
	var filters []string
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Draw a random recipe for every slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := filter.ParseArgs(filters)
			if err != nil {
				return err
			}
			return application.RandomPlan(cmd.Context(), c)
		},
	}
	addFilterFlags(cmd, &filters)
	return cmd
}

func planSaveCmd() *cobra.Command {
	var budget string
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save the current plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var b *float64
			if budget != "" {
				v, ok := filter.NormalizeNumber(budget)
				if !ok {
					return fmt.Errorf("invalid budget %q", budget)
				}
				b = &v
			}
			return application.SavePlan(cmd.Context(), b)
		},
	}
	cmd.Flags().StringVar(&budget, "budget", "", "budget to compare the plan's cost against")
	return cmd
}
