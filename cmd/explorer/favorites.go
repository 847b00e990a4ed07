package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

func newFavoritesCmd(a *app) *cobra.Command {
	favoritesCmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage favourite countries",
	}

	favoritesCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List favourite countries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			codes, err := a.client.Favorites(cmd.Context())
			if err != nil {
				return err
			}
			printCodes(cmd.OutOrStdout(), codes)
			return nil
		},
	})

	favoritesCmd.AddCommand(
		favoriteChangeCmd("add", "Add a country to favourites", a.addFavorite),
		favoriteChangeCmd("remove", "Remove a country from favourites", a.removeFavorite),
	)

	favoritesCmd.AddCommand(&cobra.Command{
		Use:   "toggle <countryCode>",
		Short: "Add a country if absent, remove it if present",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := strings.ToUpper(args[0])
			codes, err := a.session.ToggleFavorite(cmd.Context(), code)
			if err != nil {
				return err
			}
			if slices.Contains(codes, code) {
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", code)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", code)
			}
			printCodes(cmd.OutOrStdout(), codes)
			return nil
		},
	})
	return favoritesCmd
}

// The client is built in PersistentPreRunE, so these resolve a.client when the command runs.
func (a *app) addFavorite(ctx context.Context, code string) ([]string, error) {
	return a.client.AddFavorite(ctx, code)
}

func (a *app) removeFavorite(ctx context.Context, code string) ([]string, error) {
	return a.client.RemoveFavorite(ctx, code)
}

func favoriteChangeCmd(use, short string, change func(ctx context.Context, code string) ([]string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <countryCode>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codes, err := change(cmd.Context(), strings.ToUpper(args[0]))
			if err != nil {
				return err
			}
			printCodes(cmd.OutOrStdout(), codes)
			return nil
		},
	}
}

func printCodes(w io.Writer, codes []string) {
	if len(codes) == 0 {
		fmt.Fprintln(w, "No favourite countries yet")
		return
	}
	fmt.Fprintf(w, "Favourites: %s\n", strings.Join(codes, ", "))
}
