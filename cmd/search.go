package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deepgram/shopfront/internal/config"
	"github.com/deepgram/shopfront/internal/services"
	"github.com/spf13/cobra"
)

func newSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Rank catalog products for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, _ := cmd.Flags().GetString("lang")
			ctx, cancel := context.WithTimeout(cmd.Context(), config.GetBackendTimeout())
			defer cancel()

			svc, err := services.InitializeServices(ctx)
			if err != nil {
				return err
			}
			defer svc.Close()

			query := strings.Join(args, " ")
			start := time.Now()
			result := svc.GetSearchService().Search(ctx, query, svc.GetCatalog(), config.LookupLocale(lang).Language)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d results for %q in %s (%s)\n", len(result.IDs), query, time.Since(start).Round(time.Millisecond), result.Reason)
			for i, id := range result.IDs {
				if p, ok := svc.GetCatalog().ByID(id); ok {
					fmt.Fprintf(out, "%2d. %-28s %8.2f  %s\n", i+1, p.Name, p.Price, p.Category)
				}
			}
			return nil
		},
	}
	cmd.Flags().String("lang", config.DefaultLanguage, "language for the backend ranking")
	return cmd
}
