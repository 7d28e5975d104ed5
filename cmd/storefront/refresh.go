package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/jrsteele09/go-storefront/client"
	"github.com/jrsteele09/go-storefront/refresh"
	"github.com/spf13/cobra"
)

// refreshCmd drives a refresh controller against a running service. With a
// concurrency above one the extra calls are dropped while the first is in flight.
func refreshCmd() *cobra.Command {
	var (
		serviceURL   string
		sessionToken string
		concurrency  int
	)

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the session user through a running storefront service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if serviceURL == "" {
				serviceURL = defaultServiceURL()
			}
			if sessionToken == "" {
				sessionToken = os.Getenv("STOREFRONT_SESSION")
			}
			if sessionToken == "" {
				return fmt.Errorf("a session token is required (--session or STOREFRONT_SESSION)")
			}
			concurrency = max(concurrency, 1)

			auth := client.NewAuthContext(client.New(serviceURL, client.WithSessionToken(sessionToken)))
			if err := auth.Load(cmd.Context()); err != nil {
				return err
			}
			controller := refresh.NewController(auth)

			var (
				wg           sync.WaitGroup
				mu           sync.Mutex
				ran, dropped int
				firstErr     error
			)
			for range concurrency {
				wg.Add(1)
				go func() {
					defer wg.Done()
					didRun, err := controller.TryRefreshData(cmd.Context())
					mu.Lock()
					defer mu.Unlock()
					if didRun {
						ran++
					} else {
						dropped++
					}
					if err != nil && firstErr == nil {
						firstErr = err
					}
				}()
			}
			wg.Wait()
			if firstErr != nil {
				return firstErr
			}

			out := cmd.OutOrStdout()
			view := auth.View()
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(view.User); err != nil {
				return err
			}
			if since, ok := controller.TimeSinceLastFetch(); ok {
				fmt.Fprintf(out, "refreshed %d, dropped %d, last fetch %s ago\n", ran, dropped, since)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&serviceURL, "url", "", "Storefront service URL (default STOREFRONT_URL or http://localhost:$PORT)")
	cmd.Flags().StringVar(&sessionToken, "session", "", "Signed session token (default STOREFRONT_SESSION)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 1, "Number of concurrent refresh calls")

	return cmd
}
