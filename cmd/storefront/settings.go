package main

import (
	"encoding/json"

	"github.com/jrsteele09/go-storefront/client"
	"github.com/spf13/cobra"
)

func settingsCmd() *cobra.Command {
	var serviceURL, locale string

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Print the general settings served for a locale",
		RunE: func(cmd *cobra.Command, args []string) error {
			if serviceURL == "" {
				serviceURL = defaultServiceURL()
			}
			resp, err := client.New(serviceURL).Settings(cmd.Context(), locale)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}

	cmd.Flags().StringVar(&serviceURL, "url", "", "Storefront service URL (default STOREFRONT_URL or http://localhost:$PORT)")
	cmd.Flags().StringVarP(&locale, "locale", "l", "", "Locale to request; empty lets the service negotiate")

	return cmd
}
