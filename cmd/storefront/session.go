package main

import (
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/go-storefront/internal/config"
	"github.com/jrsteele09/go-storefront/sessions"
	"github.com/jrsteele09/go-storefront/users"
	"github.com/spf13/cobra"
)

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Work with storefront sessions",
	}
	cmd.AddCommand(sessionIssueCmd())
	return cmd
}

// sessionIssueCmd signs a session for development so the API can be exercised
// without going through the sign-in flow.
func sessionIssueCmd() *cobra.Command {
	var (
		user   users.User
		token  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a signed session token for a user",
		Long:  "Issue a signed session token carrying the given user and backend token, using SESSION_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := config.New()
			provider, err := sessions.NewCookieProvider(c.GetSessionSecret(), c.GetSessionCookieName(), c.GetSessionMaxAge())
			if err != nil {
				return err
			}

			session := provider.NewSession(&user, token)
			signed, err := provider.Encode(session)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(map[string]any{
					"cookieName": provider.CookieName(),
					"token":      signed,
					"sessionId":  session.ID,
					"expires":    session.Expires,
				})
			}
			fmt.Fprintln(out, signed)
			fmt.Fprintf(out, "\n# Cookie: %s=%s\n# Expires: %s\n", provider.CookieName(), signed, session.Expires.Format("2006-01-02T15:04:05Z07:00"))
			return nil
		},
	}

	cmd.Flags().Int64Var(&user.ID, "user-id", 0, "Backend user id")
	cmd.Flags().StringVar(&user.Name, "name", "", "Display name of the user")
	cmd.Flags().StringVar(&user.Email, "email", "", "Email of the user")
	cmd.Flags().StringVar(&user.Locale, "locale", "", "Preferred locale of the user")
	cmd.Flags().StringVar(&token, "token", "", "Backend (Laravel) bearer token for the session")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the session as JSON")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("user-id")

	return cmd
}
