package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/carenotify/internal/app"
	"github.com/dmitrymomot/carenotify/pkg/config"
	"github.com/dmitrymomot/carenotify/pkg/jwt"
)

func newTokenCmd() *cobra.Command {
	var (
		tenantID string
		userID   string
		ttl      time.Duration
		dispatch bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed access token",
		Long: "Issues a token for the realtime endpoints. With --dispatch the token may also " +
			"call the /v1 API of its tenant.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if tenantID == "" || userID == "" {
				return errors.New("--tenant and --user are required")
			}
			var cfg jwt.Config
			if err := config.Load(&cfg); err != nil {
				return err
			}
			svc, err := jwt.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			claims := jwt.NewClaims(tenantID, userID, ttl)
			if dispatch {
				claims.Audience = append(claims.Audience, app.DispatchAudience)
			}
			token, err := svc.Generate(claims)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant id")
	cmd.Flags().StringVar(&userID, "user", "", "user id (token subject)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime, 0 for no expiry")
	cmd.Flags().BoolVar(&dispatch, "dispatch", false, "allow calling the dispatch API")
	return cmd
}
