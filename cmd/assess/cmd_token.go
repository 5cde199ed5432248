package main

import (
	"fmt"
	"growth_assessment/internal/config"
	"growth_assessment/internal/util"
	"time"

	"github.com/spf13/cobra"
)

var (
	tokenSecret    string
	tokenConfigDir string
	tokenTTL       time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for --user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if userID == "" {
			return fmt.Errorf("--user is required")
		}

		secret := tokenSecret
		if secret == "" {
			cfg, err := config.LoadConfig(tokenConfigDir)
			if err != nil {
				return err
			}
			secret = cfg.JWT.Secret
		}
		if secret == "" {
			return fmt.Errorf("no signing secret: pass --secret or set jwt.secret")
		}

		signed, err := util.GenerateJWT(userID, secret, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), signed)
		return nil
	},
}
