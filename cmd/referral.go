package cmd

import (
	"fmt"

	"github.com/jmehdipour/workflow-relay/internal/config"
	"github.com/jmehdipour/workflow-relay/internal/logger"
	"github.com/jmehdipour/workflow-relay/internal/referral"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var referralFlags struct {
	name, email  string
	referredName string
	course       string
	currency     string
	amount       string
	env          string
}

var referralCmd = &cobra.Command{
	Use:   "referral",
	Short: "Send a referral follow-up notification",
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(referralFlags.amount)
		if err != nil {
			return fmt.Errorf("parse amount %q: %w", referralFlags.amount, err)
		}

		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		log := logger.Init(cfg.Log.Level)
		defer func() { _ = log.Sync() }()

		n := referral.NewNotifier(newRelayClient(cfg, log), referral.Settings{
			Template:   cfg.Referral.Template,
			From:       cfg.Referral.From,
			WebsiteURL: cfg.Website.BaseURL,
		})

		res := n.SendFollowup(cmd.Context(),
			referral.User{Name: referralFlags.name, Email: referralFlags.email},
			referral.Lead{User: referral.User{Name: referralFlags.referredName}, CourseName: referralFlags.course},
			referralFlags.currency,
			amount,
			referralFlags.env,
		)
		return printResult(cmd.OutOrStdout(), res)
	},
}

func init() {
	f := referralCmd.Flags()
	f.StringVar(&referralFlags.name, "name", "", "referrer full name")
	f.StringVar(&referralFlags.email, "email", "", "referrer email (recipient)")
	f.StringVar(&referralFlags.referredName, "referred-name", "", "name of the referred user")
	f.StringVar(&referralFlags.course, "course", "", "course the referred user enrolled in")
	f.StringVar(&referralFlags.currency, "currency", "", "currency code, e.g. NGN")
	f.StringVar(&referralFlags.amount, "amount", "0", "referral amount")
	f.StringVar(&referralFlags.env, "env", "", "environment override")
	_ = referralCmd.MarkFlagRequired("email")
	_ = referralCmd.MarkFlagRequired("currency")
}
