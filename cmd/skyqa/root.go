package main

import (
	"github.com/MegaGrindStone/skyqa/internal/logging"
	"github.com/MegaGrindStone/skyqa/internal/repl"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	envFile    string
	example    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "skyqa",
		Short: "Answer questions about sky objects",
		Long: "skyqa finds the sky object a German question refers to, renders its facts into a short " +
			"paragraph and extracts the answer from it. Without a subcommand it starts an interactive session.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			session := repl.NewSession(a.service, a.names, cmd.InOrStdin(), cmd.OutOrStdout(),
				a.cfg.QuestionTimeout, a.logger)
			if opts.example {
				session.RunExample(ctx)
				return nil
			}
			if err := session.Run(ctx); err != nil {
				logging.Critical(a.logger, "Session failed", "error", err)
				return err
			}
			a.logger.Info("Session ended")
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "path to the YAML config file")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the config")
	cmd.Flags().BoolVar(&opts.example, "example", false, "answer the example questions and exit")

	cmd.AddCommand(
		newAskCmd(opts),
		newSeedCmd(opts),
		newObjectsCmd(opts),
	)
	return cmd
}
