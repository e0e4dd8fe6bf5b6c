package cli

import (
	"github.com/spf13/cobra"
)

func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := load(opts)
			if err != nil {
				return err
			}
			st, err := e.openStore(cmd.Context())
			if err != nil {
				e.log.Error("migrations failed", "err", err)
				return err
			}
			e.log.Info("database is up to date", "driver", e.cfg.Storage.Driver)
			return st.Close()
		},
	}
}
