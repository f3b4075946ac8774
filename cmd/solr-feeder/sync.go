package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/totegamma/solr-feeder"
	"github.com/totegamma/solr-feeder/internal/domain"
	"github.com/totegamma/solr-feeder/internal/infra/providers"
)

func newSyncCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "sync <nameRequestNumber>",
		Short:        "Sync one name request into the Solr cores and exit",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(opts)
			if err != nil {
				return err
			}
			setupLogger(conf.Server)

			db, err := providers.NewDatabase(conf.Server)
			if err != nil {
				return err
			}
			solr := providers.NewSolrGateway(providers.NewClient(conf.Solr))
			rdb := providers.NewRedis(conf.Server)
			names := providers.NewNamesUsecase(db, solr, providers.NewSignalService(rdb, conf.Sync), conf.Solr)

			err = names.SyncByRequestNumber(cmd.Context(), args[0])

			message := feeder.SyncSucceededMessage
			if err != nil {
				message = domain.Message(err)
			}
			feeder.JsonPrint(os.Stdout, fmt.Sprint(domain.StatusCode(err)), feeder.MessageResponse{Message: message})

			if err != nil {
				return fmt.Errorf("sync of %s failed", args[0])
			}
			return nil
		},
	}
}
