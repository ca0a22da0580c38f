package cli

import (
	"context"
	"io"

	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/adapter"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func transcriptCommand() *cli.Command {
	var cfg config

	flags := append(globalFlags(&cfg), chatFlags(&cfg)...)

	return &cli.Command{
		Name:      "transcript",
		Usage:     "Print an archived turn transcript",
		ArgsUsage: "<key>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()

			key := c.Args().First()
			if key == "" {
				return goerr.New("transcript key is required")
			}
			if cfg.bucket == "" {
				return goerr.New("bucket is required")
			}

			archive, err := adapter.NewStorage(ctx, cfg.bucket)
			if err != nil {
				return goerr.Wrap(err, "failed to create transcript archive")
			}

			r, err := archive.Get(ctx, key)
			if err != nil {
				return goerr.Wrap(err, "failed to read transcript", goerr.V("key", key))
			}
			defer r.Close()

			if _, err := io.Copy(c.Root().Writer, r); err != nil {
				return goerr.Wrap(err, "failed to print transcript")
			}
			return nil
		},
	}
}
