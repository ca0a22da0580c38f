package cli

import (
	"context"
	"fmt"

	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func rememberCommand() *cli.Command {
	var (
		cfg        config
		userID     string
		memoryType string
		tags       []string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Aliases:     []string{"u"},
			Usage:       "User ID the memory is attributed to",
			Sources:     cli.EnvVars("MEERA_USER_ID"),
			Destination: &userID,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "type",
			Aliases:     []string{"t"},
			Usage:       "Memory type (personal_identity, preference, factual, emotional_state)",
			Value:       string(model.MemoryTypeFactual),
			Destination: &memoryType,
		},
		&cli.StringSliceFlag{
			Name:        "tag",
			Usage:       "Tag to attach (repeatable)",
			Destination: &tags,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:      "remember",
		Usage:     "Write a memory into the hive mind",
		ArgsUsage: "<content>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()

			content := c.Args().First()
			if content == "" {
				return goerr.New("content is required")
			}

			memories, err := cfg.newMemories(ctx)
			if err != nil {
				return err
			}

			id, err := memories.CreateHiveMindMemory(ctx, userID, content, model.MemoryType(memoryType), tags)
			if err != nil {
				return goerr.Wrap(err, "failed to create hive mind memory")
			}

			fmt.Fprintf(c.Root().Writer, "Created memory: %s\n", id)
			return nil
		},
	}
}
