package cli

import (
	"context"
	"fmt"

	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/model"
	"github.com/imtej/meera-os-hive-mind-agents-api/pkg/usecase/memory"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func recallCommand() *cli.Command {
	var (
		cfg    config
		userID string
		scope  string
		limit  int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user-id",
			Aliases:     []string{"u"},
			Usage:       "User ID to recall for (personal scope only)",
			Sources:     cli.EnvVars("MEERA_USER_ID"),
			Destination: &userID,
		},
		&cli.StringFlag{
			Name:        "scope",
			Aliases:     []string{"s"},
			Usage:       "Memory scope (personal, hive)",
			Value:       string(model.ScopePersonal),
			Destination: &scope,
		},
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"n"},
			Usage:       "Maximum number of memories to return",
			Value:       memory.DefaultRetrieveLimit,
			Destination: &limit,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:      "recall",
		Usage:     "Query stored memories",
		ArgsUsage: "<query>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg.setupLogger()

			query := c.Args().First()
			if query == "" {
				return goerr.New("query is required")
			}

			memScope := model.Scope(scope)
			if memScope == model.ScopePersonal && userID == "" {
				return goerr.New("user-id is required for personal scope")
			}

			memories, err := cfg.newMemories(ctx)
			if err != nil {
				return err
			}

			input := memory.RetrieveInput{
				Query: query,
				Scope: memScope,
				Limit: int(limit),
			}
			if memScope == model.ScopePersonal {
				input.OwnerID = userID
			}

			nodes, err := memories.Retrieve(ctx, input)
			if err != nil {
				return goerr.Wrap(err, "failed to retrieve memories")
			}

			if len(nodes) == 0 {
				fmt.Fprintf(c.Root().Writer, "No memories found\n")
				return nil
			}

			for i, node := range nodes {
				fmt.Fprintf(c.Root().Writer, "%d. [%s] %s (%s)\n   %s\n",
					i+1, node.Type, node.ID, node.CreatedAt.Format("2006-01-02 15:04"), node.Content)
			}
			return nil
		},
	}
}
