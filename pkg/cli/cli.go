package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "meera",
		Usage: "Conversational agent with long-term queryable memory",
		Commands: []*cli.Command{
			serveCommand(),
			chatCommand(),
			rememberCommand(),
			recallCommand(),
			transcriptCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
