package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/iliyamo/seating-designer/internal/client"
	"github.com/iliyamo/seating-designer/internal/console"
	"github.com/iliyamo/seating-designer/internal/editor"
	"github.com/iliyamo/seating-designer/internal/logging"
	"github.com/iliyamo/seating-designer/internal/model"
	"github.com/iliyamo/seating-designer/internal/utils"
)

type flags struct {
	API      string
	Token    string
	Timeout  time.Duration
	LogLevel string
	Screen   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	f := &flags{}
	app := &cli.Command{
		Name:      "designer",
		Usage:     "Lay out the rows, tiers and aisles of a screen",
		UsageText: "designer [global options] command [command options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "api",
				Usage:       "base URL of the layout API",
				Sources:     cli.EnvVars("LAYOUT_API_URL"),
				Value:       "http://localhost:8080",
				Destination: &f.API,
			},
			&cli.StringFlag{
				Name:        "token",
				Usage:       "bearer token for the layout API",
				Sources:     cli.EnvVars("LAYOUT_API_TOKEN"),
				Destination: &f.Token,
			},
			&cli.DurationFlag{
				Name:        "timeout",
				Usage:       "bound on each load and save",
				Sources:     cli.EnvVars("LAYOUT_REQUEST_TIMEOUT"),
				Value:       10 * time.Second,
				Destination: &f.Timeout,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Sources:     cli.EnvVars("LOG_LEVEL"),
				Value:       "warn",
				Destination: &f.LogLevel,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if err := logging.Setup("dev", f.LogLevel, os.Stderr); err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the stored layout of a screen",
				Flags: []cli.Flag{f.screenFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					rows, err := f.client().Fetch(ctx, f.Screen)
					if err != nil {
						return fmt.Errorf("load layout: %s", model.UserMessage(err, "layout service unavailable"))
					}
					model.SortByLabel(rows)
					console.Render(os.Stdout, model.Layout{Rows: rows}, -1)
					return nil
				},
			},
			{
				Name:  "edit",
				Usage: "Edit the layout of a screen interactively",
				Description: `Loads the stored layout and reads one command per line.
Type help inside the editor for the command list.`,
				Flags: []cli.Flag{f.screenFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					s := editor.NewSession(f.Screen, f.client(),
						editor.WithNotifier(editor.WriterNotifier{W: os.Stdout}),
						editor.WithTimeout(f.Timeout),
					)
					if err := s.Load(ctx); err != nil {
						// the operator was notified; reload retries
						log.Debug().Err(err).Msg("initial load failed")
					}
					return console.New(s, os.Stdin, os.Stdout).WithTerminal(int(os.Stdin.Fd())).Run(ctx)
				},
			},
			tokenCmd(),
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (f *flags) screenFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "screen",
		Aliases:     []string{"s"},
		Usage:       "screen id",
		Required:    true,
		Destination: &f.Screen,
	}
}

func (f *flags) client() *client.Client {
	return client.New(f.API, client.StaticToken(f.Token), client.WithTimeout(f.Timeout))
}

// tokenCmd mints a signed access token for development setups where no
// identity service issues them.
func tokenCmd() *cli.Command {
	var (
		secret, subject, role string
		ttl                   time.Duration
	)
	return &cli.Command{
		Name:  "token",
		Usage: "Mint a development access token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "secret", Usage: "HMAC secret of the server", Sources: cli.EnvVars("JWT_SECRET"), Required: true, Destination: &secret},
			&cli.StringFlag{Name: "sub", Usage: "subject (operator id)", Value: "operator", Destination: &subject},
			&cli.StringFlag{Name: "role", Usage: "OPERATOR or ADMIN", Value: "OPERATOR", Destination: &role},
			&cli.DurationFlag{Name: "ttl", Usage: "token lifetime", Value: time.Hour, Destination: &ttl},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			tok, err := utils.NewAccessToken(secret, subject, role, ttl)
			if err != nil {
				return err
			}
			fmt.Println(tok.Token)
			return nil
		},
	}
}
