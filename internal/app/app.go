package app

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/humansforhousing/kioskctl/internal/actions/player"
	"github.com/humansforhousing/kioskctl/internal/actions/provision"
	contextInternal "github.com/humansforhousing/kioskctl/internal/context"
	"github.com/humansforhousing/kioskctl/internal/pkg/kioskctl"
	"github.com/humansforhousing/kioskctl/pkg/identity"
	"github.com/urfave/cli/v2"
)

// guard returns the exit status for a refused run, 0 otherwise.
func guard(euid int, out io.Writer) int {
	if err := identity.RequireUnprivilegedUID(euid); err != nil {
		_, _ = fmt.Fprintln(out, err)

		return 1
	}

	return 0
}

// nolint:funlen
func Run(args []string) {
	// Nothing is written before this check, not even the log file.
	if code := guard(os.Geteuid(), os.Stdout); code != 0 {
		os.Exit(code)
	}

	logsDir, err := kioskctl.LogsDirectory()
	if err != nil {
		log.Fatalf("Error creating log directory: %s", err)
	}
	logname := filepath.Join(logsDir, fmt.Sprintf("%s.log", time.Now().Format("2006-01-02_15-04-05")))
	logFile, err := os.OpenFile(logname, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	defer logFile.Close()

	log.SetOutput(logFile)
	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, nil)))

	app := &cli.App{
		Name:      "kioskctl",
		Usage:     "Video kiosk provisioning",
		UsageText: "Run kioskctl as the kiosk user to install and register the video player.",
		Before: func(context *cli.Context) error {
			var err error
			context.Context, err = contextInternal.SetOSContext(context.Context)
			if err != nil {
				return err
			}

			log.Println(contextInternal.OSInfoFromContext(context.Context))

			return nil
		},
		Action: provision.Handle,
		Commands: []*cli.Command{
			{
				Name:        "install",
				Aliases:     []string{"i"},
				Description: "Install the video player and register it as a service",
				Usage:       "Install the video player and register it as a service",
				Action:      provision.Handle,
			},
			{
				Name:        "service",
				Aliases:     []string{"s"},
				Description: "Video player service actions",
				Usage:       "Video player service actions",
				Subcommands: []*cli.Command{
					{
						Name:   "start",
						Usage:  "Start the video player",
						Action: player.HandleStart,
					},
					{
						Name:   "stop",
						Usage:  "Stop the video player",
						Action: player.HandleStop,
					},
					{
						Name:    "restart",
						Aliases: []string{"r"},
						Usage:   "Restart the video player",
						Action:  player.HandleRestart,
					},
					{
						Name:   "status",
						Usage:  "Show the video player status",
						Action: player.HandleStatus,
					},
					{
						Name:   "logs",
						Usage:  "Show the video player logs",
						Action: player.HandleLogs,
						Flags: []cli.Flag{
							&cli.BoolFlag{
								Name:    "follow",
								Aliases: []string{"f"},
							},
						},
					},
				},
			},
		},
	}

	err = app.Run(args)
	if err != nil {
		fmt.Println(err)
		fmt.Println("See details in log file: " + logname)
		log.Fatal(err)
	}
}
