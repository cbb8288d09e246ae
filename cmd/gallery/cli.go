package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/aipowergrid/photo-gallery/internal/app"
	"github.com/aipowergrid/photo-gallery/internal/capture"
	"github.com/aipowergrid/photo-gallery/internal/config"
	"github.com/aipowergrid/photo-gallery/internal/gallery"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(cfg config.Config) *cli.App {
	app := &cli.App{
		Name:    "gallery",
		Usage:   "Take photos and manage the local photo gallery",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "environment", Aliases: []string{"e"}, Value: cfg.Environment, Usage: "Host environment: native|web"},
			&cli.StringFlag{Name: "data-dir", Value: cfg.DataDir, Usage: "Directory holding photo blobs"},
			&cli.StringFlag{Name: "spool-dir", Value: cfg.SpoolDir, Usage: "Directory the camera drops photos into"},
			&cli.StringFlag{Name: "kv-driver", Value: cfg.KVDriver, Usage: "Index backend: bolt|sqlite|postgres"},
			&cli.StringFlag{Name: "kv-dsn", Value: cfg.KVDSN, Usage: "Index backend path or connection string"},
		},
		Commands: []*cli.Command{
			addCmd(cfg),
			watchCmd(cfg),
			listCmd(cfg),
			deleteCmd(cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// resolveConfig applies global flag overrides to cfg.
func resolveConfig(c *cli.Context, cfg config.Config) (config.Config, error) {
	cfg.Environment = c.String("environment")
	cfg.DataDir = c.String("data-dir")
	cfg.SpoolDir = c.String("spool-dir")
	cfg.KVDriver = c.String("kv-driver")
	cfg.KVDSN = c.String("kv-dsn")
	if !c.IsSet("kv-dsn") && (c.IsSet("kv-driver") || c.IsSet("data-dir")) && cfg.KVDriver != "postgres" {
		cfg.KVDSN = filepath.Join(filepath.Dir(filepath.Clean(cfg.DataDir)), "index."+cfg.KVDriver)
	}
	return cfg, cfg.Validate()
}

func wire(c *cli.Context, cfg config.Config, source gallery.Capture) (*app.Deps, error) {
	resolved, err := resolveConfig(c, cfg)
	if err != nil {
		return nil, err
	}
	return app.Wire(c.Context, resolved, source)
}

// addCmd creates the add command.
func addCmd(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add an image file to the gallery",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.New("exactly one file is required"))
			}
			data, err := os.ReadFile(c.Args().First())
			if err != nil {
				return outputError(err)
			}

			deps, err := wire(c, cfg, nil)
			if err != nil {
				return outputError(err)
			}
			defer deps.Close()

			photo, err := deps.Inbox.Push(data, "image/jpeg")
			if err != nil {
				return outputError(err)
			}
			record, err := deps.Store.CaptureAndAdd(c.Context)
			deps.Inbox.Settle(photo, record != gallery.PhotoRecord{})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, app.PhotoView{FilePath: record.FilePath, WebViewPath: record.WebViewPath})
		},
	}
}

// watchCmd creates the watch command.
func watchCmd(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Add every photo the camera drops into the spool directory",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Usage: "Stop after this many photos (0 = until interrupted)"},
		},
		Action: func(c *cli.Context) error {
			resolved, err := resolveConfig(c, cfg)
			if err != nil {
				return outputError(err)
			}
			if !resolved.Durable() {
				return outputError(errors.New("watch needs the native environment"))
			}

			spool, err := capture.NewSpool(resolved.SpoolDir)
			if err != nil {
				return outputError(err)
			}
			defer spool.Close()

			deps, err := app.Wire(c.Context, resolved, spool)
			if err != nil {
				return outputError(err)
			}
			defer deps.Close()

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			limit := c.Int("count")
			for added := 0; limit == 0 || added < limit; {
				record, err := deps.Store.CaptureAndAdd(ctx)
				if errors.Is(err, capture.ErrCancelled) {
					return nil
				}
				if err != nil {
					fmt.Fprintf(c.App.ErrWriter, "add photo: %v\n", err)
					continue
				}
				added++
				if err := outputJSON(c, app.PhotoView{FilePath: record.FilePath, WebViewPath: record.WebViewPath}); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// listCmd creates the list command.
func listCmd(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List photos, newest first",
		Action: func(c *cli.Context) error {
			deps, err := wire(c, cfg, nil)
			if err != nil {
				return outputError(err)
			}
			defer deps.Close()

			photos := deps.Store.Photos()
			views := make([]app.PhotoView, 0, len(photos))
			for _, p := range photos {
				views = append(views, app.PhotoView{FilePath: p.FilePath, WebViewPath: p.WebViewPath, InlineData: p.InlineData})
			}
			return outputJSON(c, views)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete the photo at a list position",
		ArgsUsage: "<position>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return outputError(errors.New("exactly one position is required"))
			}
			position, err := strconv.Atoi(c.Args().First())
			if err != nil {
				return outputError(fmt.Errorf("invalid position: %w", err))
			}

			deps, err := wire(c, cfg, nil)
			if err != nil {
				return outputError(err)
			}
			defer deps.Close()

			removed, err := deps.Store.Delete(c.Context, position)
			if err != nil && !errors.Is(err, gallery.ErrBlobDelete) {
				return outputError(err)
			}
			if err != nil {
				fmt.Fprintf(c.App.ErrWriter, "warning: %v\n", err)
			}
			return outputJSON(c, map[string]any{"deleted": app.PhotoView{FilePath: removed.FilePath, WebViewPath: removed.WebViewPath}})
		},
	}
}

// outputJSON writes v as indented JSON to the app's writer.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	return cli.Exit(err.Error(), 1)
}
