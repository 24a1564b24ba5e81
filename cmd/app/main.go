package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/othala/internal"
	"github.com/starford/othala/internal/collection"
	"github.com/starford/othala/internal/hook"
	pkgconfig "github.com/starford/othala/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfPresent(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// openCollection opens an existing collection by name. It does not
// create the directory; use mkcol for that.
func openCollection(cfg *internal.Config, name string) (*collection.Collection, error) {
	logger := slog.Default()
	var opts []collection.Option
	if h := hook.NewCommand(cfg.Hook.Command, logger); h != nil {
		opts = append(opts, collection.WithHook(h))
	}
	path := filepath.Join(cfg.Storage.Base, name)
	return collection.Open(path, cfg.Storage.Fileext, cfg.Storage.Encoding, opts...)
}

// readInput returns the content of the --file flag, with "-" meaning
// stdin.
func readInput(cmd *cli.Command) (string, error) {
	name := cmd.String("file")
	if name == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func requireArgs(cmd *cli.Command, names ...string) ([]string, error) {
	if cmd.Args().Len() < len(names) {
		return nil, fmt.Errorf("usage: %s %s", cmd.Name, cmd.ArgsUsage)
	}
	return cmd.Args().Slice(), nil
}

var fileFlag = &cli.StringFlag{
	Name:    "file",
	Aliases: []string{"f"},
	Usage:   "Read item content from this file ('-' for stdin)",
	Value:   "-",
}

var etagFlag = &cli.StringFlag{
	Name:     "etag",
	Usage:    "Etag the on-disk item must currently carry",
	Required: true,
}

func mkcolCommand() *cli.Command {
	return &cli.Command{
		Name:      "mkcol",
		Usage:     "Create a collection directory if absent",
		ArgsUsage: "<collection>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			args, err := requireArgs(cmd, "collection")
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			path, err := collection.EnsureDir(cfg.Storage.Base, args[0])
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}

func discoverCommand() *cli.Command {
	return &cli.Command{
		Name:  "discover",
		Usage: "List every collection directory under the storage base",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			paths, err := collection.Discover(cfg.Storage.Base)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Println(p)
			}
			return nil
		},
	}
}

func putCommand() *cli.Command {
	return &cli.Command{
		Name:      "put",
		Usage:     "Store a new item; prints the assigned href and etag",
		ArgsUsage: "<collection> [ident]",
		Flags:     []cli.Flag{fileFlag},
		Action: func(_ context.Context, cmd *cli.Command) error {
			args, err := requireArgs(cmd, "collection")
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			col, err := openCollection(cfg, args[0])
			if err != nil {
				return err
			}
			raw, err := readInput(cmd)
			if err != nil {
				return err
			}
			ident := ""
			if len(args) > 1 {
				ident = args[1]
			}
			href, etag, err := col.Create(ident, collection.Item{Raw: raw})
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%s\n", href, etag)
			return nil
		},
	}
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Print an item's raw content",
		ArgsUsage: "<collection> <href>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			args, err := requireArgs(cmd, "collection", "href")
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			col, err := openCollection(cfg, args[0])
			if err != nil {
				return err
			}
			item, _, err := col.Get(args[1])
			if err != nil {
				return err
			}
			fmt.Print(item.Raw)
			return nil
		},
	}
}

func etagCommand() *cli.Command {
	return &cli.Command{
		Name:      "etag",
		Usage:     "Print an item's current etag",
		ArgsUsage: "<collection> <href>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			args, err := requireArgs(cmd, "collection", "href")
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			col, err := openCollection(cfg, args[0])
			if err != nil {
				return err
			}
			etag, err := col.Etag(args[1])
			if err != nil {
				return err
			}
			fmt.Println(etag)
			return nil
		},
	}
}

func lsCommand() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List item hrefs and etags",
		ArgsUsage: "<collection>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			args, err := requireArgs(cmd, "collection")
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			col, err := openCollection(cfg, args[0])
			if err != nil {
				return err
			}
			refs, err := col.List()
			if err != nil {
				return err
			}
			for _, ref := range refs {
				fmt.Printf("%s\t%s\n", ref.Href, ref.Etag)
			}
			return nil
		},
	}
}

func updateCommand() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Overwrite an existing item under an etag guard; prints the new etag",
		ArgsUsage: "<collection> <href>",
		Flags:     []cli.Flag{fileFlag, etagFlag},
		Action: func(_ context.Context, cmd *cli.Command) error {
			args, err := requireArgs(cmd, "collection", "href")
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			col, err := openCollection(cfg, args[0])
			if err != nil {
				return err
			}
			raw, err := readInput(cmd)
			if err != nil {
				return err
			}
			etag, err := col.Update(args[1], collection.Item{Raw: raw}, cmd.String("etag"))
			if err != nil {
				return err
			}
			fmt.Println(etag)
			return nil
		},
	}
}

func rmCommand() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete an item under an etag guard",
		ArgsUsage: "<collection> <href>",
		Flags:     []cli.Flag{etagFlag},
		Action: func(_ context.Context, cmd *cli.Command) error {
			args, err := requireArgs(cmd, "collection", "href")
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			col, err := openCollection(cfg, args[0])
			if err != nil {
				return err
			}
			return col.Delete(args[1], cmd.String("etag"))
		},
	}
}

func metaCommand() *cli.Command {
	return &cli.Command{
		Name:  "meta",
		Usage: "Read or write collection metadata values",
		Commands: []*cli.Command{
			{
				Name:      "get",
				ArgsUsage: "<collection> <key>",
				Action: func(_ context.Context, cmd *cli.Command) error {
					args, err := requireArgs(cmd, "collection", "key")
					if err != nil {
						return err
					}
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					col, err := openCollection(cfg, args[0])
					if err != nil {
						return err
					}
					value, ok, err := col.GetMeta(args[1])
					if err != nil {
						return err
					}
					if ok {
						fmt.Println(value)
					}
					return nil
				},
			},
			{
				Name:      "set",
				ArgsUsage: "<collection> <key> <value>",
				Action: func(_ context.Context, cmd *cli.Command) error {
					args, err := requireArgs(cmd, "collection", "key", "value")
					if err != nil {
						return err
					}
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					col, err := openCollection(cfg, args[0])
					if err != nil {
						return err
					}
					return col.SetMeta(args[1], args[2])
				},
			},
		},
	}
}

func displaynameCommand() *cli.Command {
	return &cli.Command{
		Name:  "displayname",
		Usage: "Read or write the collection display name",
		Commands: []*cli.Command{
			{
				Name:      "get",
				ArgsUsage: "<collection>",
				Action: func(_ context.Context, cmd *cli.Command) error {
					args, err := requireArgs(cmd, "collection")
					if err != nil {
						return err
					}
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					col, err := openCollection(cfg, args[0])
					if err != nil {
						return err
					}
					name, ok, err := collection.DisplayName{Store: col}.Get()
					if err != nil {
						return err
					}
					if ok {
						fmt.Println(name)
					}
					return nil
				},
			},
			{
				Name:      "set",
				ArgsUsage: "<collection> <name>",
				Action: func(_ context.Context, cmd *cli.Command) error {
					args, err := requireArgs(cmd, "collection", "name")
					if err != nil {
						return err
					}
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					col, err := openCollection(cfg, args[0])
					if err != nil {
						return err
					}
					return collection.DisplayName{Store: col}.Set(args[1])
				},
			},
		},
	}
}

func colorCommand() *cli.Command {
	return &cli.Command{
		Name:  "color",
		Usage: "Read or write the collection color (#RRGGBB)",
		Commands: []*cli.Command{
			{
				Name:      "get",
				ArgsUsage: "<collection>",
				Action: func(_ context.Context, cmd *cli.Command) error {
					args, err := requireArgs(cmd, "collection")
					if err != nil {
						return err
					}
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					col, err := openCollection(cfg, args[0])
					if err != nil {
						return err
					}
					color, ok, err := collection.ColorSetting{Store: col}.Get()
					if err != nil {
						return err
					}
					if ok {
						fmt.Println(string(color))
					}
					return nil
				},
			},
			{
				Name:      "set",
				ArgsUsage: "<collection> <color>",
				Action: func(_ context.Context, cmd *cli.Command) error {
					args, err := requireArgs(cmd, "collection", "color")
					if err != nil {
						return err
					}
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					col, err := openCollection(cfg, args[0])
					if err != nil {
						return err
					}
					return collection.ColorSetting{Store: col}.Set(args[1])
				},
			},
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Stream collection change events as JSON lines",
		ArgsUsage: "<collection>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args, err := requireArgs(cmd, "collection")
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return internal.Run(ctx,
				internal.WithConfig(cfg),
				internal.WithCollection(args[0]),
			)
		},
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "othala",
		Usage: "File-per-item collection storage with etag-guarded atomic writes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			mkcolCommand(),
			discoverCommand(),
			putCommand(),
			getCommand(),
			etagCommand(),
			lsCommand(),
			updateCommand(),
			rmCommand(),
			metaCommand(),
			displaynameCommand(),
			colorCommand(),
			watchCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("command error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
