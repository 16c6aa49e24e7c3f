package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ruteri/ssh-key-server/api/keyhandler"
	"github.com/ruteri/ssh-key-server/cmd/flags"
	"github.com/ruteri/ssh-key-server/interfaces"
	"github.com/urfave/cli/v2"
)

func newClient(cCtx *cli.Context) *keyhandler.Client {
	return keyhandler.NewClient(cCtx.String(flags.ServerURLFlag.Name), cCtx.Duration(flags.TimeoutFlag.Name))
}

// keyTypeArg normalizes a key type given on the command line.
func keyTypeArg(arg string) (string, error) {
	kt, ok := interfaces.ParseKeyType(arg)
	if !ok {
		return "", fmt.Errorf("unsupported key type %q, expected one of %v", arg, interfaces.SupportedKeyTypes)
	}
	return kt.String(), nil
}

func readKeyFile(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func main() {
	app := &cli.App{
		Name:  "keyctl",
		Usage: "manage keys on an SSH key server",
		Flags: []cli.Flag{
			flags.ServerURLFlag,
			flags.TimeoutFlag,
		},
		DefaultCommand: "list",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "list hosts, users of a host, or key types of a user",
				ArgsUsage: "[host [user]]",
				Action: func(cCtx *cli.Context) error {
					client := newClient(cCtx)
					args := cCtx.Args()

					var names []string
					var err error
					switch args.Len() {
					case 0:
						names, err = client.ListHosts(cCtx.Context)
					case 1:
						names, err = client.ListUsers(cCtx.Context, args.Get(0))
					case 2:
						names, err = client.ListKeyTypes(cCtx.Context, args.Get(0), args.Get(1))
					default:
						return cli.ShowSubcommandHelp(cCtx)
					}
					if err != nil {
						return err
					}

					for _, name := range names {
						fmt.Println(name)
					}
					return nil
				},
			},
			{
				Name:      "get",
				Usage:     "print a stored key",
				ArgsUsage: "<host> <user> <type>",
				Action: func(cCtx *cli.Context) error {
					if cCtx.Args().Len() != 3 {
						return cli.ShowSubcommandHelp(cCtx)
					}
					kt, err := keyTypeArg(cCtx.Args().Get(2))
					if err != nil {
						return err
					}

					key, err := newClient(cCtx).GetKey(cCtx.Context, cCtx.Args().Get(0), cCtx.Args().Get(1), kt)
					if err != nil {
						return err
					}
					_, err = os.Stdout.Write(key)
					return err
				},
			},
			{
				Name:      "add",
				Usage:     "upload a new key, or replace the existing one with --replace",
				ArgsUsage: "<host> <user> <keyfile|->",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "replace",
						Usage: "replace an existing key of the same type",
					},
				},
				Action: func(cCtx *cli.Context) error {
					if cCtx.Args().Len() != 3 {
						return cli.ShowSubcommandHelp(cCtx)
					}
					host, user := cCtx.Args().Get(0), cCtx.Args().Get(1)

					key, err := readKeyFile(cCtx.Args().Get(2))
					if err != nil {
						return fmt.Errorf("could not read key: %w", err)
					}

					client := newClient(cCtx)
					var kt interfaces.KeyType
					if cCtx.Bool("replace") {
						kt, err = client.ReplaceKey(cCtx.Context, host, user, key)
					} else {
						kt, err = client.CreateKey(cCtx.Context, host, user, key)
					}
					if errors.Is(err, interfaces.ErrConflict) {
						return fmt.Errorf("%w (use --replace)", err)
					}
					if err != nil {
						return err
					}

					fmt.Printf("stored %s key for %s on %s\n", kt, user, host)
					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "delete a key",
				ArgsUsage: "<host> <user> <type>",
				Action: func(cCtx *cli.Context) error {
					if cCtx.Args().Len() != 3 {
						return cli.ShowSubcommandHelp(cCtx)
					}
					kt, err := keyTypeArg(cCtx.Args().Get(2))
					if err != nil {
						return err
					}

					if err := newClient(cCtx).DeleteKey(cCtx.Context, cCtx.Args().Get(0), cCtx.Args().Get(1), kt); err != nil {
						return err
					}
					fmt.Printf("deleted %s key of %s on %s\n", kt, cCtx.Args().Get(1), cCtx.Args().Get(0))
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
