package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/unischedule/dashboard/internal/adapters/rest"
	"github.com/unischedule/dashboard/internal/core/domain"
	"github.com/unischedule/dashboard/internal/core/services"
)

var (
	isTerminalFunc = term.IsTerminal // mockable
	readFileFunc   = os.ReadFile     // mockable

	errHelp        = errors.New("help provided")
	errNotTerminal = cliError("stdin is not a terminal, pass -confirm with the confirmation keyword")
)

// cliError is a local failure shown to the operator as is.
type cliError string

func (e cliError) Error() string       { return string(e) }
func (e cliError) UserMessage() string { return string(e) }

const commandTimeout = 30 * time.Second

type commandLine struct {
	client    *rest.Client
	resources map[string]resource
	keyword   string

	in      io.Reader
	out     io.Writer
	stdinFd int
}

func newCommandLine(client *rest.Client, opts services.Options) *commandLine {
	keyword := opts.Keyword
	if keyword == "" {
		keyword = services.DefaultConfirmKeyword
	}
	return &commandLine{
		client:    client,
		resources: newResources(client, opts),
		keyword:   keyword,
		in:        os.Stdin,
		out:       os.Stdout,
		stdinFd:   int(os.Stdin.Fd()),
	}
}

func (cli *commandLine) printUsage() {
	names := make([]string, 0, len(cli.resources))
	for name := range cli.resources {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  list -resource R [-q TEXT] [-filter KEY=VALUE]...  - list records")
	fmt.Fprintln(cli.out, "  create -resource R -file FILE                     - create a record from JSON")
	fmt.Fprintln(cli.out, "  update -resource R -id ID -file FILE              - replace a record")
	fmt.Fprintln(cli.out, "  delete -resource R -id ID [-confirm KEYWORD]      - delete a record")
	fmt.Fprintln(cli.out, "  health                                            - check the scheduling API")
	fmt.Fprintf(cli.out, "Resources: %s\n", strings.Join(names, ", "))
}

// filterFlags collects repeated -filter key=value pairs.
type filterFlags map[string]string

func (f filterFlags) String() string {
	pairs := make([]string, 0, len(f))
	for k, v := range f {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func (f filterFlags) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return fmt.Errorf("filter %q must be of form KEY=VALUE", value)
	}
	f[strings.TrimSpace(key)] = val
	return nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	listCmd := flag.NewFlagSet("list", flag.ContinueOnError)
	listRes := listCmd.String("resource", "", "The resource to list.")
	listSearch := listCmd.String("q", "", "Case-insensitive text search.")
	listFilters := filterFlags{}
	listCmd.Var(listFilters, "filter", "Exact field filter KEY=VALUE, repeatable.")

	createCmd := flag.NewFlagSet("create", flag.ContinueOnError)
	createRes := createCmd.String("resource", "", "The resource to create.")
	createFile := createCmd.String("file", "", "JSON file holding the new record.")

	updateCmd := flag.NewFlagSet("update", flag.ContinueOnError)
	updateRes := updateCmd.String("resource", "", "The resource to update.")
	updateID := updateCmd.String("id", "", "The record id.")
	updateFile := updateCmd.String("file", "", "JSON file holding the full record.")

	deleteCmd := flag.NewFlagSet("delete", flag.ContinueOnError)
	deleteRes := deleteCmd.String("resource", "", "The resource to delete from.")
	deleteID := deleteCmd.String("id", "", "The record id.")
	deleteConfirm := deleteCmd.String("confirm", "", "The confirmation keyword. Prompted for when omitted.")

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch args[1] {
	case "list":
		if err := listCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		res, err := cli.resource(listCmd, *listRes)
		if err != nil {
			return err
		}
		return res.list(ctx, cli.out, *listSearch, listFilters)

	case "create":
		if err := createCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		res, err := cli.resource(createCmd, *createRes)
		if err != nil {
			return err
		}
		if *createFile == "" {
			createCmd.Usage()
			return errHelp
		}
		payload, err := readFileFunc(*createFile)
		if err != nil {
			return cliError(err.Error())
		}
		return cli.report(res.create(ctx, cli.out, payload))

	case "update":
		if err := updateCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		res, err := cli.resource(updateCmd, *updateRes)
		if err != nil {
			return err
		}
		if *updateID == "" || *updateFile == "" {
			updateCmd.Usage()
			return errHelp
		}
		payload, err := readFileFunc(*updateFile)
		if err != nil {
			return cliError(err.Error())
		}
		return cli.report(res.update(ctx, cli.out, domain.NewID(*updateID), payload))

	case "delete":
		if err := deleteCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		res, err := cli.resource(deleteCmd, *deleteRes)
		if err != nil {
			return err
		}
		if *deleteID == "" {
			deleteCmd.Usage()
			return errHelp
		}
		return cli.delete(ctx, res, domain.NewID(*deleteID), *deleteConfirm)

	case "health":
		if err := cli.client.Health(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "scheduling API: UP")
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) resource(fs *flag.FlagSet, name string) (resource, error) {
	if name == "" {
		fs.Usage()
		return nil, errHelp
	}
	res, ok := cli.resources[name]
	if !ok {
		return nil, cliError(fmt.Sprintf("unknown resource %q", name))
	}
	return res, nil
}

// delete loads the collection, then runs the confirmation gate with the
// keyword from -confirm or from an interactive prompt.
func (cli *commandLine) delete(ctx context.Context, res resource, id domain.ID, typed string) error {
	if res.readOnly() {
		return services.ErrReadOnly
	}
	if err := res.load(ctx); err != nil {
		return err
	}
	if typed == "" {
		if !isTerminalFunc(cli.stdinFd) {
			return errNotTerminal
		}
		fmt.Fprintf(cli.out, "Type %q to delete %s %s: ", cli.keyword, res.name(), id)
		line, err := bufio.NewReader(cli.in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		typed = strings.TrimRight(line, "\r\n")
	}
	if err := res.confirmDelete(ctx, id, typed); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "deleted %s %s\n", res.name(), id)
	return nil
}

// report prints each invalid field before returning a validation error.
func (cli *commandLine) report(err error) error {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			fmt.Fprintf(cli.out, "  %s: %s\n", f.Field, f.Error)
		}
	}
	return err
}
