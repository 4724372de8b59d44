package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/vitalvas/rentdynamics/client"
	"github.com/vitalvas/rentdynamics/payload"
	"github.com/vitalvas/rentdynamics/query"
	"github.com/vitalvas/rentdynamics/rdsig"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "get":
		return cmdGet(args[1:], out, errOut)
	case "post", "put":
		return cmdWrite(args[0], args[1:], out, errOut)
	case "delete":
		return cmdDelete(args[1:], out, errOut)
	case "login":
		return cmdLogin(args[1:], out, errOut)
	case "query":
		return cmdQuery(args[1:], out, errOut)
	case "nonce":
		return cmdNonce(args[1:], out, errOut)
	case "password":
		return cmdPassword(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "rdctl: signed Rent Dynamics API calls")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  rdctl get [connection flags] [query flags] <endpoint>")
	fmt.Fprintln(w, "  rdctl post|put [connection flags] --data <json|@file> <endpoint>")
	fmt.Fprintln(w, "  rdctl delete [connection flags] <endpoint>")
	fmt.Fprintln(w, "  rdctl login [connection flags] --username <name> --password <pw>")
	fmt.Fprintln(w, "  rdctl query [query flags]")
	fmt.Fprintln(w, "  rdctl nonce --secret <key> --url <endpoint> [--timestamp <ms>] [--data <json|@file>]")
	fmt.Fprintln(w, "  rdctl password <password>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Connection flags:")
	fmt.Fprintln(w, "  --config <file>  YAML config (${VAR} expanded from the environment)")
	fmt.Fprintln(w, "  --api-key, --api-secret, --token, --base-url, --dev, --verbose")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Query flags:")
	fmt.Fprintln(w, "  --filter key=value   repeatable; dotted keys nest (unit.floor=2)")
	fmt.Fprintln(w, "  --in key=a,b,c       repeatable; list filter sent as key__in")
	fmt.Fprintln(w, "  --include, --exclude, --fields <a,b>  --order-by <f>  --page <n>  --page-size <n>  --distinct")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - the response body is written to stdout, the status to stderr")
	fmt.Fprintln(w, "  - exit status is 1 for responses with status 400 and above")
	fmt.Fprintln(w, "  - login prints the auth token for use with --token")
}

// listFlag collects repeated flag values.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type connFlags struct {
	config    string
	apiKey    string
	apiSecret string
	token     string
	baseURL   string
	dev       bool
	verbose   bool
}

func (c *connFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.config, "config", "", "YAML config file")
	fs.StringVar(&c.apiKey, "api-key", "", "API key (overrides config)")
	fs.StringVar(&c.apiSecret, "api-secret", "", "API secret key (overrides config)")
	fs.StringVar(&c.token, "token", "", "auth token (overrides config)")
	fs.StringVar(&c.baseURL, "base-url", "", "API base URL override")
	fs.BoolVar(&c.dev, "dev", false, "use the development API")
	fs.BoolVar(&c.verbose, "verbose", false, "log requests to stderr")
}

func (c *connFlags) client(errOut io.Writer) (*client.Client, error) {
	var cfg client.Config

	if c.config != "" {
		loaded, err := client.LoadConfig(c.config)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	if c.apiKey != "" {
		cfg.APIKey = c.apiKey
	}

	if c.apiSecret != "" {
		cfg.APISecretKey = c.apiSecret
	}

	if c.token != "" {
		cfg.AuthToken = c.token
	}

	if c.dev {
		cfg.Development = true
	}

	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}

	opts := []client.Option{
		client.WithLogger(slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))),
		client.WithRequestIDHeader("X-Request-ID"),
	}

	if c.baseURL != "" {
		opts = append(opts, client.WithBaseURL(c.baseURL))
	}

	return client.New(cfg, opts...)
}

type queryFlags struct {
	filters  listFlag
	in       listFlag
	include  string
	exclude  string
	fields   string
	orderBy  string
	page     int
	pageSize int
	distinct bool
}

func (q *queryFlags) register(fs *flag.FlagSet) {
	fs.Var(&q.filters, "filter", "filter key=value (repeatable)")
	fs.Var(&q.in, "in", "list filter key=a,b (repeatable)")
	fs.StringVar(&q.include, "include", "", "comma-separated relations to include")
	fs.StringVar(&q.exclude, "exclude", "", "comma-separated fields to exclude")
	fs.StringVar(&q.fields, "fields", "", "comma-separated fields to return")
	fs.StringVar(&q.orderBy, "order-by", "", "sort field")
	fs.IntVar(&q.page, "page", 0, "page number")
	fs.IntVar(&q.pageSize, "page-size", 0, "page size")
	fs.BoolVar(&q.distinct, "distinct", false, "distinct results")
}

func (q *queryFlags) options() (query.Options, error) {
	opts := query.Options{
		Include:  splitList(q.include),
		Exclude:  splitList(q.exclude),
		Fields:   splitList(q.fields),
		OrderBy:  q.orderBy,
		Page:     q.page,
		PageSize: q.pageSize,
		Distinct: q.distinct,
	}

	filters := query.Filters{}

	for _, f := range q.filters {
		key, value, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return query.Options{}, fmt.Errorf("invalid --filter %q: want key=value", f)
		}

		if err := setFilter(filters, strings.Split(key, "."), value); err != nil {
			return query.Options{}, err
		}
	}

	for _, f := range q.in {
		key, value, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return query.Options{}, fmt.Errorf("invalid --in %q: want key=a,b", f)
		}

		if err := setFilter(filters, strings.Split(key, "."), splitList(value)); err != nil {
			return query.Options{}, err
		}
	}

	if len(filters) > 0 {
		opts.Filters = filters
	}

	return opts, nil
}

func setFilter(filters query.Filters, path []string, value any) error {
	key := path[0]

	if len(path) == 1 {
		if _, exists := filters[key]; exists {
			return fmt.Errorf("duplicate filter %q", key)
		}

		filters[key] = value

		return nil
	}

	next, ok := filters[key].(query.Filters)
	if !ok {
		if _, exists := filters[key]; exists {
			return fmt.Errorf("filter %q is both a value and a group", key)
		}

		next = query.Filters{}
		filters[key] = next
	}

	return setFilter(next, path[1:], value)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}

	return strings.Split(s, ",")
}

// readData returns the JSON given inline or, with a leading '@', read
// from a file. Key order is preserved for the wire body.
func readData(data string) (payload.Value, error) {
	raw := []byte(data)

	if name, ok := strings.CutPrefix(data, "@"); ok {
		b, err := os.ReadFile(name)
		if err != nil {
			return payload.Value{}, err
		}

		raw = b
	}

	return payload.Parse(raw)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func writeResponse(resp *http.Response, out io.Writer, errOut io.Writer) int {
	defer resp.Body.Close()

	fmt.Fprintln(errOut, resp.Status)

	if _, err := io.Copy(out, resp.Body); err != nil {
		fmt.Fprintf(errOut, "read response: %v\n", err)
		return 1
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return 1
	}

	return 0
}

func cmdGet(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var conn connFlags
	var q queryFlags
	conn.register(fs)
	q.register(fs)

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: rdctl get [flags] <endpoint>")
		return 2
	}

	opts, err := q.options()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	c, err := conn.client(errOut)
	if err != nil {
		fmt.Fprintf(errOut, "config: %v\n", err)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()

	resp, err := c.Get(ctx, fs.Arg(0), opts)
	if err != nil {
		fmt.Fprintf(errOut, "get: %v\n", err)
		return 1
	}

	return writeResponse(resp, out, errOut)
}

func cmdWrite(method string, args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet(method, flag.ContinueOnError)
	fs.SetOutput(errOut)

	var conn connFlags
	var data string
	conn.register(fs)
	fs.StringVar(&data, "data", "", "JSON body, or @file")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 || data == "" {
		fmt.Fprintf(errOut, "usage: rdctl %s [flags] --data <json|@file> <endpoint>\n", method)
		return 2
	}

	body, err := readData(data)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --data: %v\n", err)
		return 2
	}

	c, err := conn.client(errOut)
	if err != nil {
		fmt.Fprintf(errOut, "config: %v\n", err)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()

	var resp *http.Response
	if method == "put" {
		resp, err = c.Put(ctx, fs.Arg(0), body)
	} else {
		resp, err = c.Post(ctx, fs.Arg(0), body)
	}

	if err != nil {
		fmt.Fprintf(errOut, "%s: %v\n", method, err)
		return 1
	}

	return writeResponse(resp, out, errOut)
}

func cmdDelete(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var conn connFlags
	conn.register(fs)

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: rdctl delete [flags] <endpoint>")
		return 2
	}

	c, err := conn.client(errOut)
	if err != nil {
		fmt.Fprintf(errOut, "config: %v\n", err)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()

	resp, err := c.Delete(ctx, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "delete: %v\n", err)
		return 1
	}

	return writeResponse(resp, out, errOut)
}

func cmdLogin(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var conn connFlags
	var username, password string
	conn.register(fs)
	fs.StringVar(&username, "username", "", "account user name")
	fs.StringVar(&password, "password", "", "account password (plain text, digested before sending)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if username == "" || password == "" {
		fmt.Fprintln(errOut, "usage: rdctl login [flags] --username <name> --password <pw>")
		return 2
	}

	c, err := conn.client(errOut)
	if err != nil {
		fmt.Fprintf(errOut, "config: %v\n", err)
		return 1
	}

	ctx, cancel := signalContext()
	defer cancel()

	resp, err := c.Login(ctx, username, password)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}

		fmt.Fprintf(errOut, "login: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fmt.Fprintf(errOut, "login: %s\n", resp.Status)
		return 1
	}

	fmt.Fprintln(out, c.AuthToken())

	return 0
}

func cmdQuery(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var q queryFlags
	q.register(fs)

	if err := fs.Parse(args); err != nil {
		return 2
	}

	opts, err := q.options()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	fmt.Fprintln(out, query.Stringify(opts))

	return 0
}

func cmdNonce(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("nonce", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var secret, endpoint, data string
	var timestamp int64
	fs.StringVar(&secret, "secret", "", "API secret key")
	fs.StringVar(&endpoint, "url", "", "endpoint with query string")
	fs.Int64Var(&timestamp, "timestamp", 0, "milliseconds since the epoch (default now)")
	fs.StringVar(&data, "data", "", "JSON payload, or @file")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if secret == "" || endpoint == "" {
		fmt.Fprintln(errOut, "usage: rdctl nonce --secret <key> --url <endpoint> [--timestamp <ms>] [--data <json|@file>]")
		return 2
	}

	if timestamp == 0 {
		timestamp = time.Now().UnixMilli()
	}

	var payloadJSON []byte
	if data != "" {
		body, err := readData(data)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --data: %v\n", err)
			return 2
		}

		payloadJSON, err = payload.CanonicalJSON(body)
		if err != nil {
			fmt.Fprintf(errOut, "canonicalize: %v\n", err)
			return 1
		}
	}

	signer, err := rdsig.NewSigner(rdsig.SignerConfig{
		Credentials: rdsig.StaticCredentials{APISecretKey: secret},
	})
	if err != nil {
		fmt.Fprintf(errOut, "signer: %v\n", err)
		return 1
	}

	nonce, err := signer.Nonce(context.Background(), timestamp, endpoint, payloadJSON)
	if err != nil {
		fmt.Fprintf(errOut, "nonce: %v\n", err)
		return 1
	}

	fmt.Fprintf(out, "%s: %s\n", rdsig.HeaderTimestamp, strconv.FormatInt(timestamp, 10))
	fmt.Fprintf(out, "%s: %s\n", rdsig.HeaderAPINonce, nonce)

	return 0
}

func cmdPassword(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "usage: rdctl password <password>")
		return 2
	}

	digest, err := rdsig.EncryptPassword(context.Background(), rdsig.SHA1{}, args[0])
	if err != nil {
		fmt.Fprintf(errOut, "password: %v\n", err)
		return 1
	}

	fmt.Fprintln(out, digest)

	return 0
}
