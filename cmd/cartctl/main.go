package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	cartgrpc "github.com/fjod/yofoo_cart/internal/grpc"
)

const usage = `usage: cartctl [flags] <command> [args]

commands:
  cart                          show the cart and bill
  add -restaurant R -item I     add a menu item, looked up on the backend
  add -restaurant R -item I -name N -price P
                                add an item without a backend lookup
  qty ITEM N                    set a line's quantity (0 removes it)
  remove ITEM                   remove a line
  clear                         empty the cart
  health                        check the cart service
  events                        tail checkout events from kafka

flags:
`

var errUsage = errors.New("invalid usage")

type app struct {
	addr       string
	backendURL string
	brokers    string
	timeout    time.Duration
	out        io.Writer
}

func main() {
	a := &app{out: os.Stdout}

	fs := flag.NewFlagSet("cartctl", flag.ContinueOnError)
	fs.StringVar(&a.addr, "addr", getEnv("CARTD_ADDR", "localhost:50052"), "cart service gRPC address")
	fs.StringVar(&a.backendURL, "backend", getEnv("BACKEND_URL", "http://localhost:3000"), "REST backend for menu lookups")
	fs.StringVar(&a.brokers, "brokers", getEnv("KAFKA_BROKERS", "localhost:9092"), "comma separated kafka brokers")
	fs.DurationVar(&a.timeout, "timeout", 10*time.Second, "per-call timeout")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx, fs.Args()); err != nil {
		if errors.Is(err, errUsage) {
			fs.Usage()
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "cartctl: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]

	if cmd == "events" {
		return a.events(ctx)
	}

	client, err := cartgrpc.NewClient(a.addr)
	if err != nil {
		return err
	}
	defer client.Close()

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	switch cmd {
	case "cart":
		return a.print(client.GetCart(callCtx))
	case "add":
		return a.add(callCtx, client, rest)
	case "qty":
		return a.quantity(callCtx, client, rest)
	case "remove":
		if len(rest) != 1 {
			return errUsage
		}
		return a.print(client.RemoveItem(callCtx, rest[0]))
	case "clear":
		return a.print(client.ClearCart(callCtx))
	case "health":
		ok, err := client.Healthy(callCtx)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("cart service is not serving")
		}
		fmt.Fprintln(a.out, "SERVING")
		return nil
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

func (a *app) print(resp *cartgrpc.CartResponse, err error) error {
	if err != nil {
		return err
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
