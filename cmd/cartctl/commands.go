package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/fjod/yofoo_cart/internal/api"
	"github.com/fjod/yofoo_cart/internal/domain"
	cartgrpc "github.com/fjod/yofoo_cart/internal/grpc"
	"github.com/fjod/yofoo_cart/internal/outbox"
	"github.com/fjod/yofoo_cart/pkg/logger"
	"github.com/shopspring/decimal"
)

// MenuLookup finds restaurants on the backend.
type MenuLookup interface {
	GetRestaurant(ctx context.Context, restaurantID string) (*domain.Restaurant, error)
}

// CartClient is the part of the gRPC client the commands use.
type CartClient interface {
	AddItem(ctx context.Context, item domain.MenuItem, restaurantID string) (*cartgrpc.CartResponse, error)
	UpdateQuantity(ctx context.Context, itemID string, quantity int) (*cartgrpc.CartResponse, error)
}

func (a *app) add(ctx context.Context, client CartClient, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	restaurantID := fs.String("restaurant", "", "restaurant id")
	itemID := fs.String("item", "", "menu item id")
	name := fs.String("name", "", "item name, skips the backend lookup")
	price := fs.String("price", "", "item price, with -name")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *restaurantID == "" || *itemID == "" {
		return fmt.Errorf("%w: -restaurant and -item are required", errUsage)
	}

	var item domain.MenuItem
	if *name != "" {
		p, err := decimal.NewFromString(*price)
		if err != nil || p.IsNegative() {
			return fmt.Errorf("%w: -price must be a non-negative number", errUsage)
		}
		item = domain.MenuItem{ID: *itemID, Name: *name, Price: p, IsAvailable: true}
	} else {
		menu := api.NewClient(a.backendURL, api.WithTimeout(a.timeout), api.WithLogger(logger.Discard()))
		found, err := lookupItem(ctx, menu, *restaurantID, *itemID)
		if err != nil {
			return err
		}
		item = found
	}

	return a.print(client.AddItem(ctx, item, *restaurantID))
}

func lookupItem(ctx context.Context, menu MenuLookup, restaurantID, itemID string) (domain.MenuItem, error) {
	r, err := menu.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return domain.MenuItem{}, fmt.Errorf("load restaurant %s: %w", restaurantID, err)
	}
	if !r.IsOpen {
		return domain.MenuItem{}, fmt.Errorf("restaurant %s is closed", restaurantID)
	}
	item, ok := r.FindMenuItem(itemID)
	if !ok {
		return domain.MenuItem{}, fmt.Errorf("restaurant %s has no menu item %s", restaurantID, itemID)
	}
	if !item.IsAvailable {
		return domain.MenuItem{}, fmt.Errorf("%s is not available right now", item.Name)
	}
	return item, nil
}

func (a *app) quantity(ctx context.Context, client CartClient, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: quantity must be an integer", errUsage)
	}
	return a.print(client.UpdateQuantity(ctx, args[0], n))
}

// events prints every checkout event until interrupted.
func (a *app) events(ctx context.Context) error {
	var brokers []string
	for _, b := range strings.Split(a.brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return fmt.Errorf("%w: no kafka brokers", errUsage)
	}

	consumer := outbox.NewConsumer("cartctl-events", brokers...)
	defer consumer.Close()

	return consumer.Run(ctx, func(_ context.Context, m outbox.Message) error {
		_, err := fmt.Fprintf(a.out, "%d\t%s\t%s\t%s\n", m.Offset, m.EventType, m.Key, m.Payload)
		return err
	})
}
