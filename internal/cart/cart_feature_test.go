package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	"github.com/fjod/yofoo_cart/internal/domain"
	"github.com/fjod/yofoo_cart/internal/storage"
	"github.com/fjod/yofoo_cart/pkg/logger"
	"github.com/shopspring/decimal"
)

type cartTestContext struct {
	backend *storage.Memory
	store   *CartStore
}

func (c *cartTestContext) reset() {
	if c.store != nil {
		_ = c.store.Close(context.Background())
	}
	c.backend = storage.NewMemory()
	c.store = NewCartStore(c.backend, logger.Discard())
}

func (c *cartTestContext) anEmptyCart() error {
	if !c.store.Snapshot().IsEmpty() {
		return fmt.Errorf("expected empty cart")
	}
	return nil
}

func (c *cartTestContext) iAddItemPricedFromRestaurant(id, price, restaurantID string) error {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	c.store.AddItem(domain.MenuItem{ID: id, Name: id, Price: p}, restaurantID)
	return nil
}

func (c *cartTestContext) iSetTheQuantityOfTo(id string, quantity int) error {
	c.store.UpdateQuantity(id, quantity)
	return nil
}

func (c *cartTestContext) iRemoveItem(id string) error {
	c.store.RemoveItem(id)
	return nil
}

func (c *cartTestContext) iClearTheCart() error {
	c.store.ClearCart()
	return nil
}

func (c *cartTestContext) theAppRestarts() error {
	if err := c.store.Close(context.Background()); err != nil {
		return err
	}
	c.store = NewCartStore(c.backend, logger.Discard())
	c.store.Load(context.Background())
	return nil
}

func (c *cartTestContext) theCartHasLines(n int) error {
	if got := len(c.store.Snapshot().Lines); got != n {
		return fmt.Errorf("expected %d lines, got %d", n, got)
	}
	return nil
}

func (c *cartTestContext) lineHasQuantity(id string, quantity int) error {
	l, idx := c.store.Snapshot().Line(id)
	if idx < 0 {
		return fmt.Errorf("line %q not in cart", id)
	}
	if l.Quantity != quantity {
		return fmt.Errorf("expected quantity %d for %q, got %d", quantity, id, l.Quantity)
	}
	return nil
}

func (c *cartTestContext) theCartTotalIs(total string) error {
	want, err := decimal.NewFromString(total)
	if err != nil {
		return err
	}
	snap := c.store.Snapshot()
	if !snap.TotalAmount.Equal(want) {
		return fmt.Errorf("expected total %s, got %s", want, snap.TotalAmount)
	}
	if !snap.TotalAmount.Equal(snap.ComputeTotal()) {
		return fmt.Errorf("total %s drifted from lines %s", snap.TotalAmount, snap.ComputeTotal())
	}
	return nil
}

func (c *cartTestContext) theCartBelongsToRestaurant(id string) error {
	if got := c.store.Snapshot().RestaurantID; got != id {
		return fmt.Errorf("expected restaurant %q, got %q", id, got)
	}
	return nil
}

func (c *cartTestContext) theCartIsEmpty() error {
	if !c.store.Snapshot().IsEmpty() {
		return fmt.Errorf("expected empty cart, got %d lines", len(c.store.Snapshot().Lines))
	}
	return nil
}

func (c *cartTestContext) theCartHasNoRestaurant() error {
	return c.theCartBelongsToRestaurant("")
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^an empty cart$`, tc.anEmptyCart)

	// When steps
	ctx.Step(`^I add item "([^"]*)" priced ([\d.]+) from restaurant "([^"]*)"$`, tc.iAddItemPricedFromRestaurant)
	ctx.Step(`^I set the quantity of "([^"]*)" to (-?\d+)$`, tc.iSetTheQuantityOfTo)
	ctx.Step(`^I remove item "([^"]*)"$`, tc.iRemoveItem)
	ctx.Step(`^I clear the cart$`, tc.iClearTheCart)
	ctx.Step(`^the app restarts$`, tc.theAppRestarts)

	// Then steps
	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^line "([^"]*)" has quantity (\d+)$`, tc.lineHasQuantity)
	ctx.Step(`^the cart total is ([\d.]+)$`, tc.theCartTotalIs)
	ctx.Step(`^the cart belongs to restaurant "([^"]*)"$`, tc.theCartBelongsToRestaurant)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^the cart has no restaurant$`, tc.theCartHasNoRestaurant)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/cart.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
