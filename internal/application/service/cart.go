package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos/pkg/apperror"
)

// CartLine is one product and how many units of it are wanted.
type CartLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// Cart is an ordered list of lines with at most one line per product.
// Mutations check the requested quantity against the stock the caller says
// is available; checkout checks again because that figure goes stale.
type Cart struct {
	lines []CartLine
}

// NewCart builds a cart from lines, merging repeated products and keeping
// the order of first appearance.
func NewCart(lines ...CartLine) (*Cart, error) {
	c := &Cart{}
	var errs []apperror.FieldError
	for i, l := range lines {
		if l.ProductID == uuid.Nil {
			errs = append(errs, apperror.FieldError{Field: fmt.Sprintf("lines[%d].product_id", i), Message: "Product is required"})
			continue
		}
		if l.Quantity <= 0 {
			errs = append(errs, apperror.FieldError{Field: fmt.Sprintf("lines[%d].quantity", i), Message: "Quantity must be greater than zero"})
			continue
		}
		if idx := c.index(l.ProductID); idx >= 0 {
			c.lines[idx].Quantity += l.Quantity
		} else {
			c.lines = append(c.lines, l)
		}
	}
	if len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}
	return c, nil
}

// Add merges qty into the product's line, creating it when absent.
func (c *Cart) Add(productID uuid.UUID, qty, available int) error {
	if qty <= 0 {
		return apperror.NewFieldError("quantity", "Quantity must be greater than zero")
	}
	want := qty
	idx := c.index(productID)
	if idx >= 0 {
		want += c.lines[idx].Quantity
	}
	if err := checkAvailable(want, available); err != nil {
		return err
	}
	if idx >= 0 {
		c.lines[idx].Quantity = want
	} else {
		c.lines = append(c.lines, CartLine{ProductID: productID, Quantity: want})
	}
	return nil
}

// Set replaces the quantity of an existing line. Zero removes it.
func (c *Cart) Set(productID uuid.UUID, qty, available int) error {
	idx := c.index(productID)
	if idx < 0 {
		return apperror.NewNotFoundError("Cart line")
	}
	if qty < 0 {
		return apperror.NewFieldError("quantity", "Quantity cannot be negative")
	}
	if qty == 0 {
		c.Remove(productID)
		return nil
	}
	if err := checkAvailable(qty, available); err != nil {
		return err
	}
	c.lines[idx].Quantity = qty
	return nil
}

// Remove drops the product's line if present.
func (c *Cart) Remove(productID uuid.UUID) {
	if idx := c.index(productID); idx >= 0 {
		c.lines = append(c.lines[:idx], c.lines[idx+1:]...)
	}
}

// Lines returns a copy of the lines in order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Quantity is how many units of productID the cart holds.
func (c *Cart) Quantity(productID uuid.UUID) int {
	if idx := c.index(productID); idx >= 0 {
		return c.lines[idx].Quantity
	}
	return 0
}

// ProductIDs lists the products in cart order.
func (c *Cart) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.lines))
	for i, l := range c.lines {
		ids[i] = l.ProductID
	}
	return ids
}

func (c *Cart) index(productID uuid.UUID) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func checkAvailable(want, available int) error {
	if want > available {
		return apperror.NewValidationError([]apperror.FieldError{{
			Field:   "quantity",
			Message: fmt.Sprintf("Only %d in stock", available),
		}})
	}
	return nil
}
