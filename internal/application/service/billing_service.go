package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/retailpos/internal/domain/entity"
	"github.com/sangkips/retailpos/internal/domain/enum"
	"github.com/sangkips/retailpos/internal/domain/repository"
	"github.com/sangkips/retailpos/pkg/apperror"
	"github.com/sangkips/retailpos/pkg/money"
	"github.com/sangkips/retailpos/pkg/pagination"
	"github.com/sangkips/retailpos/pkg/spreadsheet"
	"github.com/shopspring/decimal"
)

// BillingService turns carts into bills.
type BillingService struct {
	transactor    repository.Transactor
	productRepo   repository.ProductRepository
	inventoryRepo repository.InventoryRepository
	billRepo      repository.BillRepository
	rules         AllocationRules
	numbers       BillNumberGenerator
	attempts      int
	now           Clock
}

// BillingOption customises a BillingService.
type BillingOption func(*BillingService)

func WithBillingClock(c Clock) BillingOption {
	return func(s *BillingService) { s.now = c }
}

func WithBillNumbers(g BillNumberGenerator) BillingOption {
	return func(s *BillingService) { s.numbers = g }
}

// WithBillNumberAttempts bounds both the check-and-retry loop for a number
// and the number of times a checkout is rerun after a duplicate insert.
func WithBillNumberAttempts(n int) BillingOption {
	return func(s *BillingService) {
		if n > 0 {
			s.attempts = n
		}
	}
}

// NewBillingService creates a billing service that allocates stock by rules.
func NewBillingService(
	transactor repository.Transactor,
	productRepo repository.ProductRepository,
	inventoryRepo repository.InventoryRepository,
	billRepo repository.BillRepository,
	rules AllocationRules,
	opts ...BillingOption,
) *BillingService {
	s := &BillingService{
		transactor:    transactor,
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		billRepo:      billRepo,
		rules:         rules,
		numbers:       PrefixedBillNumbers{Prefix: DefaultBillPrefix},
		attempts:      DefaultBillNumberAttempts,
		now:           systemClock,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Totals are the rounded money figures of a priced cart or bill.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	CGSTTotal decimal.Decimal `json:"cgst_total"`
	SGSTTotal decimal.Decimal `json:"sgst_total"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

// priceLine snapshots product onto a bill line for qty units. Nothing is
// rounded here.
func priceLine(position int, product *entity.Product, qty int) entity.BillLine {
	amount := product.Price.Mul(decimal.NewFromInt(int64(qty)))
	return entity.BillLine{
		Position:   position,
		ProductID:  product.ID,
		Name:       product.Name,
		Price:      product.Price,
		HSN:        product.HSN,
		CGST:       product.CGST,
		SGST:       product.SGST,
		Quantity:   qty,
		Amount:     amount,
		CGSTAmount: money.Percent(amount, product.CGST),
		SGSTAmount: money.Percent(amount, product.SGST),
	}
}

// computeTotals sums exact line figures and rounds once. Total is the sum of
// the rounded subtotal and tax so the printed figures always add up. The
// CGST and SGST totals are rounded separately for display and may differ
// from Tax by a paisa.
func computeTotals(lines []entity.BillLine) Totals {
	subtotal, cgst, sgst, tax := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Amount)
		cgst = cgst.Add(l.CGSTAmount)
		sgst = sgst.Add(l.SGSTAmount)
		tax = tax.Add(l.TaxAmount())
	}
	t := Totals{
		Subtotal:  money.Round(subtotal),
		CGSTTotal: money.Round(cgst),
		SGSTTotal: money.Round(sgst),
		Tax:       money.Round(tax),
	}
	t.Total = t.Subtotal.Add(t.Tax)
	return t
}

// QuoteLine is a priced cart line with the stock it can draw on.
type QuoteLine struct {
	entity.BillLine
	Available int `json:"available"`
}

// Quote prices a cart without touching stock.
type Quote struct {
	Lines []QuoteLine `json:"lines"`
	Totals
	Shortages []apperror.StockShortage `json:"shortages"`
}

// Quote prices lines at current catalog prices and reports any shortage. It
// writes nothing.
func (s *BillingService) Quote(ctx context.Context, lines []CartLine) (*Quote, error) {
	cart, err := NewCart(lines...)
	if err != nil {
		return nil, err
	}
	products, err := s.loadProducts(ctx, s.productRepo, cart)
	if err != nil {
		return nil, err
	}

	now := s.now()
	q := &Quote{Lines: make([]QuoteLine, 0, len(cart.lines)), Shortages: []apperror.StockShortage{}}
	billLines := make([]entity.BillLine, 0, len(cart.lines))
	for i, l := range cart.lines {
		batches, err := s.inventoryRepo.ListByProduct(ctx, l.ProductID)
		if err != nil {
			return nil, storageErr("load stock", err)
		}
		available := s.rules.Available(batches, now)
		p := products[l.ProductID]
		line := priceLine(i+1, p, l.Quantity)
		billLines = append(billLines, line)
		q.Lines = append(q.Lines, QuoteLine{BillLine: line, Available: available})
		if l.Quantity > available {
			q.Shortages = append(q.Shortages, apperror.StockShortage{
				ProductID: p.ID,
				Name:      p.Name,
				Requested: l.Quantity,
				Available: available,
				Shortfall: l.Quantity - available,
			})
		}
	}
	q.Totals = computeTotals(billLines)
	return q, nil
}

// AddToCart merges qty of productID into lines after checking current stock.
func (s *BillingService) AddToCart(ctx context.Context, lines []CartLine, productID uuid.UUID, qty int) ([]CartLine, error) {
	cart, err := NewCart(lines...)
	if err != nil {
		return nil, err
	}
	available, err := s.available(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := cart.Add(productID, qty, available); err != nil {
		return nil, err
	}
	return cart.Lines(), nil
}

// SetCartQuantity replaces the quantity of productID in lines.
func (s *BillingService) SetCartQuantity(ctx context.Context, lines []CartLine, productID uuid.UUID, qty int) ([]CartLine, error) {
	cart, err := NewCart(lines...)
	if err != nil {
		return nil, err
	}
	available := 0
	if qty > 0 {
		if available, err = s.available(ctx, productID); err != nil {
			return nil, err
		}
	}
	if err := cart.Set(productID, qty, available); err != nil {
		return nil, err
	}
	return cart.Lines(), nil
}

func (s *BillingService) available(ctx context.Context, productID uuid.UUID) (int, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return 0, storageErr("load product", err)
	}
	if product == nil {
		return 0, apperror.NewNotFoundError("Product")
	}
	batches, err := s.inventoryRepo.ListByProduct(ctx, productID)
	if err != nil {
		return 0, storageErr("load stock", err)
	}
	return s.rules.Available(batches, s.now()), nil
}

// Customer is optional buyer information printed on the bill.
type Customer struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

// CheckoutInput represents the input for creating a bill
type CheckoutInput struct {
	Lines            []CartLine
	PaymentMethod    enum.PaymentMethod
	PaymentReference string
	Customer         Customer
}

// checkout tracks one attempt through Draft -> Validating -> Committed|Rejected.
type checkout struct {
	id    string
	state enum.CheckoutState
	cart  *Cart
	input *CheckoutInput
}

func (c *checkout) advance(next enum.CheckoutState) {
	if !c.state.CanTransitionTo(next) {
		panic(fmt.Sprintf("checkout %s: illegal transition %s -> %s", c.id, c.state, next))
	}
	log.Debug().Str("checkout", c.id).Str("from", c.state.String()).Str("to", next.String()).Msg("checkout state")
	c.state = next
}

// Checkout validates the cart, allocates every line against locked batches
// and writes the bill, all in one transaction. Either every batch decrement
// and the bill are stored, or nothing is.
func (s *BillingService) Checkout(ctx context.Context, input *CheckoutInput) (*entity.Bill, error) {
	co := &checkout{id: uuid.NewString(), state: enum.CheckoutDraft, input: input}

	if err := s.validateCheckout(co); err != nil {
		s.reject(co, err)
		return nil, err
	}
	co.advance(enum.CheckoutValidating)

	var (
		bill *entity.Bill
		err  error
	)
	for attempt := 1; ; attempt++ {
		bill, err = s.commit(ctx, co)
		if errors.Is(err, repository.ErrDuplicateBillNumber) && attempt < s.attempts {
			log.Warn().Str("checkout", co.id).Int("attempt", attempt).Msg("bill number collided on insert, rerunning checkout")
			continue
		}
		break
	}
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateBillNumber) {
			err = apperror.NewConflictError("Could not allocate a unique bill number")
		}
		err = storageErr("save bill", err)
		s.reject(co, err)
		return nil, err
	}

	co.advance(enum.CheckoutCommitted)
	log.Info().
		Str("checkout", co.id).
		Str("bill_number", bill.BillNumber).
		Int("lines", len(bill.Lines)).
		Int("units", bill.ItemCount()).
		Str("total", money.Format(bill.Total)).
		Str("payment", bill.PaymentMethod.String()).
		Msg("checkout committed")
	return bill, nil
}

func (s *BillingService) reject(co *checkout, err error) {
	co.advance(enum.CheckoutRejected)
	ev := log.Info()
	if errors.Is(err, apperror.ErrPersistence) {
		ev = log.Error()
	}
	ev.Err(err).Str("checkout", co.id).Msg("checkout rejected")
}

func (s *BillingService) validateCheckout(co *checkout) error {
	in := co.input
	if len(in.Lines) == 0 {
		return apperror.NewFieldError("lines", "Cart is empty")
	}
	cart, err := NewCart(in.Lines...)
	if err != nil {
		return err
	}
	co.cart = cart

	var errs []apperror.FieldError
	if !in.PaymentMethod.IsValid() {
		errs = append(errs, apperror.FieldError{Field: "payment_method", Message: "Payment method must be cash, upi or card"})
	}
	in.PaymentReference = strings.TrimSpace(in.PaymentReference)
	if len(in.PaymentReference) > 100 {
		errs = append(errs, apperror.FieldError{Field: "payment_reference", Message: "Reference must be at most 100 characters"})
	}
	c := &in.Customer
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	c.Address = strings.TrimSpace(c.Address)
	if c.Email != "" {
		if !validEmail(c.Email) {
			errs = append(errs, apperror.FieldError{Field: "customer.email", Message: "Email is not valid"})
		}
	}
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}

// commit is one transactional pass: plan every line, then apply.
func (s *BillingService) commit(ctx context.Context, co *checkout) (*entity.Bill, error) {
	now := s.now()
	var bill *entity.Bill

	err := s.transactor.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		products, err := s.loadProducts(ctx, tx.Products(), co.cart)
		if err != nil {
			return err
		}

		// lock in a fixed order so concurrent checkouts cannot deadlock
		ids := co.cart.ProductIDs()
		slices.SortFunc(ids, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })

		plans := make(map[uuid.UUID]*AllocationPlan, len(ids))
		short := make(map[uuid.UUID]apperror.StockShortage)
		for _, id := range ids {
			batches, err := tx.Inventory().ListByProductForUpdate(ctx, id)
			if err != nil {
				return err
			}
			plan, err := s.rules.Allocate(id, batches, co.cart.Quantity(id), now)
			if err != nil {
				var appErr *apperror.AppError
				if errors.As(err, &appErr) && appErr.Kind == apperror.KindInsufficientStock {
					sh := appErr.Shortages[0]
					sh.Name = products[id].Name
					short[id] = sh
					continue
				}
				return err
			}
			plans[id] = plan
		}
		if len(short) > 0 {
			shortages := make([]apperror.StockShortage, 0, len(short))
			for _, id := range co.cart.ProductIDs() {
				if sh, ok := short[id]; ok {
					shortages = append(shortages, sh)
				}
			}
			return apperror.NewInsufficientStockError(shortages)
		}

		for _, id := range ids {
			for _, take := range plans[id].Takes {
				ok, err := tx.Inventory().AdjustQuantity(ctx, take.Key, -take.Quantity)
				if err != nil {
					return err
				}
				if !ok {
					// only reachable if a batch changed under the lock
					return apperror.NewInsufficientStockError([]apperror.StockShortage{{
						ProductID: id,
						Name:      products[id].Name,
						Requested: co.cart.Quantity(id),
						Shortfall: take.Quantity,
					}})
				}
			}
		}

		bill = s.buildBill(co, products, plans, now)
		number, err := reserveBillNumber(ctx, tx.Bills(), s.numbers, now, s.attempts)
		if err != nil {
			return err
		}
		bill.BillNumber = number
		return tx.Bills().Create(ctx, bill)
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

func (s *BillingService) buildBill(co *checkout, products map[uuid.UUID]*entity.Product, plans map[uuid.UUID]*AllocationPlan, now time.Time) *entity.Bill {
	lines := make([]entity.BillLine, 0, len(co.cart.lines))
	for i, l := range co.cart.lines {
		line := priceLine(i+1, products[l.ProductID], l.Quantity)
		plan := plans[l.ProductID]
		line.BatchID = plan.SingleBatch()
		for _, t := range plan.Takes {
			line.Allocations = append(line.Allocations, entity.BillAllocation{
				Location: t.Key.Location,
				BatchID:  t.Key.BatchID,
				Quantity: t.Quantity,
			})
		}
		lines = append(lines, line)
	}
	totals := computeTotals(lines)

	in := co.input
	return &entity.Bill{
		Subtotal:         totals.Subtotal,
		CGSTTotal:        totals.CGSTTotal,
		SGSTTotal:        totals.SGSTTotal,
		Tax:              totals.Tax,
		Total:            totals.Total,
		PaymentMethod:    in.PaymentMethod,
		PaymentReference: in.PaymentReference,
		CustomerName:     in.Customer.Name,
		CustomerPhone:    in.Customer.Phone,
		CustomerEmail:    in.Customer.Email,
		CustomerAddress:  in.Customer.Address,
		CreatedAt:        now,
		Lines:            lines,
	}
}

// loadProducts fetches every cart product, reporting missing ones against
// the line that named them.
func (s *BillingService) loadProducts(ctx context.Context, repo repository.ProductRepository, cart *Cart) (map[uuid.UUID]*entity.Product, error) {
	found, err := repo.GetByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return nil, storageErr("load products", err)
	}
	byID := make(map[uuid.UUID]*entity.Product, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	var errs []apperror.FieldError
	for i, l := range cart.lines {
		if _, ok := byID[l.ProductID]; !ok {
			errs = append(errs, apperror.FieldError{Field: fmt.Sprintf("lines[%d].product_id", i), Message: "Product not found"})
		}
	}
	if len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}
	return byID, nil
}

// GetBill retrieves a bill by ID
func (s *BillingService) GetBill(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	bill, err := s.billRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("load bill", err)
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	return bill, nil
}

// GetBillByNumber retrieves a bill by its printed number
func (s *BillingService) GetBillByNumber(ctx context.Context, number string) (*entity.Bill, error) {
	bill, err := s.billRepo.GetByNumber(ctx, strings.TrimSpace(number))
	if err != nil {
		return nil, storageErr("load bill", err)
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	return bill, nil
}

// BillHistoryFilter selects bills by calendar dates; both ends are inclusive.
type BillHistoryFilter struct {
	Pagination    *pagination.PaginationParams
	From          *time.Time
	To            *time.Time
	Search        string
	PaymentMethod *enum.PaymentMethod
}

func (f *BillHistoryFilter) toParams() (*repository.BillFilterParams, error) {
	if f.From != nil && f.To != nil && startOfDay(*f.From).After(startOfDay(*f.To)) {
		return nil, apperror.NewFieldError("from", "From date must not be after to date")
	}
	params := &repository.BillFilterParams{
		Pagination:    f.Pagination,
		Search:        strings.TrimSpace(f.Search),
		PaymentMethod: f.PaymentMethod,
	}
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()
	if f.From != nil {
		from := startOfDay(*f.From)
		params.From = &from
	}
	if f.To != nil {
		to := startOfDay(*f.To).AddDate(0, 0, 1)
		params.To = &to
	}
	return params, nil
}

// ListBills returns bill history, newest first.
func (s *BillingService) ListBills(ctx context.Context, filter *BillHistoryFilter) (*pagination.PaginatedResult[entity.Bill], error) {
	params, err := filter.toParams()
	if err != nil {
		return nil, err
	}
	bills, total, err := s.billRepo.List(ctx, params)
	if err != nil {
		return nil, storageErr("list bills", err)
	}
	return pagination.NewPaginatedResult(bills, params.Pagination, total), nil
}

// ExportBills writes bills created on the dates from..to (inclusive) as an
// xlsx workbook with one sheet of bills and one of items.
func (s *BillingService) ExportBills(ctx context.Context, from, to time.Time, w io.Writer) error {
	from, end := startOfDay(from), startOfDay(to).AddDate(0, 0, 1)
	if !from.Before(end) {
		return apperror.NewFieldError("from", "From date must not be after to date")
	}
	bills, err := s.billRepo.ListInRange(ctx, from, end)
	if err != nil {
		return storageErr("export bills", err)
	}

	billSheet := spreadsheet.Sheet{
		Name:    "Bills",
		Headers: []string{"Bill No", "Date", "Customer", "Phone", "Payment", "Reference", "Subtotal", "CGST", "SGST", "Tax", "Total"},
		Widths:  []float64{26, 18, 22, 14, 10, 18, 12, 10, 10, 10, 12},
	}
	itemSheet := spreadsheet.Sheet{
		Name:    "Items",
		Headers: []string{"Bill No", "Item", "HSN", "Qty", "Rate", "Amount", "CGST %", "SGST %", "CGST", "SGST", "Batches"},
		Widths:  []float64{26, 30, 12, 6, 10, 12, 8, 8, 10, 10, 30},
	}
	num := func(d decimal.Decimal) float64 { return money.Round(d).InexactFloat64() }

	for _, b := range bills {
		billSheet.Rows = append(billSheet.Rows, []interface{}{
			b.BillNumber,
			b.CreatedAt.Format("2006-01-02 15:04"),
			b.CustomerName,
			b.CustomerPhone,
			b.PaymentMethod.Label(),
			b.PaymentReference,
			num(b.Subtotal), num(b.CGSTTotal), num(b.SGSTTotal), num(b.Tax), num(b.Total),
		})
		for _, l := range b.Lines {
			sources := make([]string, 0, len(l.Allocations))
			for _, a := range l.Allocations {
				sources = append(sources, fmt.Sprintf("%s/%s x%d", a.Location, a.BatchID, a.Quantity))
			}
			itemSheet.Rows = append(itemSheet.Rows, []interface{}{
				b.BillNumber, l.Name, l.HSN, l.Quantity,
				num(l.Price), num(l.Amount), l.CGST.InexactFloat64(), l.SGST.InexactFloat64(),
				num(l.CGSTAmount), num(l.SGSTAmount),
				strings.Join(sources, ", "),
			})
		}
	}

	if err := spreadsheet.Write(w, billSheet, itemSheet); err != nil {
		return fmt.Errorf("export bills: %w", err)
	}
	return nil
}
