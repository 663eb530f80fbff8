package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/retailpos/internal/domain/entity"
	"github.com/sangkips/retailpos/internal/domain/repository"
	"github.com/sangkips/retailpos/internal/infrastructure/cache"
	"github.com/sangkips/retailpos/pkg/apperror"
	"github.com/sangkips/retailpos/pkg/money"
	"github.com/sangkips/retailpos/pkg/pagination"
	"github.com/sangkips/retailpos/pkg/spreadsheet"
	"github.com/sangkips/retailpos/pkg/utils"
	"github.com/shopspring/decimal"
)

var maxTaxRate = decimal.NewFromInt(100)

// ProductService handles catalog operations
type ProductService struct {
	productRepo repository.ProductRepository
	transactor  repository.Transactor
	prices      cache.PriceCache
}

// NewProductService creates a new product service. prices may be nil.
func NewProductService(
	productRepo repository.ProductRepository,
	transactor repository.Transactor,
	prices cache.PriceCache,
) *ProductService {
	if prices == nil {
		prices = cache.NewNoopPriceCache()
	}
	return &ProductService{
		productRepo: productRepo,
		transactor:  transactor,
		prices:      prices,
	}
}

// ProductInput represents the create product input
type ProductInput struct {
	Name     string
	Category string
	Price    decimal.Decimal
	Barcode  string
	HSN      string
	CGST     decimal.Decimal
	SGST     decimal.Decimal
}

func (in *ProductInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Barcode = utils.NormalizeCode(in.Barcode)
	in.HSN = utils.NormalizeCode(in.HSN)
}

func (in *ProductInput) validate() error {
	var errs []apperror.FieldError
	if in.Name == "" {
		errs = append(errs, apperror.FieldError{Field: "name", Message: "Name is required"})
	} else if len([]rune(in.Name)) > 255 {
		errs = append(errs, apperror.FieldError{Field: "name", Message: "Name must be at most 255 characters"})
	}
	if !in.Price.IsPositive() {
		errs = append(errs, apperror.FieldError{Field: "price", Message: "Price must be greater than zero"})
	} else if !money.HasAtMostPlaces(in.Price, money.Places) {
		errs = append(errs, apperror.FieldError{Field: "price", Message: "Price must have at most 2 decimal places"})
	}
	if in.Barcode == "" {
		errs = append(errs, apperror.FieldError{Field: "barcode", Message: "Barcode is required"})
	}
	errs = append(errs, validateRate("cgst", in.CGST)...)
	errs = append(errs, validateRate("sgst", in.SGST)...)
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}

func validateRate(field string, rate decimal.Decimal) []apperror.FieldError {
	if rate.IsNegative() || rate.GreaterThan(maxTaxRate) {
		return []apperror.FieldError{{Field: field, Message: "Rate must be between 0 and 100"}}
	}
	if !money.HasAtMostPlaces(rate, 2) {
		return []apperror.FieldError{{Field: field, Message: "Rate must have at most 2 decimal places"}}
	}
	return nil
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, input *ProductInput) (*entity.Product, error) {
	input.normalize()
	if err := input.validate(); err != nil {
		return nil, err
	}

	existing, err := s.productRepo.GetByBarcode(ctx, input.Barcode)
	if err != nil {
		return nil, storageErr("look up barcode", err)
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Barcode already exists")
	}

	product := &entity.Product{
		Name:     input.Name,
		Category: input.Category,
		Price:    input.Price,
		Barcode:  input.Barcode,
		HSN:      input.HSN,
		CGST:     input.CGST,
		SGST:     input.SGST,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, storageErr("create product", err)
	}
	return product, nil
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("load product", err)
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// GetProductByBarcode serves scanner lookups, from the price cache when warm.
func (s *ProductService) GetProductByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	barcode = utils.NormalizeCode(barcode)
	if p, ok := s.prices.Get(ctx, barcode); ok {
		return p, nil
	}

	product, err := s.productRepo.GetByBarcode(ctx, barcode)
	if err != nil {
		return nil, storageErr("look up barcode", err)
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	s.prices.Set(ctx, product)
	return product, nil
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, storageErr("list products", err)
	}
	return pagination.NewPaginatedResult(products, params.Pagination, total), nil
}

// Categories returns the distinct product categories, sorted.
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.productRepo.Categories(ctx)
	if err != nil {
		return nil, storageErr("list categories", err)
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// UpdateProductInput represents the update product input. Nil fields are
// left unchanged.
type UpdateProductInput struct {
	Name     *string
	Category *string
	Price    *decimal.Decimal
	Barcode  *string
	HSN      *string
	CGST     *decimal.Decimal
	SGST     *decimal.Decimal
}

// UpdateProduct updates a product. Bills already issued keep their own copy
// of the old values.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	oldBarcode := product.Barcode

	merged := ProductInput{
		Name:     product.Name,
		Category: product.Category,
		Price:    product.Price,
		Barcode:  product.Barcode,
		HSN:      product.HSN,
		CGST:     product.CGST,
		SGST:     product.SGST,
	}
	if input.Name != nil {
		merged.Name = *input.Name
	}
	if input.Category != nil {
		merged.Category = *input.Category
	}
	if input.Price != nil {
		merged.Price = *input.Price
	}
	if input.Barcode != nil {
		merged.Barcode = *input.Barcode
	}
	if input.HSN != nil {
		merged.HSN = *input.HSN
	}
	if input.CGST != nil {
		merged.CGST = *input.CGST
	}
	if input.SGST != nil {
		merged.SGST = *input.SGST
	}
	merged.normalize()
	if err := merged.validate(); err != nil {
		return nil, err
	}

	if merged.Barcode != oldBarcode {
		other, err := s.productRepo.GetByBarcode(ctx, merged.Barcode)
		if err != nil {
			return nil, storageErr("look up barcode", err)
		}
		if other != nil && other.ID != product.ID {
			return nil, apperror.NewConflictError("Barcode already exists")
		}
	}

	product.Name = merged.Name
	product.Category = merged.Category
	product.Price = merged.Price
	product.Barcode = merged.Barcode
	product.HSN = merged.HSN
	product.CGST = merged.CGST
	product.SGST = merged.SGST

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NewNotFoundError("Product")
		}
		return nil, storageErr("update product", err)
	}
	s.prices.Invalidate(ctx, oldBarcode, product.Barcode)
	return product, nil
}

// DeleteProduct soft deletes the product and removes its batches in one
// transaction.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	err = s.transactor.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.Inventory().DeleteByProduct(ctx, id); err != nil {
			return err
		}
		return tx.Products().Delete(ctx, id)
	})
	if err != nil {
		return storageErr("delete product", err)
	}
	s.prices.Invalidate(ctx, product.Barcode)
	log.Info().Str("product_id", id.String()).Str("barcode", product.Barcode).Msg("product deleted")
	return nil
}

// ImportRowResult reports what happened to one sheet row.
type ImportRowResult struct {
	Line    int                   `json:"line"`
	Barcode string                `json:"barcode"`
	Status  string                `json:"status"` // created, skipped or failed
	Reason  string                `json:"reason,omitempty"`
	Errors  []apperror.FieldError `json:"errors,omitempty"`
}

// ImportResult summarises a bulk import.
type ImportResult struct {
	Created int               `json:"created"`
	Skipped int               `json:"skipped"`
	Failed  int               `json:"failed"`
	Rows    []ImportRowResult `json:"rows"`
}

// ImportProducts creates one product per row. Rows are independent: a bad row
// is reported and the rest still import. Existing barcodes are skipped.
func (s *ProductService) ImportProducts(ctx context.Context, rows []spreadsheet.ProductRow) (*ImportResult, error) {
	result := &ImportResult{Rows: make([]ImportRowResult, 0, len(rows))}

	for _, row := range rows {
		res := ImportRowResult{Line: row.Line, Barcode: row.Barcode}

		input, fieldErrs := productInputFromRow(row)
		if len(fieldErrs) == 0 {
			_, err := s.CreateProduct(ctx, input)
			switch {
			case err == nil:
				res.Status = "created"
				result.Created++
			case errors.Is(err, apperror.ErrConflict):
				res.Status = "skipped"
				res.Reason = "barcode already exists"
				result.Skipped++
			case errors.Is(err, apperror.ErrValidation):
				fieldErrs = apperror.GetAppError(err).Errors
			default:
				// storage trouble affects every remaining row
				return nil, err
			}
		}
		if len(fieldErrs) > 0 {
			res.Status = "failed"
			res.Errors = fieldErrs
			result.Failed++
		}
		result.Rows = append(result.Rows, res)
	}

	log.Info().
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("product import finished")
	return result, nil
}

func productInputFromRow(row spreadsheet.ProductRow) (*ProductInput, []apperror.FieldError) {
	var errs []apperror.FieldError
	parse := func(field, raw string, required bool) decimal.Decimal {
		if raw == "" {
			if required {
				errs = append(errs, apperror.FieldError{Field: field, Message: "Value is required"})
			}
			return decimal.Zero
		}
		d, err := decimal.NewFromString(strings.TrimSuffix(raw, "%"))
		if err != nil {
			errs = append(errs, apperror.FieldError{Field: field, Message: fmt.Sprintf("%q is not a number", raw)})
		}
		return d
	}

	input := &ProductInput{
		Name:     row.Name,
		Category: row.Category,
		Price:    parse("price", row.Price, true),
		Barcode:  row.Barcode,
		HSN:      row.HSN,
		CGST:     parse("cgst", row.CGST, false),
		SGST:     parse("sgst", row.SGST, false),
	}
	return input, errs
}
