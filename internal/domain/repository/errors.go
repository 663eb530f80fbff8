package repository

import "errors"

// Errors every repository implementation maps its storage errors onto.
var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateBarcode    = errors.New("barcode already exists")
	ErrDuplicateBatch      = errors.New("batch already exists")
	ErrDuplicateBillNumber = errors.New("bill number already exists")
)
