package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shopmart/internal/common"
	"shopmart/internal/models"
	"shopmart/internal/repositories"
)

const (
	// defaultOfficeStateCode is used when an invoice office has no state
	// code of its own.
	defaultOfficeStateCode = "09"

	// noSegmentStateCode is the jurisdiction whose invoices carry no state
	// segment at all.
	noSegmentStateCode = "10"
)

// InvoiceNumber is the result of allocating one invoice identifier. Key is
// the counter scope the serial was drawn from; Number is Key plus the raw
// serial.
type InvoiceNumber struct {
	Number   string
	Sequence int
	Key      string
}

// IdentifierService mints order ids and invoice numbers. Uniqueness in
// both cases rests on the sequence repository's atomic allocation, never
// on wall-clock resolution.
type IdentifierService interface {
	GenerateOrderID(ctx context.Context) (string, error)
	GenerateInvoiceNumber(ctx context.Context, invoiceType string, businessAccount bool, officeStateCode *string, at time.Time) (*InvoiceNumber, error)
}

type identifierService struct {
	sequenceRepo     repositories.SequenceRepository
	defaultStateCode string
	now              func() time.Time
}

func NewIdentifierService(sequenceRepo repositories.SequenceRepository) IdentifierService {
	return &identifierService{
		sequenceRepo:     sequenceRepo,
		defaultStateCode: defaultOfficeStateCode,
		now:              time.Now,
	}
}

// GenerateOrderID builds ODR-DDMMYYYY-HHMMSS-NNNN. The serial comes from a
// daily counter, so two orders placed in the same second still differ; the
// time segment is informational only. Padding grows from 4 digits to 5 and
// 6 as the daily count passes 9,999 and 99,999; it never wraps.
func (s *identifierService) GenerateOrderID(ctx context.Context) (string, error) {
	now := s.now()
	day := now.Format("02012006")

	serial, err := s.sequenceRepo.NextValue(ctx, "ORDER:"+day)
	if err != nil {
		return "", fmt.Errorf("allocate order serial: %w", err)
	}

	width := 4
	switch {
	case serial > 99999:
		width = 6
	case serial > 9999:
		width = 5
	}

	return fmt.Sprintf("ODR-%s-%s-%0*d", day, now.Format("150405"), width, serial), nil
}

// GenerateInvoiceNumber composes prefix + state segment + FY label, draws
// the next serial from a counter scoped to exactly that composition, and
// appends the serial unpadded. Scoping the counter by FY label makes each
// stream restart at 1 on April 1 without any reset logic.
func (s *identifierService) GenerateInvoiceNumber(ctx context.Context, invoiceType string, businessAccount bool, officeStateCode *string, at time.Time) (*InvoiceNumber, error) {
	var prefix string
	switch invoiceType {
	case models.InvoiceTypePI:
		prefix = "P"
	case models.InvoiceTypeTax:
		if businessAccount {
			prefix = "B"
		} else {
			prefix = "R"
		}
	default:
		return nil, fmt.Errorf("unknown invoice type %q", invoiceType)
	}

	stateCode := strings.TrimSpace(common.SafeString(officeStateCode))
	if stateCode == "" {
		stateCode = s.defaultStateCode
	}
	if stateCode == "" {
		return nil, ErrInvalidOfficeConfig
	}

	segment := stateCode
	if stateCode == noSegmentStateCode {
		segment = ""
	}

	fy := FinancialYearFor(at)
	key := prefix + segment + fy.Label

	serial, err := s.sequenceRepo.NextValue(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("allocate invoice serial: %w", err)
	}

	return &InvoiceNumber{
		Number:   fmt.Sprintf("%s%d", key, serial),
		Sequence: serial,
		Key:      key,
	}, nil
}
