package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ombor-api/internal/domain"
	"github.com/jhoicas/Ombor-api/internal/domain/entity"
	"github.com/jhoicas/Ombor-api/internal/domain/inventory"
)

// CreateTransactionInput entrada para crear una importación (IMPORT) o una venta (SALE).
type CreateTransactionInput struct {
	Kind            string
	CompanyID       string
	UserID          string
	CounterpartyID  string // proveedor (opcional en IMPORT) o cliente (obligatorio en SALE)
	Lines           []entity.TransactionLine
	PaymentMethod   string
	Totals          map[string]decimal.Decimal // opcional; si viene vacío se calcula
	AdditionalCosts decimal.Decimal
	DiscountPercent decimal.Decimal
}

// CreateTransaction aplica todas las líneas como una unidad: o se guardan la transacción y todos
// sus asientos, o no se guarda nada. En ventas se valida antes el stock agregado por producto.
func (uc *LedgerUseCase) CreateTransaction(ctx context.Context, in CreateTransactionInput) (*entity.StockTransaction, error) {
	lines, err := uc.validateTransaction(in)
	if err != nil {
		return nil, err
	}
	totals := in.Totals
	if len(totals) == 0 {
		totals = inventory.ComputeTotals(in.Kind, lines, in.AdditionalCosts, in.DiscountPercent, uc.defaultCurrency)
	}

	now := uc.now()
	txn := &entity.StockTransaction{
		ID:              uuid.New().String(),
		CompanyID:       in.CompanyID,
		Kind:            in.Kind,
		CounterpartyID:  in.CounterpartyID,
		Lines:           lines,
		PaymentMethod:   in.PaymentMethod,
		Totals:          totals,
		AdditionalCosts: in.AdditionalCosts,
		DiscountPercent: in.DiscountPercent,
		CreatedBy:       in.UserID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	p := posting{userID: in.UserID, counterpartyID: in.CounterpartyID, transactionID: txn.ID, at: now}

	var entryIDs []string
	err = uc.txRunner.Run(ctx, func(repos TxRepos) error {
		entryIDs = nil
		if err := checkCounterparty(ctx, repos, in.Kind, in.CompanyID, in.CounterpartyID); err != nil {
			return err
		}
		products := make(map[string]*entity.Product, len(lines))
		for _, l := range lines {
			if _, ok := products[l.ProductID]; ok {
				continue
			}
			product, err := findActiveProduct(ctx, repos.Products, in.CompanyID, l.ProductID)
			if err != nil {
				return err
			}
			products[l.ProductID] = product
		}
		if in.Kind == entity.TransactionKindSale {
			err := inventory.CheckAvailability(inventory.DemandByProduct(lines), func(productID string) (int64, error) {
				return onHand(ctx, repos, productID)
			})
			if err != nil {
				return err
			}
		}

		// La cabecera va primero: los asientos la referencian
		if err := repos.Transactions.Create(ctx, txn); err != nil {
			return err
		}
		kind := entity.EntryKindFor(in.Kind)
		for _, l := range lines {
			entry, err := uc.apply(ctx, repos, kind, products[l.ProductID], l, p)
			if err != nil {
				return err
			}
			entryIDs = append(entryIDs, entry.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	txn.EntryIDs = entryIDs
	uc.invalidate(ctx, in.CompanyID, productIDs(lines)...)
	return txn, nil
}

func (uc *LedgerUseCase) validateTransaction(in CreateTransactionInput) ([]entity.TransactionLine, error) {
	if in.Kind != entity.TransactionKindImport && in.Kind != entity.TransactionKindSale {
		return nil, domain.ErrInvalidInput
	}
	if !entity.IsValidPaymentMethod(in.PaymentMethod) || len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.Kind == entity.TransactionKindSale && in.CounterpartyID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.AdditionalCosts.IsNegative() || !inventory.ValidDiscount(in.DiscountPercent) {
		return nil, domain.ErrInvalidInput
	}
	for cur, v := range in.Totals {
		if !entity.IsCurrencyCode(cur) || v.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
	}
	lines := make([]entity.TransactionLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		l = inventory.NormalizeLine(l, uc.defaultCurrency)
		if err := inventory.ValidateLine(l); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, nil
}

// checkCounterparty verifica el proveedor (IMPORT) o el cliente (SALE) de la empresa.
func checkCounterparty(ctx context.Context, repos TxRepos, kind, companyID, counterpartyID string) error {
	if counterpartyID == "" {
		return nil
	}
	switch kind {
	case entity.TransactionKindImport:
		s, err := repos.Suppliers.GetByID(ctx, counterpartyID)
		if err != nil {
			return err
		}
		if s == nil || !s.Active || s.CompanyID != companyID {
			return domain.ErrNotFound
		}
	case entity.TransactionKindSale:
		c, err := repos.Customers.GetByID(ctx, counterpartyID)
		if err != nil {
			return err
		}
		if c == nil || !c.Active || c.CompanyID != companyID {
			return domain.ErrNotFound
		}
	}
	return nil
}

// onHand stock actual; un producto sin balance tiene 0.
func onHand(ctx context.Context, repos TxRepos, productID string) (int64, error) {
	b, err := repos.Balances.Get(ctx, productID)
	if err != nil {
		return 0, err
	}
	if b == nil {
		return 0, nil
	}
	return b.QuantityOnHand, nil
}

// ReverseTransaction deshace una transacción: revierte cada asiento sobre su balance, borra los
// asientos y por último la cabecera, todo en una sola transacción de BD.
// kind vacío acepta cualquier tipo; si no coincide con el guardado se responde ErrNotFound.
func (uc *LedgerUseCase) ReverseTransaction(ctx context.Context, companyID, kind, id string) error {
	var affected []string
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		affected = nil
		txn, err := repos.Transactions.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if txn == nil || txn.CompanyID != companyID || (kind != "" && txn.Kind != kind) {
			return domain.ErrNotFound
		}
		entries, err := repos.Entries.ListByTransaction(ctx, id)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := uc.reverseEntry(ctx, repos, e); err != nil {
				return err
			}
			affected = append(affected, e.ProductID)
		}
		return repos.Transactions.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.invalidate(ctx, companyID, affected...)
	return nil
}

// reverseEntry aplica el movimiento contrario y borra el asiento.
// Una entrada solo se revierte si su stock sigue disponible (el balance nunca queda negativo).
func (uc *LedgerUseCase) reverseEntry(ctx context.Context, repos TxRepos, e *entity.LedgerEntry) error {
	var err error
	switch e.Kind {
	case entity.EntryKindIncoming:
		_, err = repos.Balances.Decrement(ctx, e.ProductID, e.Quantity)
	case entity.EntryKindOutgoing:
		_, err = repos.Balances.Increment(ctx, e.ProductID, e.Quantity, nil)
	default:
		return domain.ErrInvalidInput
	}
	if errors.Is(err, domain.ErrNotFound) {
		uc.log.Warn().
			Str("transaction_id", e.TransactionID).
			Str("entry_id", e.ID).
			Str("product_id", e.ProductID).
			Msg("balance inexistente al revertir; se borra el asiento sin ajustar stock")
		err = nil
	}
	if err != nil {
		return err
	}
	return repos.Entries.Delete(ctx, e.ID)
}

// UpdatePaymentMethod único cambio permitido sobre una transacción ya creada.
func (uc *LedgerUseCase) UpdatePaymentMethod(ctx context.Context, companyID, kind, id, method string) (*entity.StockTransaction, error) {
	if !entity.IsValidPaymentMethod(method) {
		return nil, domain.ErrInvalidInput
	}
	txn, err := uc.getTransaction(ctx, companyID, kind, id)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	if err := uc.repos.Transactions.UpdatePaymentMethod(ctx, id, method, now); err != nil {
		return nil, err
	}
	txn.PaymentMethod = method
	txn.UpdatedAt = now
	return txn, nil
}

func productIDs(lines []entity.TransactionLine) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		out = append(out, l.ProductID)
	}
	return out
}
