package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Ombor-api/internal/domain"
	"github.com/jhoicas/Ombor-api/internal/domain/entity"
	"github.com/jhoicas/Ombor-api/internal/domain/inventory"
	"github.com/jhoicas/Ombor-api/internal/domain/repository"
)

// LedgerUseCase libro de inventario: registra entradas/salidas, crea y revierte importaciones y ventas
// manteniendo quantity_on_hand = Σ entradas − Σ salidas por producto.
// Todas las mutaciones corren dentro de TxRunner.Run; el stock se ajusta con updates atómicos condicionales.
type LedgerUseCase struct {
	txRunner        TxRunner
	repos           TxRepos
	cache           BalanceCache
	log             zerolog.Logger
	defaultCurrency string
	now             func() time.Time
}

// NewLedgerUseCase construye el caso de uso. repos son los repositorios de lectura (fuera de transacción).
func NewLedgerUseCase(txRunner TxRunner, repos TxRepos, cache BalanceCache, log zerolog.Logger, defaultCurrency string) *LedgerUseCase {
	if cache == nil {
		cache = NopBalanceCache{}
	}
	if defaultCurrency == "" {
		defaultCurrency = entity.CurrencyUSD
	}
	return &LedgerUseCase{
		txRunner:        txRunner,
		repos:           repos,
		cache:           cache,
		log:             log.With().Str("component", "ledger").Logger(),
		defaultCurrency: defaultCurrency,
		now:             time.Now,
	}
}

// MovementInput entrada de un movimiento suelto (sin transacción padre).
type MovementInput struct {
	CompanyID      string
	UserID         string
	ProductID      string
	Quantity       int64
	UnitPrice      entity.Money
	CounterpartyID string
}

// posting datos comunes de los asientos creados en una misma operación.
type posting struct {
	userID         string
	counterpartyID string
	transactionID  string
	at             time.Time
}

// RecordIncoming suma stock al producto (creando su balance si no existe), fija el último precio
// y guarda un asiento IN con la foto del stock resultante.
func (uc *LedgerUseCase) RecordIncoming(ctx context.Context, in MovementInput) (*entity.LedgerEntry, error) {
	return uc.record(ctx, entity.EntryKindIncoming, in)
}

// RecordOutgoing descuenta stock solo si alcanza; si no, devuelve *domain.InsufficientStockError
// y el balance queda igual. El precio del balance no cambia.
func (uc *LedgerUseCase) RecordOutgoing(ctx context.Context, in MovementInput) (*entity.LedgerEntry, error) {
	return uc.record(ctx, entity.EntryKindOutgoing, in)
}

func (uc *LedgerUseCase) record(ctx context.Context, kind string, in MovementInput) (*entity.LedgerEntry, error) {
	line := inventory.NormalizeLine(entity.TransactionLine{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
	}, uc.defaultCurrency)
	if err := inventory.ValidateLine(line); err != nil {
		return nil, err
	}

	p := posting{userID: in.UserID, counterpartyID: in.CounterpartyID, at: uc.now()}
	var entry *entity.LedgerEntry
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		product, err := findActiveProduct(ctx, repos.Products, in.CompanyID, line.ProductID)
		if err != nil {
			return err
		}
		entry, err = uc.apply(ctx, repos, kind, product, line, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.invalidate(ctx, in.CompanyID, line.ProductID)
	return entry, nil
}

// apply ajusta el balance con una sola sentencia atómica y guarda el asiento.
func (uc *LedgerUseCase) apply(
	ctx context.Context,
	repos TxRepos,
	kind string,
	product *entity.Product,
	line entity.TransactionLine,
	p posting,
) (*entity.LedgerEntry, error) {
	var (
		stock int64
		err   error
	)
	switch kind {
	case entity.EntryKindIncoming:
		if err := repos.Balances.Ensure(ctx, product.CompanyID, product.ID, line.UnitPrice); err != nil {
			return nil, err
		}
		price := line.UnitPrice
		stock, err = repos.Balances.Increment(ctx, product.ID, line.Quantity, &price)
	case entity.EntryKindOutgoing:
		stock, err = repos.Balances.Decrement(ctx, product.ID, line.Quantity)
		if errors.Is(err, domain.ErrNotFound) {
			// Sin balance no hay nada que vender
			err = &domain.InsufficientStockError{ProductID: product.ID, Requested: line.Quantity}
		}
	default:
		return nil, domain.ErrInvalidInput
	}
	if err != nil {
		return nil, err
	}

	entry := &entity.LedgerEntry{
		ID:             uuid.New().String(),
		CompanyID:      product.CompanyID,
		Kind:           kind,
		ProductID:      product.ID,
		TransactionID:  p.transactionID,
		CounterpartyID: p.counterpartyID,
		Quantity:       line.Quantity,
		UnitPrice:      line.UnitPrice,
		CurrentStock:   stock,
		CreatedAt:      p.at,
		CreatedBy:      p.userID,
	}
	if err := repos.Entries.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// findActiveProduct producto activo de la empresa; cualquier otro caso es ErrNotFound.
func findActiveProduct(ctx context.Context, products repository.ProductRepository, companyID, productID string) (*entity.Product, error) {
	product, err := products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.Active || product.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

// invalidate borra de caché los balances tocados. Un fallo de caché no revierte la operación.
func (uc *LedgerUseCase) invalidate(ctx context.Context, companyID string, productIDs ...string) {
	if len(productIDs) == 0 {
		return
	}
	if err := uc.cache.Invalidate(ctx, companyID, productIDs...); err != nil {
		uc.log.Warn().Err(err).Strs("product_ids", productIDs).Msg("no se pudo invalidar la caché de balances")
	}
}
