package inventory

import (
	"context"

	"github.com/jhoicas/Ombor-api/internal/application/dto"
	"github.com/jhoicas/Ombor-api/internal/domain/entity"
	"github.com/jhoicas/Ombor-api/internal/domain/repository"
)

// RecordMovementFromRequest adapta el request HTTP a RecordIncoming / RecordOutgoing según kind (IN | OUT).
func (uc *LedgerUseCase) RecordMovementFromRequest(ctx context.Context, companyID, userID, kind string, in dto.RecordMovementRequest) (*dto.LedgerEntryResponse, error) {
	input := MovementInput{
		CompanyID:      companyID,
		UserID:         userID,
		ProductID:      in.ProductID,
		Quantity:       in.Quantity,
		UnitPrice:      toMoney(in.UnitPrice),
		CounterpartyID: in.CounterpartyID,
	}
	entry, err := uc.record(ctx, kind, input)
	if err != nil {
		return nil, err
	}
	out := ToLedgerEntryResponse(entry)
	return &out, nil
}

// CreateTransactionFromRequest adapta el request HTTP a CreateTransaction.
func (uc *LedgerUseCase) CreateTransactionFromRequest(ctx context.Context, companyID, userID, kind string, in dto.CreateTransactionRequest) (*dto.TransactionResponse, error) {
	lines := make([]entity.TransactionLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, entity.TransactionLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: toMoney(l.UnitPrice),
		})
	}
	txn, err := uc.CreateTransaction(ctx, CreateTransactionInput{
		Kind:            kind,
		CompanyID:       companyID,
		UserID:          userID,
		CounterpartyID:  in.CounterpartyID,
		Lines:           lines,
		PaymentMethod:   in.PaymentMethod,
		Totals:          in.Totals,
		AdditionalCosts: in.AdditionalCosts,
		DiscountPercent: in.DiscountPercent,
	})
	if err != nil {
		return nil, err
	}
	out := ToTransactionResponse(txn, nil)
	return &out, nil
}

func toMoney(m dto.Money) entity.Money {
	return entity.Money{Amount: m.Amount, Currency: m.Currency}
}

func fromMoney(m entity.Money) dto.Money {
	return dto.Money{Amount: m.Amount, Currency: m.Currency}
}

// ToLedgerEntryResponse convierte un asiento a DTO.
func ToLedgerEntryResponse(e *entity.LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:             e.ID,
		Kind:           e.Kind,
		ProductID:      e.ProductID,
		TransactionID:  e.TransactionID,
		CounterpartyID: e.CounterpartyID,
		Quantity:       e.Quantity,
		UnitPrice:      fromMoney(e.UnitPrice),
		CurrentStock:   e.CurrentStock,
		CreatedBy:      e.CreatedBy,
		CreatedAt:      e.CreatedAt,
	}
}

// ToBalanceResponse convierte un balance a DTO (listas vacías en lugar de null).
func ToBalanceResponse(b *entity.InventoryBalance) dto.BalanceResponse {
	out := dto.BalanceResponse{
		ProductID:      b.ProductID,
		ProductName:    b.ProductName,
		QuantityOnHand: b.QuantityOnHand,
		UnitPrice:      fromMoney(b.UnitPrice),
		IncomingIDs:    b.IncomingIDs,
		OutgoingIDs:    b.OutgoingIDs,
		UpdatedAt:      b.UpdatedAt,
	}
	if out.IncomingIDs == nil {
		out.IncomingIDs = []string{}
	}
	if out.OutgoingIDs == nil {
		out.OutgoingIDs = []string{}
	}
	return out
}

// ToTransactionResponse convierte una transacción a DTO; entries es opcional.
func ToTransactionResponse(t *entity.StockTransaction, entries []*entity.LedgerEntry) dto.TransactionResponse {
	out := dto.TransactionResponse{
		ID:              t.ID,
		Kind:            t.Kind,
		CounterpartyID:  t.CounterpartyID,
		Lines:           make([]dto.TransactionLineResponse, 0, len(t.Lines)),
		PaymentMethod:   t.PaymentMethod,
		Totals:          t.Totals,
		AdditionalCosts: t.AdditionalCosts,
		DiscountPercent: t.DiscountPercent,
		EntryIDs:        t.EntryIDs,
		CreatedBy:       t.CreatedBy,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
	for _, l := range t.Lines {
		out.Lines = append(out.Lines, dto.TransactionLineResponse{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: fromMoney(l.UnitPrice),
		})
	}
	if out.EntryIDs == nil {
		out.EntryIDs = []string{}
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, ToLedgerEntryResponse(e))
	}
	return out
}

// ToIncomeReportItems convierte el reporte diario de entradas.
func ToIncomeReportItems(rows []repository.DailyIncomeResult) []dto.DailyIncomeResponse {
	out := make([]dto.DailyIncomeResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.DailyIncomeResponse{Date: r.Date, TotalIncome: r.TotalIncome})
	}
	return out
}

// ToSalesReportItems convierte el reporte diario de ventas.
func ToSalesReportItems(rows []repository.DailySalesResult) []dto.DailySalesResponse {
	out := make([]dto.DailySalesResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.DailySalesResponse{
			Date:          r.Date,
			Currency:      r.Currency,
			TotalQuantity: r.TotalQuantity,
			TotalSales:    r.TotalSales,
			SalesCount:    r.SalesCount,
		})
	}
	return out
}
