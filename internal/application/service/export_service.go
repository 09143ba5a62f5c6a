package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/qaiserfcc/cloud-pos-api/internal/application/port"
	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

const exportRowLimit = 10000

// ExportService renders tenant data as XLSX workbooks for download.
type ExportService interface {
	InventoryReport(ctx context.Context, tenantID, storeID string) (*bytes.Buffer, error)
	TransferReport(ctx context.Context, tenantID string, status entity.TransferStatus) (*bytes.Buffer, error)
}

type exportServiceImpl struct {
	inventory port.InventoryRepository
	transfers port.TransferRepository
	logger    Logger
}

// NewExportService creates a new ExportService.
func NewExportService(inventory port.InventoryRepository, transfers port.TransferRepository, logger Logger) ExportService {
	return &exportServiceImpl{inventory: inventory, transfers: transfers, logger: logger}
}

func (s *exportServiceImpl) InventoryReport(ctx context.Context, tenantID, storeID string) (*bytes.Buffer, error) {
	records, err := s.inventory.List(ctx, tenantID, storeID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Inventory"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"Store", "Product", "On Hand", "Reserved", "Available", "Unit Cost"}
	if err := writeHeaderRow(f, sheet, headers); err != nil {
		return nil, err
	}

	for i, rec := range records {
		row := i + 2
		cells := []any{
			rec.StoreID,
			rec.ProductID,
			rec.QuantityOnHand.String(),
			rec.QuantityReserved.String(),
			rec.QuantityAvailable().String(),
			rec.UnitCost.String(),
		}
		if err := writeRow(f, sheet, row, cells); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write inventory workbook: %w", err)
	}
	s.logger.Info("inventory report exported", "tenant_id", tenantID, "rows", len(records))
	return buf, nil
}

func (s *exportServiceImpl) TransferReport(ctx context.Context, tenantID string, status entity.TransferStatus) (*bytes.Buffer, error) {
	transfers, err := s.transfers.List(ctx, tenantID, status, exportRowLimit, 0)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Transfers"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"Number", "Status", "Source Store", "Destination Store", "Product", "Quantity", "Unit Cost", "Amount", "Requested By", "Created At"}
	if err := writeHeaderRow(f, sheet, headers); err != nil {
		return nil, err
	}

	for i, t := range transfers {
		row := i + 2
		cells := []any{
			t.TransferNumber,
			string(t.Status),
			t.SourceStoreID,
			t.DestinationStoreID,
			t.ProductID,
			t.Quantity.String(),
			t.UnitCost.String(),
			t.Amount().String(),
			t.RequestedBy,
			t.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writeRow(f, sheet, row, cells); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write transfer workbook: %w", err)
	}
	s.logger.Info("transfer report exported", "tenant_id", tenantID, "rows", len(transfers))
	return buf, nil
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string) error {
	cells := make([]any, len(headers))
	for i, h := range headers {
		cells[i] = h
	}
	return writeRow(f, sheet, 1, cells)
}

func writeRow(f *excelize.File, sheet string, row int, cells []any) error {
	for i, v := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
