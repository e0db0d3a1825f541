package export

import (
	"context"
	"fmt"
	"io"

	"shutterdesk/internal/domain"
	"shutterdesk/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const projectsSheetName = "Projects"

// Exporter renders workbook snapshots of the ledger for offline use.
type Exporter struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewExporter(repo domain.Repository, logger *zerolog.Logger) *Exporter {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Exporter{repo: repo, logger: logger}
}

// WriteProjects строит книгу и пишет ее в w
func (e *Exporter) WriteProjects(ctx context.Context, w io.Writer) error {
	f, err := e.ProjectsWorkbook(ctx)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// ProjectsWorkbook builds an Excel workbook with one row per project
// and a totals row over the money columns.
func (e *Exporter) ProjectsWorkbook(ctx context.Context) (*excelize.File, error) {
	projects, err := e.repo.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing projects: %v", err)
	}

	clientNames, packageNames, err := e.lookupNames(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()

	index, err := f.NewSheet(projectsSheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	e.writeHeaders(f)

	var totalPrice, totalDeposit, totalPaid, totalBalance int64
	row := 2
	for _, project := range projects {
		e.writeProjectRow(f, row, project, clientNames[project.ClientID], packageNames[project.PackageID])
		totalPrice += project.Price
		totalDeposit += project.DepositAmount
		totalPaid += project.AmountPaid
		totalBalance += project.BalanceAmount
		row++
	}

	e.writeTotalsRow(f, row, totalPrice, totalDeposit, totalPaid, totalBalance)

	// Настраиваем ширину колонок
	widths := []struct {
		col   string
		width float64
	}{
		{"A", 8}, {"B", 22}, {"C", 22}, {"D", 15}, {"E", 12}, {"F", 14},
		{"G", 12}, {"H", 12}, {"I", 12}, {"J", 12}, {"K", 10}, {"L", 18},
	}
	for _, w := range widths {
		_ = f.SetColWidth(projectsSheetName, w.col, w.col, w.width)
	}

	// Удаляем стандартный лист
	_ = f.DeleteSheet("Sheet1")

	e.logger.Info().Int("projects", len(projects)).Msg("projects workbook built")
	return f, nil
}

func (e *Exporter) writeHeaders(f *excelize.File) {
	headers := []string{
		"ID", "Client", "Package", "Event Type", "Event Date", "Status",
		"Price", "Deposit", "Paid", "Balance", "Revisions", "Created At",
	}

	style, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(projectsSheetName, cell, header)
		_ = f.SetCellStyle(projectsSheetName, cell, cell, style)
	}
}

func (e *Exporter) writeProjectRow(f *excelize.File, row int, project *models.Project, clientName, packageName string) {
	values := []interface{}{
		project.ID,
		clientName,
		packageName,
		project.EventType,
		project.EventDate.Format("02.01.2006"),
		project.Status,
		project.Price,
		project.DepositAmount,
		project.AmountPaid,
		project.BalanceAmount,
		fmt.Sprintf("%d/%d", project.RevisionsUsed, project.RevisionLimit),
		project.CreatedAt.Format("02.01.2006 15:04"),
	}

	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(projectsSheetName, cell, v)
	}
}

func (e *Exporter) writeTotalsRow(f *excelize.File, row int, price, deposit, paid, balance int64) {
	style, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	_ = f.SetCellValue(projectsSheetName, fmt.Sprintf("A%d", row), "Итого")
	_ = f.SetCellValue(projectsSheetName, fmt.Sprintf("G%d", row), price)
	_ = f.SetCellValue(projectsSheetName, fmt.Sprintf("H%d", row), deposit)
	_ = f.SetCellValue(projectsSheetName, fmt.Sprintf("I%d", row), paid)
	_ = f.SetCellValue(projectsSheetName, fmt.Sprintf("J%d", row), balance)
	_ = f.SetCellStyle(projectsSheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("L%d", row), style)
}

func (e *Exporter) lookupNames(ctx context.Context) (map[int64]string, map[int64]string, error) {
	clients, err := e.repo.ListClients(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("error listing clients: %v", err)
	}
	packages, err := e.repo.ListPackages(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("error listing packages: %v", err)
	}

	clientNames := make(map[int64]string, len(clients))
	for _, c := range clients {
		clientNames[c.ID] = c.Name
	}
	packageNames := make(map[int64]string, len(packages))
	for _, p := range packages {
		packageNames[p.ID] = p.Name
	}
	return clientNames, packageNames, nil
}
