package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/models"
)

// handleExportClients отдаёт актуальную базу клиентов одним xlsx-файлом.
// Архивные записи включаются флагом ?archived=1.
func (s *Server) handleExportClients(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("archived") == "1"

	clients, err := s.clients.GetClients(r.Context(), includeArchived)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("client export failed")
		writeActionError(w, http.StatusInternalServerError, err.Error())
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Клиенты"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		writeActionError(w, http.StatusInternalServerError, err.Error())
		return
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{
		"Договор", "Имя клиента", "Телефон", "Номер Авто", "Начало",
		"Окончание", "Срок", "Цена за месяц", "Общая сумма", "Долг",
		"Статус сделки", "Размер шин", "Бренд_Модель", "DOT",
		"Мойка", "Упаковка", "Вывоз",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheetName, "A1", lastHeader, headerStyle)

	for rowIdx, c := range clients {
		values := []any{
			c.Contract, c.Name, c.Phone, c.CarNumber, c.StartDate,
			c.EndDate, c.Months, c.PriceMonth, c.TotalPrice, c.Debt,
			c.DealStatus, c.TireSize, c.BrandModel, c.DOT,
			yesNo(c.Wash), yesNo(c.Packing), yesNo(c.Pickup),
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "B", 20)
	_ = f.SetColWidth(sheetName, "C", "Q", 14)

	fileName := fmt.Sprintf("clients_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	if err := f.Write(w); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("xlsx write failed")
	}
}

func yesNo(v bool) string {
	if v {
		return models.RimsYes
	}
	return models.RimsNo
}
