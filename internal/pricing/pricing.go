// Package pricing — движок расчёта заказа: арифметика дат, агрегация цен по
// группам шин и вывод производных полей договора. Чистые функции без
// обращения к хранилищу; время подаётся снаружи.
package pricing

import (
	"strings"
	"time"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/models"
	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/parse"
)

// PricePerSetByDiameter — прайс за комплект (4 шины) в месяц по диаметру.
var PricePerSetByDiameter = map[string]int{
	"13": 1600,
	"14": 1700,
	"15": 1800,
	"16": 2000,
	"17": 2400,
	"18": 2600,
	"19": 2800,
	"20": 3000,
	"21": 3200,
	"22": 3400,
}

const (
	// DefaultPricePerSet применяется для диаметров вне таблицы.
	DefaultPricePerSet = 2000

	// RimSurchargePerSet — надбавка за хранение на дисках, за комплект.
	RimSurchargePerSet = 100

	// DefaultTireCount подставляется, пока не введена ни одна группа.
	DefaultTireCount = 4

	WashPrice    = 200
	PackingPrice = 350
	// Вывоз рекламируется как бесплатный и в сумму не входит.
	PickupPrice = 0
)

// Input — состояние формы заказа перед пересчётом.
type Input struct {
	StartDate string
	Months    int
	Contract  string

	Wash    bool
	Packing bool
	Pickup  bool

	Groups []models.TireGroup
	// Draft — редактируемая группа; подмешивается в расчёт по id,
	// не трогая сам список Groups.
	Draft *models.TireGroup
}

// Result — производные поля заказа.
type Result struct {
	EndDate    string
	RemindAt   string
	TotalTires int
	PriceMonth int
	TotalPrice int
	Contract   string
	AnyRims    bool
	DOT        string
	TireSize   string
	BrandModel string
}

// Derive пересчитывает производные поля. Никогда не возвращает ошибку:
// неразбираемая дата или нулевой срок просто пропускают соответствующий шаг.
func Derive(in Input, now time.Time) Result {
	var out Result

	if start, err := parse.Date(in.StartDate); err == nil && in.Months > 0 {
		end := start.AddDate(0, in.Months, 0)
		out.EndDate = end.Format(models.DateLayout)
		out.RemindAt = end.AddDate(0, 0, -models.ReminderDaysBefore).Format(models.DateLayout)
	}

	groups := MergeDraft(in.Groups, in.Draft)

	var dots []string
	for _, g := range groups {
		out.TotalTires += g.Count
		if g.HasRims == models.RimsYes {
			out.AnyRims = true
		}
		out.PriceMonth += GroupCost(g)
		if dot := strings.TrimSpace(g.DOT); dot != "" {
			dots = append(dots, dot)
		}
	}
	out.DOT = strings.Join(dots, "\n")
	out.TireSize, out.BrandModel = models.FlattenGroups(groups)

	// Пустая форма остаётся рабочей: 4 шины по цене по умолчанию.
	if len(groups) == 0 {
		out.TotalTires = DefaultTireCount
		out.PriceMonth = DefaultPricePerSet
	}

	if in.Months > 0 {
		out.TotalPrice = out.PriceMonth * in.Months
		if in.Wash {
			out.TotalPrice += WashPrice
		}
		if in.Packing {
			out.TotalPrice += PackingPrice
		}
	}

	out.Contract = in.Contract
	if out.Contract == "" {
		out.Contract = ContractNumber(now)
	}

	return out
}

// GroupCost — месячная стоимость одной группы: цена комплекта по диаметру,
// делённая на 4 шины, плюс 25/шину за диски.
func GroupCost(g models.TireGroup) int {
	perSet, ok := PricePerSetByDiameter[strings.TrimSpace(g.Diameter)]
	if !ok {
		perSet = DefaultPricePerSet
	}
	cost := perSet / 4 * g.Count
	if g.HasRims == models.RimsYes {
		cost += RimSurchargePerSet / 4 * g.Count
	}
	return cost
}

// MergeDraft возвращает эффективный список групп: draft заменяет группу с
// тем же id либо добавляется в конец. Исходный срез не изменяется.
func MergeDraft(groups []models.TireGroup, draft *models.TireGroup) []models.TireGroup {
	if draft == nil {
		return groups
	}

	merged := make([]models.TireGroup, len(groups))
	copy(merged, groups)

	for i := range merged {
		if merged[i].ID == draft.ID && draft.ID != "" {
			merged[i] = *draft
			return merged
		}
	}
	return append(merged, *draft)
}

// ContractNumber генерирует номер договора ГГММДД-ЧЧММСС от текущего времени.
// Уникальность в пределах секунды не гарантируется — известное ограничение
// однооператорского ввода; первичным ключом записи служит uuid, не договор.
func ContractNumber(now time.Time) string {
	return now.Format(models.ContractLayout)
}
