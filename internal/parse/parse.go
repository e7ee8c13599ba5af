// Package parse собирает все best-effort разборы из таблицы-предка в явные
// fallible-парсеры: каждая цепочка форматов — это проверяемый список
// приоритетов, а не молчаливый catch.
package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/enver-isliamov/CRMOtelShin-sub000/internal/models"
)

// dateLayouts — цепочка форматов в порядке приоритета. Первым идёт контракт
// HTML date-input, затем человеческий ввод, затем машинные метки времени.
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02.01.06",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Date разбирает дату по цепочке известных форматов.
func Date(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("parse date: empty input")
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse date: no layout matched %q", raw)
}

var moneyCleaner = regexp.MustCompile(`[^\d\-]`)

// Money разбирает денежную строку: "12 400 ₽", "12400,00", "12400".
// Копейки отбрасываются, валюта и разделители игнорируются.
func Money(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("parse money: empty input")
	}
	if i := strings.IndexAny(trimmed, ",."); i >= 0 {
		trimmed = trimmed[:i]
	}
	cleaned := moneyCleaner.ReplaceAllString(trimmed, "")
	if cleaned == "" || cleaned == "-" {
		return 0, fmt.Errorf("parse money: no digits in %q", raw)
	}
	v, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, fmt.Errorf("parse money: %w", err)
	}
	return v, nil
}

// tireSizeRe матчит "205/55 R16 x4" и вырожденные варианты ("R16", "R16 x2").
var tireSizeRe = regexp.MustCompile(`(?:(\d{3})\s*/\s*(\d{2,3}))?\s*R\s*(\d{2})(?:\s*[xх]\s*(\d+))?`)

// TireGroups восстанавливает группы шин из плоских legacy-строк
// ("Размер шин" + "Бренд_Модель"). Разбор заведомо lossy: DOT, сезон и цены
// в плоских строках не хранятся.
func TireGroups(sizes, brands string) ([]models.TireGroup, error) {
	sizeParts := splitFlat(sizes)
	if len(sizeParts) == 0 {
		return nil, fmt.Errorf("parse tire groups: empty size string")
	}
	brandParts := splitFlat(brands)

	groups := make([]models.TireGroup, 0, len(sizeParts))
	for i, part := range sizeParts {
		m := tireSizeRe.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		g := models.TireGroup{
			ID:       fmt.Sprintf("legacy-%d", i+1),
			Width:    m[1],
			Profile:  m[2],
			Diameter: m[3],
			Count:    4,
			HasRims:  models.RimsNo,
		}
		if m[4] != "" {
			if n, err := strconv.Atoi(m[4]); err == nil && n > 0 {
				g.Count = n
			}
		}
		if i < len(brandParts) {
			brand, model, _ := strings.Cut(brandParts[i], " ")
			g.Brand = brand
			g.Model = model
		}
		groups = append(groups, g)
	}

	if len(groups) == 0 {
		return nil, fmt.Errorf("parse tire groups: no sizes recognized in %q", sizes)
	}
	return groups, nil
}

func splitFlat(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == ',' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Phone нормализует телефон к виду с ведущим плюсом: "79990001122" и
// "+7 (999) 000-11-22" сводятся к "+79990001122".
func Phone(raw string) string {
	digits := strings.Builder{}
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return ""
	}
	return "+" + digits.String()
}
