package models

import (
	"fmt"
	"strings"
)

const (
	RimsYes = "Да"
	RimsNo  = "Нет"
)

// TireGroup — комплект шин одного размера/сезона, одна единица прайсинга.
// Отдельно не хранится: сериализуется в metadata клиента.
type TireGroup struct {
	ID            string `json:"id"`
	Brand         string `json:"brand"`
	Model         string `json:"model"`
	Width         string `json:"width"`
	Profile       string `json:"profile"`
	Diameter      string `json:"diameter"`
	Count         int    `json:"count"`
	Season        string `json:"season"`
	HasRims       string `json:"hasRims"`
	DOT           string `json:"dot"`
	PricePerMonth int    `json:"pricePerMonth"`
}

// SizeLabel возвращает человекочитаемый размер, например "205/55 R16 x4".
func (g TireGroup) SizeLabel() string {
	var b strings.Builder
	if g.Width != "" {
		b.WriteString(g.Width)
	}
	if g.Profile != "" {
		b.WriteString("/")
		b.WriteString(g.Profile)
	}
	if g.Diameter != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("R")
		b.WriteString(g.Diameter)
	}
	if g.Count > 0 {
		b.WriteString(fmt.Sprintf(" x%d", g.Count))
	}
	return strings.TrimSpace(b.String())
}

// BrandLabel возвращает "Бренд Модель" одной строкой.
func (g TireGroup) BrandLabel() string {
	return strings.TrimSpace(strings.TrimSpace(g.Brand) + " " + strings.TrimSpace(g.Model))
}

// FlattenGroups собирает плоские строки отображения из списка групп.
// Они должны всегда выводиться заново из групп, а не редактироваться руками.
func FlattenGroups(groups []TireGroup) (sizes, brands string) {
	var sizeParts, brandParts []string
	for _, g := range groups {
		if s := g.SizeLabel(); s != "" {
			sizeParts = append(sizeParts, s)
		}
		if b := g.BrandLabel(); b != "" {
			brandParts = append(brandParts, b)
		}
	}
	return strings.Join(sizeParts, "; "), strings.Join(brandParts, "; ")
}
