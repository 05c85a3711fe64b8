package models

import (
	"strings"
	"time"
)

// Категории расходов, которые принимает сервер.
const (
	CategoryFood          = "Food"
	CategoryEntertainment = "Entertainment"
	CategoryTransport     = "Transport"
	CategorySport         = "Sport"
	CategoryHealthcare    = "Healthcare"
	CategoryPets          = "Pets"
	CategoryHousehold     = "Household"
	CategoryCharity       = "Charity"
	CategoryTravel        = "Travel"
	CategoryShopping      = "Shopping"
)

// Categories — все категории в порядке отображения.
var Categories = []string{
	CategoryFood,
	CategoryEntertainment,
	CategoryTransport,
	CategorySport,
	CategoryHealthcare,
	CategoryPets,
	CategoryHousehold,
	CategoryCharity,
	CategoryTravel,
	CategoryShopping,
}

// Expense — запись о расходе.
type Expense struct {
	ID       int64     `json:"id"`
	User     string    `json:"user"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Amount   float64   `json:"amount"`
	Date     time.Time `json:"date"` // ISO-8601
	Note     string    `json:"note"`
}

// NewExpense — тело POST /expenses (без id).
type NewExpense struct {
	User     string    `json:"user"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Amount   float64   `json:"amount"`
	Date     time.Time `json:"date"`
	Note     string    `json:"note"`
}

// CanonicalCategory возвращает категорию в каноническом написании
// (регистр не важен) и false для неизвестной.
func CanonicalCategory(c string) (string, bool) {
	for _, known := range Categories {
		if strings.EqualFold(known, strings.TrimSpace(c)) {
			return known, true
		}
	}

	return "", false
}

// ValidCategory — c входит в список категорий (точное совпадение).
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}

	return false
}
