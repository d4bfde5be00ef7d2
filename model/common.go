package model

import (
	"encoding/json"

	"github.com/ericlagergren/decimal"
	"github.com/ericlagergren/decimal/sql/postgres"
)

type PagingMeta struct {
	Page   int                    `json:"page"`
	Count  int64                  `json:"count"`
	Limit  int                    `json:"limit"`
	Order  string                 `json:"order"`
	Filter map[string]interface{} `json:"filter"`
}

type JSONDecimal struct {
	postgres.Decimal
}

func (d JSONDecimal) MarshalJSON() ([]byte, error) {
	if d.V == nil {
		return json.Marshal("0.00")
	}
	return json.Marshal(d.V.String())
}

// ZeroDecimal godoc
func ZeroDecimal() *postgres.Decimal {
	return &postgres.Decimal{V: new(decimal.Big)}
}
