package entity

import (
	"math"
	"strconv"
)

// PredictionResult ответ сервиса классификации.
type PredictionResult struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

// ConfidenceLevel форматирует уверенность в процентах с одним знаком после запятой.
// Половина округляется вверх: 0.0625 даёт 6.3%.
func (p PredictionResult) ConfidenceLevel() string {
	percent := math.Floor(p.Confidence*1000+0.5) / 10
	return strconv.FormatFloat(percent, 'f', 1, 64) + "%"
}
