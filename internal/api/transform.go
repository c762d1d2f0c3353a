package api

import (
	"github.com/Veraticus/budgetr/internal/model"
)

// Wire envelopes of the collection endpoints. Some server versions report
// the page window as top-level limit/offset keys instead of inside meta.
type expenditureEnvelope struct {
	Meta   model.Meta             `json:"meta"`
	Limit  *int                   `json:"limit"`
	Offset *int                   `json:"offset"`
	Data   []model.RawExpenditure `json:"data"`
}

type categoryEnvelope struct {
	Meta model.Meta          `json:"meta"`
	Data []model.RawCategory `json:"data"`
}

func transformCategory(raw *model.RawCategory) *model.Category {
	return model.NewCategory(raw)
}

// transformExpenditure attaches an embedded category when the payload has one.
func transformExpenditure(raw *model.RawExpenditure) *model.Expenditure {
	expenditure := model.NewExpenditure(raw)

	if raw != nil && raw.Category != nil {
		expenditure.SetCategory(transformCategory(raw.Category))
	}

	return expenditure
}

func (e *expenditureEnvelope) results() *model.Results[*model.Expenditure] {
	meta := e.Meta
	if meta == nil {
		meta = model.Meta{}
	}
	if _, ok := meta["limit"]; !ok && e.Limit != nil {
		meta["limit"] = *e.Limit
	}
	if _, ok := meta["offset"]; !ok && e.Offset != nil {
		meta["offset"] = *e.Offset
	}

	data := make([]*model.Expenditure, 0, len(e.Data))
	for i := range e.Data {
		data = append(data, transformExpenditure(&e.Data[i]))
	}

	return &model.Results[*model.Expenditure]{Meta: meta, Data: data}
}

func (e *categoryEnvelope) results() *model.Results[*model.Category] {
	meta := e.Meta
	if meta == nil {
		meta = model.Meta{}
	}

	data := make([]*model.Category, 0, len(e.Data))
	for i := range e.Data {
		data = append(data, transformCategory(&e.Data[i]))
	}

	return &model.Results[*model.Category]{Meta: meta, Data: data}
}
