// Package catalog manages the clinic's service price list. The list lives in
// the CRM under two generations of column naming, new ("service_name",
// "price_som") and legacy ("Название услуги", "Стоимость, сом").
package catalog

import "github.com/clinika/clinika-backend/internal/normalize"

// Service is one priced service offered by the clinic.
type Service struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	PriceSom   float64 `json:"price_som"`
	EmployeeID *string `json:"employee_id,omitempty"`
	PhotoURL   *string `json:"photo_url,omitempty"`
}

// MapRow maps one raw catalog row. Rows without an id and name are dropped.
func MapRow(row map[string]any) *Service {
	id := normalize.Extract(row, normalize.FieldID)
	name := normalize.Probe(row, "service_name", "Название услуги", "name")
	if id == "" {
		id = name
	}
	if id == "" {
		return nil
	}
	if name == "" {
		name = id
	}

	svc := &Service{ID: id, Name: name}
	svc.PriceSom, _ = normalize.ProbeFloat(row, "price_som", "Стоимость, сом", "price")

	if emp := normalize.Probe(row, "employee_id", "Сотрудник"); emp != "" {
		svc.EmployeeID = &emp
	}
	if photo := normalize.Probe(row, "photo_url", "photo", "Фото"); photo != "" {
		svc.PhotoURL = &photo
	}
	return svc
}

// MapRows maps a row list, dropping unusable rows.
func MapRows(rows []map[string]any) []*Service {
	out := make([]*Service, 0, len(rows))
	for _, row := range rows {
		if svc := MapRow(row); svc != nil {
			out = append(out, svc)
		}
	}
	return out
}
