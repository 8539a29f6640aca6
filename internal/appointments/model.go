// Package appointments projects the CRM's appointment view into canonical
// records. The view is read-only for the dashboard: appointments are booked
// in the CRM itself, the dashboard only shows them and derives patient visit
// history from them.
package appointments

import (
	"time"

	"github.com/clinika/clinika-backend/internal/normalize"
)

// DateLayout is the Russian day format the CRM stores dates in.
const DateLayout = "02.01.2006"

// Statuses seen in the wild. The column is free text: anything else passes
// through verbatim.
const (
	StatusPaid     = "Оплачено"
	StatusWaiting  = "Ожидаем"
	StatusDiscount = "Со скидкой"
)

// Appointment is the canonical projection of one appointment row.
type Appointment struct {
	ID           string  `json:"id"`
	PatientName  string  `json:"patient_name"`
	PatientPhone *string `json:"patient_phone,omitempty"`
	DoctorName   string  `json:"doctor_name,omitempty"`
	ServiceName  string  `json:"service_name,omitempty"`
	Date         string  `json:"date"`
	Time         string  `json:"time,omitempty"`
	Status       string  `json:"status,omitempty"`
	NightShift   bool    `json:"night_shift"`
	Cash         float64 `json:"cash"`
	Cashless     float64 `json:"cashless"`
	Debt         float64 `json:"debt"`
	Total        float64 `json:"total"`
}

// ParsedDate parses the dd.MM.yyyy date column.
func (a *Appointment) ParsedDate() (time.Time, error) {
	return time.Parse(DateLayout, a.Date)
}

// MapRow maps one raw appointment row. Rows without an id and patient name
// are dropped (nil).
func MapRow(row map[string]any) *Appointment {
	id := normalize.Extract(row, normalize.FieldID)
	patient := normalize.Probe(row, "patient_name", "patient", "Пациент", "ФИО пациента", "client_name", "Клиент")
	if patient == "" {
		patient = normalize.Extract(row, normalize.FieldName)
	}
	if id == "" {
		id = patient
	}
	if id == "" {
		return nil
	}

	appt := &Appointment{
		ID:          id,
		PatientName: patient,
		DoctorName:  normalize.Probe(row, "doctor_name", "doctor", "Доктор", "Доктор ФИО", "Врач"),
		ServiceName: normalize.Probe(row, "service_name", "service", "Услуга", "Название услуги"),
		Date:        normalize.Probe(row, "date", "Дата", "appointment_date", "Дата записи"),
		Time:        normalize.Probe(row, "time", "Время", "appointment_time"),
		Status:      normalize.Probe(row, "status", "Статус"),
		NightShift:  normalize.ProbeBool(row, "night_shift", "night", "Ночная смена", "Ночь"),
	}

	if local, ok := normalize.NormalizePhone(normalize.Extract(row, normalize.FieldPhone)); ok {
		appt.PatientPhone = &local
	}

	appt.Cash, _ = normalize.ProbeFloat(row, "cash", "Наличные", "cash_amount")
	appt.Cashless, _ = normalize.ProbeFloat(row, "cashless", "Безнал", "Безналичные", "cashless_amount")
	appt.Debt, _ = normalize.ProbeFloat(row, "debt", "Долг")
	appt.Total, _ = normalize.ProbeFloat(row, "total", "Итого", "total_amount", "Сумма")

	return appt
}

// MapRows maps a row list, dropping unusable rows.
func MapRows(rows []map[string]any) []*Appointment {
	out := make([]*Appointment, 0, len(rows))
	for _, row := range rows {
		if appt := MapRow(row); appt != nil {
			out = append(out, appt)
		}
	}
	return out
}
