package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const fechaLayout = "2006-01-02"

func fmtTime(t time.Time) string { return t.Format(time.RFC3339) }

func fmtTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := fmtTime(*t)
	return &s
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func parseUUID(s, campo string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, errValidation(campo + " invalido")
	}
	return id, nil
}

func parseUUIDOpt(s, campo string) (*uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	id, err := parseUUID(s, campo)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// parseRango converts inclusive YYYY-MM-DD bounds into [desde, hasta) instants.
// Empty strings leave the bound open.
func parseRango(desde, hasta string) (*time.Time, *time.Time, error) {
	var d, h *time.Time
	if desde != "" {
		t, err := time.ParseInLocation(fechaLayout, desde, time.Local)
		if err != nil {
			return nil, nil, errValidation("fecha desde invalida, use YYYY-MM-DD")
		}
		d = &t
	}
	if hasta != "" {
		t, err := time.ParseInLocation(fechaLayout, hasta, time.Local)
		if err != nil {
			return nil, nil, errValidation("fecha hasta invalida, use YYYY-MM-DD")
		}
		t = t.AddDate(0, 0, 1)
		h = &t
	}
	if d != nil && h != nil && !d.Before(*h) {
		return nil, nil, errValidation("el rango de fechas es invalido")
	}
	return d, h, nil
}

// inicioDelDia truncates t to midnight in its own location.
func inicioDelDia(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func paginar(page, limit int) (offset, lim int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	return (page - 1) * limit, limit
}
