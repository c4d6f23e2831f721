package apiclient

import "encoding/json"

// Envelope is the wire shape of every API response.
type Envelope struct {
	Body    json.RawMessage `json:"body"`
	Meta    *Meta           `json:"meta,omitempty"`
	Message string          `json:"message"`
	Status  int             `json:"status"`
}

// Meta carries pagination for list responses.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func (m Meta) normalized() Meta {
	if m.Page < 1 {
		m.Page = 1
	}
	if m.TotalPages == 0 && m.Limit > 0 {
		m.TotalPages = (m.Total + m.Limit - 1) / m.Limit
	}
	if m.TotalPages < 1 {
		m.TotalPages = 1
	}
	return m
}

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items []T
	Meta  Meta
}

type validationBody struct {
	Errors map[string]string `json:"errors"`
}
