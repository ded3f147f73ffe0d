package models

// Requests for signal HTTP endpoints. Defined in domain for consistency and reuse.

type SignalsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	TF     string `query:"tf" json:"tf" default:"1min" validate:"oneof=1min 5min 15min 1hour"`
}

type CandlesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"200" validate:"gte=1,lte=3000"`
	TF     string `query:"tf" json:"tf" default:"1min" validate:"oneof=1min 5min 15min 1hour"`
	From   string `query:"from" json:"from,omitempty"`
	To     string `query:"to" json:"to,omitempty"`
}
