package handler

import (
	"ledgerpass/internal/audit"
	"ledgerpass/pkg/domain"
)

type AuthorityResponse struct {
	Principal   domain.Principal `json:"principal"`
	IsAuthority bool             `json:"is_authority"`
}

type HolderResponse struct {
	Holder domain.Principal      `json:"holder"`
	Number domain.PassportNumber `json:"number"`
}

type ValidityResponse struct {
	Number domain.PassportNumber `json:"number"`
	Valid  bool                  `json:"valid"`
	Height domain.Height         `json:"height"`
}

type HistoryResponse struct {
	Subject string        `json:"subject"`
	Events  []audit.Event `json:"events"`
}

type ChainResponse struct {
	Height  domain.Height `json:"height"`
	Pending int           `json:"pending"`
}

func toHistoryResponse(subject string, events []audit.Event) HistoryResponse {
	if events == nil {
		events = []audit.Event{}
	}
	return HistoryResponse{Subject: subject, Events: events}
}
