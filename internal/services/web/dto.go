package web

import (
	"strconv"

	diceservice "github.com/louisbranch/tableroll/internal/services/dice"
)

// rollRequest is the body of a roll call. Seed is a decimal string so that
// 64-bit seeds survive JavaScript clients.
type rollRequest struct {
	Command string `json:"command"`
	Seed    string `json:"seed,omitempty"`
}

type auditEntry struct {
	Source string `json:"source"`
	Index  int    `json:"index"`
	Kind   string `json:"kind"`
	Dice   []int  `json:"dice,omitempty"`
}

type rollResponse struct {
	System  string       `json:"system"`
	Command string       `json:"command"`
	Handled bool         `json:"handled"`
	Text    string       `json:"text"`
	Outcome string       `json:"outcome"`
	Seed    string       `json:"seed"`
	Audit   []auditEntry `json:"audit"`
}

type systemResponse struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Locale string   `json:"locale"`
	Help   string   `json:"help"`
	Tables []string `json:"tables"`
}

type systemsResponse struct {
	Systems []systemResponse `json:"systems"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func toRollResponse(outcome diceservice.Outcome) rollResponse {
	audit := make([]auditEntry, 0, len(outcome.Audit))
	for _, draw := range outcome.Audit {
		audit = append(audit, auditEntry{
			Source: draw.Source,
			Index:  draw.Index,
			Kind:   string(draw.Kind),
			Dice:   draw.Dice,
		})
	}
	return rollResponse{
		System:  outcome.System,
		Command: outcome.Command,
		Handled: outcome.Handled,
		Text:    outcome.Text,
		Outcome: outcome.Outcome.String(),
		Seed:    strconv.FormatInt(outcome.Seed, 10),
		Audit:   audit,
	}
}

func toSystemsResponse(list []diceservice.SystemInfo) systemsResponse {
	systems := make([]systemResponse, 0, len(list))
	for _, info := range list {
		tables := info.Tables
		if tables == nil {
			tables = []string{}
		}
		systems = append(systems, systemResponse{
			ID:     info.ID,
			Name:   info.Name,
			Locale: info.Locale,
			Help:   info.Help,
			Tables: tables,
		})
	}
	return systemsResponse{Systems: systems}
}
