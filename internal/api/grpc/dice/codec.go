package dice

import (
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/louisbranch/tableroll/internal/core/check"
	"github.com/louisbranch/tableroll/internal/core/table"
	diceservice "github.com/louisbranch/tableroll/internal/services/dice"
)

// Message fields. Seeds travel as decimal strings since struct numbers are
// doubles and cannot hold every int64.
const (
	fieldSystem  = "system"
	fieldCommand = "command"
	fieldSeed    = "seed"
	fieldLocale  = "locale"
	fieldHandled = "handled"
	fieldText    = "text"
	fieldOutcome = "outcome"
	fieldAudit   = "audit"
	fieldSystems = "systems"
)

var outcomes = []check.Outcome{check.NoJudgment, check.Fumble, check.Critical, check.Success, check.Failure}

// EncodeRollRequest builds the Roll request message.
func EncodeRollRequest(req diceservice.Request, locale string) (*structpb.Struct, error) {
	fields := map[string]any{
		fieldSystem:  req.System,
		fieldCommand: req.Command,
	}
	if req.Seed != nil {
		fields[fieldSeed] = strconv.FormatInt(*req.Seed, 10)
	}
	if locale != "" {
		fields[fieldLocale] = locale
	}
	return structpb.NewStruct(fields)
}

// DecodeRollRequest reads a Roll request message and its optional locale.
func DecodeRollRequest(in *structpb.Struct) (diceservice.Request, string, error) {
	values := in.AsMap()
	req := diceservice.Request{
		System:  stringField(values, fieldSystem),
		Command: stringField(values, fieldCommand),
	}
	if raw, ok := values[fieldSeed]; ok {
		text, ok := raw.(string)
		if !ok {
			return diceservice.Request{}, "", fmt.Errorf("seed must be a decimal string")
		}
		seed, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return diceservice.Request{}, "", fmt.Errorf("parse seed: %w", err)
		}
		req.Seed = &seed
	}
	return req, stringField(values, fieldLocale), nil
}

// EncodeOutcome builds the Roll response message.
func EncodeOutcome(outcome diceservice.Outcome) (*structpb.Struct, error) {
	audit := make([]any, 0, len(outcome.Audit))
	for _, draw := range outcome.Audit {
		entry := map[string]any{
			"source": draw.Source,
			"index":  draw.Index,
			"kind":   string(draw.Kind),
		}
		if len(draw.Dice) > 0 {
			faces := make([]any, 0, len(draw.Dice))
			for _, face := range draw.Dice {
				faces = append(faces, face)
			}
			entry["dice"] = faces
		}
		audit = append(audit, entry)
	}
	return structpb.NewStruct(map[string]any{
		fieldSystem:  outcome.System,
		fieldCommand: outcome.Command,
		fieldHandled: outcome.Handled,
		fieldText:    outcome.Text,
		fieldOutcome: outcome.Outcome.String(),
		fieldSeed:    strconv.FormatInt(outcome.Seed, 10),
		fieldAudit:   audit,
	})
}

// DecodeOutcome reads a Roll response message.
func DecodeOutcome(in *structpb.Struct) (diceservice.Outcome, error) {
	values := in.AsMap()
	out := diceservice.Outcome{
		System:  stringField(values, fieldSystem),
		Command: stringField(values, fieldCommand),
		Text:    stringField(values, fieldText),
	}
	out.Handled, _ = values[fieldHandled].(bool)

	outcome, err := parseOutcome(stringField(values, fieldOutcome))
	if err != nil {
		return diceservice.Outcome{}, err
	}
	out.Outcome = outcome

	if text := stringField(values, fieldSeed); text != "" {
		seed, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return diceservice.Outcome{}, fmt.Errorf("parse seed: %w", err)
		}
		out.Seed = seed
	}

	entries, _ := values[fieldAudit].([]any)
	for i, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			return diceservice.Outcome{}, fmt.Errorf("audit entry %d is not an object", i)
		}
		draw := table.Draw{
			Source: stringField(entry, "source"),
			Index:  intField(entry, "index"),
			Kind:   table.Kind(stringField(entry, "kind")),
		}
		faces, _ := entry["dice"].([]any)
		for _, face := range faces {
			value, _ := face.(float64)
			draw.Dice = append(draw.Dice, int(value))
		}
		out.Audit = append(out.Audit, draw)
	}
	return out, nil
}

// EncodeSystems builds the ListSystems response message.
func EncodeSystems(list []diceservice.SystemInfo) (*structpb.Struct, error) {
	entries := make([]any, 0, len(list))
	for _, info := range list {
		tables := make([]any, 0, len(info.Tables))
		for _, id := range info.Tables {
			tables = append(tables, id)
		}
		entries = append(entries, map[string]any{
			"id":     info.ID,
			"name":   info.Name,
			"locale": info.Locale,
			"help":   info.Help,
			"tables": tables,
		})
	}
	return structpb.NewStruct(map[string]any{fieldSystems: entries})
}

// DecodeSystems reads a ListSystems response message.
func DecodeSystems(in *structpb.Struct) ([]diceservice.SystemInfo, error) {
	entries, _ := in.AsMap()[fieldSystems].([]any)
	out := make([]diceservice.SystemInfo, 0, len(entries))
	for i, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("system entry %d is not an object", i)
		}
		info := diceservice.SystemInfo{
			ID:     stringField(entry, "id"),
			Name:   stringField(entry, "name"),
			Locale: stringField(entry, "locale"),
			Help:   stringField(entry, "help"),
		}
		tables, _ := entry["tables"].([]any)
		for _, id := range tables {
			if text, ok := id.(string); ok {
				info.Tables = append(info.Tables, text)
			}
		}
		out = append(out, info)
	}
	return out, nil
}

func parseOutcome(text string) (check.Outcome, error) {
	if text == "" {
		return check.NoJudgment, nil
	}
	for _, outcome := range outcomes {
		if outcome.String() == text {
			return outcome, nil
		}
	}
	return check.NoJudgment, fmt.Errorf("unknown outcome %q", text)
}

func stringField(values map[string]any, key string) string {
	value, _ := values[key].(string)
	return value
}

func intField(values map[string]any, key string) int {
	value, _ := values[key].(float64)
	return int(value)
}
