package storage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"lexledger/internal/core"
)

type validatable interface {
	Validate() error
}

// schemas validates a full record of each collection before it is stored.
var schemas = map[Collection]func(Record) error{
	Financial: typed[core.LedgerEntry],
	Processes: typed[core.Process],
	Visits:    typed[core.Visit],
	Campaigns: typed[core.Campaign],
	Clients:   typed[core.Client],
	Appointments: rules(map[string]any{
		"title":  "required",
		"date":   "required",
		"type":   "omitempty,oneof=audiencia reuniao prazo consulta pericia diligencia outros",
		"status": "omitempty,oneof=agendado confirmado realizado cancelado remarcado",
	}),
	Notices: rules(map[string]any{
		"title":    "required",
		"priority": "omitempty,oneof=baixa media alta urgente",
		"category": "omitempty,oneof=prazo audiencia reuniao pagamento documento outros",
		"status":   "omitempty,oneof=pendente concluido",
	}),
}

// Validate checks rec against the schema of c.
func Validate(c Collection, rec Record) error {
	check, ok := schemas[c]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, c)
	}
	if err := check(rec); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidRecord, c, err)
	}
	return nil
}

func typed[T validatable](rec Record) error {
	v, err := Decode[T](rec)
	if err != nil {
		return err
	}
	return v.Validate()
}

var mapValidator = validator.New()

// rules validates loosely shaped collections field by field.
func rules(r map[string]any) func(Record) error {
	return func(rec Record) error {
		errs := mapValidator.ValidateMap(rec, r)
		if len(errs) == 0 {
			return nil
		}
		fields := make([]string, 0, len(errs))
		for f, err := range errs {
			fields = append(fields, fmt.Sprintf("%s: %v", f, err))
		}
		sort.Strings(fields)
		return fmt.Errorf("%s", strings.Join(fields, ", "))
	}
}
