package storage

import (
	"context"
	"sort"
)

const (
	FieldInstallmentGroup = "installment_group_id"
	FieldInstallmentIndex = "installment_index"
)

// InstallmentGroup returns the ledger records of one installment group
// ordered by installment index.
func InstallmentGroup(ctx context.Context, repo Repository, groupID string) ([]Record, error) {
	if gl, ok := repo.(GroupLister); ok {
		return gl.ListInstallmentGroup(ctx, groupID)
	}

	all, err := repo.List(ctx, Financial)
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, rec := range all {
		if g, _ := rec[FieldInstallmentGroup].(string); g == groupID && groupID != "" {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return installmentIndex(out[i]) < installmentIndex(out[j])
	})
	return out, nil
}

func installmentIndex(rec Record) float64 {
	switch v := rec[FieldInstallmentIndex].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}
