package aggregate

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"lexledger/internal/core"
)

var monthLabels = [...]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

var categoryLabels = map[core.Category]string{
	core.CategoryFees:        "Honorários",
	core.CategoryCourtCosts:  "Custas Processuais",
	core.CategoryRent:        "Aluguel",
	core.CategorySalaries:    "Salários",
	core.CategorySupplies:    "Materiais",
	core.CategoryMarketing:   "Marketing",
	core.CategoryServices:    "Serviços",
	core.CategoryTaxes:       "Impostos",
	core.CategoryMaintenance: "Manutenção",
	core.CategoryOther:       "Outros",
}

var statusLabels = map[string]string{
	string(core.ProcessOngoing):        "Em Andamento",
	string(core.ProcessAwaitingRuling): "Ag. Julgamento",
	string(core.ProcessAppeal):         "Recurso",
	string(core.ProcessArchived):       "Arquivado",
	string(core.ProcessWon):            "Ganho",
	string(core.ProcessLost):           "Perdido",
	string(core.ProcessSettled):        "Acordo",
}

var areaLabels = map[string]string{
	"civil":          "Civil",
	"criminal":       "Criminal",
	"trabalhista":    "Trabalhista",
	"tributario":     "Tributário",
	"familia":        "Família",
	"previdenciario": "Previdenciário",
	"empresarial":    "Empresarial",
	"consumidor":     "Consumidor",
	"administrativo": "Administrativo",
	"outros":         "Outros",
}

var sourceLabels = map[string]string{
	"indicacao": "Indicação",
	"google":    "Google",
	"instagram": "Instagram",
	"facebook":  "Facebook",
	"tiktok":    "TikTok",
	"site":      "Site",
	"outros":    "Outros",
}

// MonthLabel returns the short pt-BR month name ("jan", "fev", ...).
func MonthLabel(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthLabels[m-1]
}

func CategoryLabel(c core.Category) string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return humanize(string(c))
}

func StatusLabel(s string) string { return lookup(statusLabels, s) }
func AreaLabel(s string) string   { return lookup(areaLabels, s) }
func SourceLabel(s string) string { return lookup(sourceLabels, s) }

func lookup(labels map[string]string, key string) string {
	if l, ok := labels[key]; ok {
		return l
	}
	return humanize(key)
}

// humanize turns an unknown enum key such as "novo_status" into "Novo Status".
func humanize(key string) string {
	return cases.Title(language.BrazilianPortuguese).String(strings.ReplaceAll(key, "_", " "))
}
