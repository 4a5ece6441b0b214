package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	Income  EntryType = "entrada"
	Expense EntryType = "despesa"
)

const (
	StatusPending   EntryStatus = "pendente"
	StatusPaid      EntryStatus = "pago"
	StatusOverdue   EntryStatus = "atrasado"
	StatusCancelled EntryStatus = "cancelado"
)

const (
	CategoryFees        Category = "honorarios"
	CategoryCourtCosts  Category = "custas_processuais"
	CategoryRent        Category = "aluguel"
	CategorySalaries    Category = "salarios"
	CategorySupplies    Category = "materiais"
	CategoryMarketing   Category = "marketing"
	CategoryServices    Category = "servicos"
	CategoryTaxes       Category = "impostos"
	CategoryMaintenance Category = "manutencao"
	CategoryOther       Category = "outros"
)

const (
	MethodCash              PaymentMethod = "dinheiro"
	MethodPix               PaymentMethod = "pix"
	MethodCreditCard        PaymentMethod = "cartao_credito"
	MethodCreditCardParcels PaymentMethod = "cartao_credito_parcelado"
	MethodDebitCard         PaymentMethod = "cartao_debito"
	MethodTransfer          PaymentMethod = "transferencia"
	MethodBoleto            PaymentMethod = "boleto"
	MethodCheque            PaymentMethod = "cheque"
)

const (
	ProcessOngoing        ProcessStatus = "em_andamento"
	ProcessAwaitingRuling ProcessStatus = "aguardando_julgamento"
	ProcessAppeal         ProcessStatus = "recurso"
	ProcessArchived       ProcessStatus = "arquivado"
	ProcessWon            ProcessStatus = "ganho"
	ProcessLost           ProcessStatus = "perdido"
	ProcessSettled        ProcessStatus = "acordo"
)

type (
	EntryType     string
	EntryStatus   string
	Category      string
	PaymentMethod string
	ProcessStatus string

	// LedgerEntry is one income or expense record of the "financial" collection.
	LedgerEntry struct {
		ID            string          `json:"id,omitempty"`
		Type          EntryType       `json:"type" validate:"required,oneof=entrada despesa"`
		Category      Category        `json:"category" validate:"required,oneof=honorarios custas_processuais aluguel salarios materiais marketing servicos impostos manutencao outros"`
		Description   string          `json:"description,omitempty" validate:"max=500"`
		Value         decimal.Decimal `json:"value"`
		Date          Date            `json:"date"`
		DueDate       Date            `json:"due_date"`
		Status        EntryStatus     `json:"status" validate:"required,oneof=pendente pago atrasado cancelado"`
		PaymentMethod PaymentMethod   `json:"payment_method,omitempty" validate:"omitempty,oneof=dinheiro pix cartao_credito cartao_credito_parcelado cartao_debito transferencia boleto cheque"`
		ClientID      string          `json:"client_id,omitempty"`
		ClientName    string          `json:"client_name,omitempty"`
		ProcessID     string          `json:"process_id,omitempty"`
		ProcessNumber string          `json:"process_number,omitempty"`
		Notes         string          `json:"notes,omitempty"`

		InstallmentGroupID string `json:"installment_group_id,omitempty"`
		InstallmentIndex   int    `json:"installment_index,omitempty" validate:"gte=0,lte=12"`
		InstallmentTotal   int    `json:"installment_total,omitempty" validate:"gte=0,lte=12"`

		CreatedDate Date `json:"created_date"`
	}

	Process struct {
		ID             string        `json:"id,omitempty"`
		Number         string        `json:"number,omitempty"`
		ClientID       string        `json:"client_id,omitempty"`
		ClientName     string        `json:"client_name,omitempty"`
		Area           string        `json:"area,omitempty"`
		Type           string        `json:"type,omitempty"`
		Court          string        `json:"court,omitempty"`
		Status         ProcessStatus `json:"status" validate:"required,oneof=em_andamento aguardando_julgamento recurso arquivado ganho perdido acordo"`
		StartDate      Date          `json:"start_date"`
		CreatedDate    Date          `json:"created_date"`
		LastReviewDate Date          `json:"last_review_date"`
	}

	Visit struct {
		ID        string `json:"id,omitempty"`
		ClientID  string `json:"client_id,omitempty"`
		Name      string `json:"name,omitempty"`
		Date      Date   `json:"date"`
		Source    string `json:"source,omitempty"`
		Converted bool   `json:"converted"`
	}

	Campaign struct {
		ID          string          `json:"id,omitempty"`
		Name        string          `json:"name" validate:"required"`
		Platform    string          `json:"platform,omitempty"`
		Status      string          `json:"status,omitempty"`
		StartDate   Date            `json:"start_date"`
		EndDate     Date            `json:"end_date"`
		Budget      decimal.Decimal `json:"budget"`
		Spent       decimal.Decimal `json:"spent"`
		Impressions int64           `json:"impressions" validate:"gte=0"`
		Clicks      int64           `json:"clicks" validate:"gte=0"`
		Leads       int64           `json:"leads" validate:"gte=0"`
	}

	Client struct {
		ID          string `json:"id,omitempty"`
		Name        string `json:"name" validate:"required"`
		Status      string `json:"status,omitempty"`
		CreatedDate Date   `json:"created_date"`
	}
)

// ClientActive is the status the reports treat as an active client.
const ClientActive = "active"

// CampaignActive marks a running campaign.
const CampaignActive = "ativa"

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrMissingDate      = errors.New("missing date")
	ErrInvalidEntry     = errors.New("invalid ledger entry")
	ErrInvalidProcess   = errors.New("invalid process")
	ErrInvalidCampaign  = errors.New("invalid campaign")
	ErrInvalidClient    = errors.New("invalid client")
	ErrInvalidVisit     = errors.New("invalid visit")
	ErrInvalidDateRange = errors.New("end date before start date")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func (e LedgerEntry) Validate() error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidEntry, describe(err))
	}
	if e.Value.IsNegative() {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrInvalidAmount)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrMissingDate)
	}
	if e.InstallmentIndex > e.InstallmentTotal {
		return fmt.Errorf("%w: installment %d of %d", ErrInvalidEntry, e.InstallmentIndex, e.InstallmentTotal)
	}
	return nil
}

// IsInstallment reports whether the entry belongs to an installment group.
func (e LedgerEntry) IsInstallment() bool {
	return e.InstallmentGroupID != ""
}

func (p Process) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidProcess, describe(err))
	}
	return nil
}

func (v Visit) Validate() error {
	if v.Date.IsZero() {
		return fmt.Errorf("%w: %w", ErrInvalidVisit, ErrMissingDate)
	}
	return nil
}

func (c Campaign) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidCampaign, describe(err))
	}
	if c.Budget.IsNegative() || c.Spent.IsNegative() {
		return fmt.Errorf("%w: %w", ErrInvalidCampaign, ErrInvalidAmount)
	}
	if !c.StartDate.IsZero() && !c.EndDate.IsZero() && c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("%w: %w", ErrInvalidCampaign, ErrInvalidDateRange)
	}
	return nil
}

func (c Client) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidClient, describe(err))
	}
	return nil
}

// describe flattens validator errors into "field: tag" pairs.
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
