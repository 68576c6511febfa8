package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a UUID when the record doesn't have one yet.
// IDs are generated in the application so the same models work against
// Postgres and the sqlite test database.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// ProfileRole represents the application role of a user
type ProfileRole string

const (
	RoleMaster   ProfileRole = "master"
	RoleAdmin    ProfileRole = "admin"
	RoleStandard ProfileRole = "user"
)

// IsValid checks if the ProfileRole is a valid enum value
func (r ProfileRole) IsValid() bool {
	switch r {
	case RoleMaster, RoleAdmin, RoleStandard:
		return true
	}
	return false
}

// Profile is the application's own row for an authenticated user.
// The primary key is expected to equal the identity store's user id for the
// same email. That expectation can be broken by manual provisioning or
// migrations, which is why auth.Bootstrap repairs mismatches at login time.
type Profile struct {
	ID        string      `gorm:"type:varchar(100);primaryKey" json:"id"`
	Email     string      `gorm:"type:varchar(255);not null;unique" json:"email"`
	Name      string      `gorm:"type:varchar(200)" json:"name,omitempty"`
	Role      ProfileRole `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	CreatedAt time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// ClientType distinguishes individuals from organizations
type ClientType string

const (
	ClientTypeIndividual   ClientType = "pessoa_fisica"
	ClientTypeOrganization ClientType = "pessoa_juridica"
)

// IsValid checks if the ClientType is a valid enum value
func (ct ClientType) IsValid() bool {
	return ct == ClientTypeIndividual || ct == ClientTypeOrganization
}

// Client represents a customer of the repair shop
type Client struct {
	BaseModel
	Name       string     `gorm:"type:varchar(200);not null;index"`
	Type       ClientType `gorm:"type:varchar(20);not null;default:'pessoa_fisica'"`
	TaxID      string     `gorm:"type:varchar(20);column:tax_id"`
	Email      string     `gorm:"type:varchar(255)"`
	Phone      string     `gorm:"type:varchar(20)"`
	Mobile     string     `gorm:"type:varchar(20)"`
	Street     string     `gorm:"type:varchar(300)"`
	Number     string     `gorm:"type:varchar(20)"`
	Complement string     `gorm:"type:varchar(100)"`
	District   string     `gorm:"type:varchar(100)"`
	City       string     `gorm:"type:varchar(100)"`
	State      string     `gorm:"type:varchar(2)"`
	PostalCode string     `gorm:"type:varchar(9);column:postal_code"`
	LegalName  string     `gorm:"type:varchar(200);column:legal_name"`
	TradeName  string     `gorm:"type:varchar(200);column:trade_name"`
	Notes      string     `gorm:"type:text"`
	CreatedBy  string     `gorm:"type:varchar(100);column:created_by"`
}

// AddressLine builds the single-line address used on document snapshots:
// "street, number - complement - district".
func (c *Client) AddressLine() string {
	line := c.Street
	if c.Number != "" {
		line += ", " + c.Number
	}
	if c.Complement != "" {
		line += " - " + c.Complement
	}
	if c.District != "" {
		line += " - " + c.District
	}
	return line
}

// ContactPhone returns the preferred phone for notifications (mobile first)
func (c *Client) ContactPhone() string {
	if c.Mobile != "" {
		return c.Mobile
	}
	return c.Phone
}

// ClientSnapshot is the typed denormalized copy of client data embedded in
// service orders and quotes. It is captured at creation time so later client
// edits never rewrite historical documents.
type ClientSnapshot struct {
	ClientName    string `gorm:"type:varchar(200);not null;column:client_name"`
	ClientAddress string `gorm:"type:varchar(500);column:client_address"`
	ClientCity    string `gorm:"type:varchar(100);column:client_city"`
	ClientState   string `gorm:"type:varchar(2);column:client_state"`
	ClientTaxID   string `gorm:"type:varchar(20);column:client_tax_id"`
	ClientEmail   string `gorm:"type:varchar(255);column:client_email"`
	ClientPhone   string `gorm:"type:varchar(20);column:client_phone"`
}

// OrderStatus represents the workflow status of a service order
type OrderStatus string

const (
	OrderStatusOpen       OrderStatus = "aberta"
	OrderStatusInProgress OrderStatus = "em_andamento"
	OrderStatusCompleted  OrderStatus = "concluida"
	OrderStatusCancelled  OrderStatus = "cancelada"
)

// IsValid checks if the OrderStatus is a valid enum value
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusOpen, OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// ImageStatus tracks the asynchronous document-image generation workflow.
// Transitions: pending -> generating -> done, or pending -> generating ->
// error; error is re-enterable through a manual retry.
type ImageStatus string

const (
	ImageStatusPending    ImageStatus = "pendente"
	ImageStatusGenerating ImageStatus = "gerando"
	ImageStatusDone       ImageStatus = "concluida"
	ImageStatusError      ImageStatus = "erro"
)

// IsValid checks if the ImageStatus is a valid enum value
func (s ImageStatus) IsValid() bool {
	switch s {
	case ImageStatusPending, ImageStatusGenerating, ImageStatusDone, ImageStatusError:
		return true
	}
	return false
}

// ServiceOrder represents work performed for a client
type ServiceOrder struct {
	BaseModel
	Number    int         `gorm:"not null;uniqueIndex"`
	OrderDate time.Time   `gorm:"type:date;not null;column:order_date"`
	ClientID  *uuid.UUID  `gorm:"type:uuid;index;column:client_id"`
	Client    *Client     `gorm:"foreignKey:ClientID"`
	Status    OrderStatus `gorm:"type:varchar(20);not null;default:'aberta';index"`
	ClientSnapshot
	Notes             string          `gorm:"type:varchar(275)"`
	WarrantyMonths    int             `gorm:"not null;default:0;column:warranty_months"`
	WarrantyExpiresAt *time.Time      `gorm:"type:date;column:warranty_expires_at"`
	VisitFee          float64         `gorm:"type:decimal(15,2);not null;default:0;column:visit_fee"`
	Total             float64         `gorm:"type:decimal(15,2);not null;default:0"`
	ImageStatus       ImageStatus     `gorm:"type:varchar(20);not null;default:'pendente';column:image_status"`
	ImageURL          string          `gorm:"type:varchar(500);column:image_url"`
	Materials         []OrderMaterial `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedBy         string          `gorm:"type:varchar(100);column:created_by"`
}

// OrderMaterial is a line item of a service order. The collection is replaced
// wholesale on every edit, never diffed.
type OrderMaterial struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index;column:order_id"`
	Type      string    `gorm:"type:varchar(200);not null"`
	Quantity  float64   `gorm:"type:decimal(10,2);not null;default:1"`
	UnitPrice float64   `gorm:"type:decimal(15,2);not null;column:unit_price"`
	LineTotal float64   `gorm:"type:decimal(15,2);not null;column:line_total"`
	Position  int       `gorm:"not null;default:0"`
}

// BeforeCreate assigns a UUID when the record doesn't have one yet
func (m *OrderMaterial) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// QuoteStatus represents the approval status of a quote
type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "pendente"
	QuoteStatusApproved QuoteStatus = "aprovado"
	QuoteStatusRejected QuoteStatus = "recusado"
	QuoteStatusExpired  QuoteStatus = "expirado"
)

// IsValid checks if the QuoteStatus is a valid enum value
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusPending, QuoteStatusApproved, QuoteStatusRejected, QuoteStatusExpired:
		return true
	}
	return false
}

// Quote represents a priced proposal awaiting client approval
type Quote struct {
	BaseModel
	Number     int         `gorm:"not null;uniqueIndex"`
	ClientID   *uuid.UUID  `gorm:"type:uuid;index;column:client_id"`
	Client     *Client     `gorm:"foreignKey:ClientID"`
	Status     QuoteStatus `gorm:"type:varchar(20);not null;default:'pendente';index"`
	IssueDate  time.Time   `gorm:"type:date;not null;column:issue_date"`
	ValidUntil *time.Time  `gorm:"type:date;column:valid_until"`
	ClientSnapshot
	Description string       `gorm:"type:text"`
	Notes       string       `gorm:"type:text"`
	ImageStatus ImageStatus  `gorm:"type:varchar(20);not null;default:'pendente';column:image_status"`
	ImageURL    string       `gorm:"type:varchar(500);column:image_url"`
	Items       []QuoteItem  `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	Photos      []QuotePhoto `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	CreatedBy   string       `gorm:"type:varchar(100);column:created_by"`
}

// ItemsTotal sums the persisted line totals of all items
func (q *Quote) ItemsTotal() float64 {
	total := 0.0
	for _, item := range q.Items {
		total += item.LineTotal
	}
	return total
}

// QuoteItem is a line item of a quote, replaced wholesale on edit
type QuoteItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	QuoteID     uuid.UUID `gorm:"type:uuid;not null;index;column:quote_id"`
	Description string    `gorm:"type:varchar(300);not null"`
	Quantity    float64   `gorm:"type:decimal(10,2);not null;default:1"`
	UnitPrice   float64   `gorm:"type:decimal(15,2);not null;column:unit_price"`
	LineTotal   float64   `gorm:"type:decimal(15,2);not null;column:line_total"`
	Position    int       `gorm:"not null;default:0"`
}

// BeforeCreate assigns a UUID when the record doesn't have one yet
func (i *QuoteItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// QuotePhoto is a reference photo attached to a quote
type QuotePhoto struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	QuoteID     uuid.UUID `gorm:"type:uuid;not null;index;column:quote_id"`
	URL         string    `gorm:"type:varchar(500);not null"`
	Description string    `gorm:"type:varchar(300)"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns a UUID when the record doesn't have one yet
func (p *QuotePhoto) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// FieldType represents the input type of a layout field
type FieldType string

const (
	FieldTypeText     FieldType = "texto"
	FieldTypeImage    FieldType = "imagem"
	FieldTypeCheckbox FieldType = "checkbox"
)

// IsValid checks if the FieldType is a valid enum value
func (ft FieldType) IsValid() bool {
	switch ft {
	case FieldTypeText, FieldTypeImage, FieldTypeCheckbox:
		return true
	}
	return false
}

// Layout describes an image-batch template: a named set of fields plus the
// webhook that receives filled-in rows for rendering.
type Layout struct {
	BaseModel
	Name        string        `gorm:"type:varchar(200);not null"`
	WebhookURL  string        `gorm:"type:varchar(500);not null;column:webhook_url"`
	Description string        `gorm:"type:text"`
	CreatedBy   string        `gorm:"type:varchar(100);column:created_by"`
	Fields      []LayoutField `gorm:"foreignKey:LayoutID;constraint:OnDelete:CASCADE"`
}

// LayoutField is one input of a layout, replaced wholesale on edit
type LayoutField struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	LayoutID uuid.UUID `gorm:"type:uuid;not null;index;column:layout_id"`
	Name     string    `gorm:"type:varchar(200);not null"`
	Type     FieldType `gorm:"type:varchar(20);not null;default:'texto'"`
	Options  string    `gorm:"type:varchar(500)"` // comma separated, e.g. "Stories,Feed"
	Position int       `gorm:"not null;default:0"`
	Required bool      `gorm:"not null;default:false"`
}

// BeforeCreate assigns a UUID when the record doesn't have one yet
func (f *LayoutField) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// SequenceScope identifies which numbered entity a sequence counts for
type SequenceScope string

const (
	SequenceScopeServiceOrder SequenceScope = "service_order"
	SequenceScopeQuote        SequenceScope = "quote"
)

// NumberSequence holds the last used human-readable number per scope
type NumberSequence struct {
	Scope        SequenceScope `gorm:"type:varchar(50);primaryKey"`
	LastSequence int           `gorm:"not null;default:0;column:last_sequence"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}
