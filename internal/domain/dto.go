package domain

import (
	"github.com/google/uuid"
)

// PaginatedResponse wraps list results with paging metadata
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// ─── Auth ───────────────────────────────────────────────────────────────────

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string     `json:"accessToken"`
	TokenType   string     `json:"tokenType"`
	ExpiresIn   int        `json:"expiresIn,omitempty"`
	Profile     ProfileDTO `json:"profile"`
}

type VerifyRequest struct {
	Email      string `json:"email" validate:"required,email"`
	IdentityID string `json:"authId" validate:"required"`
}

type ProfileDTO struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name,omitempty"`
	Role      ProfileRole `json:"role"`
	CreatedAt string      `json:"createdAt"` // ISO 8601
	UpdatedAt string      `json:"updatedAt"` // ISO 8601
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"max=200"`
	Role     string `json:"role" validate:"omitempty,oneof=master admin user"`
}

type UpdateUserRequest struct {
	Name string `json:"name" validate:"max=200"`
	Role string `json:"role" validate:"omitempty,oneof=master admin user"`
}

// ─── Clients ────────────────────────────────────────────────────────────────

type CreateClientRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	Type       string `json:"type" validate:"required,oneof=pessoa_fisica pessoa_juridica"`
	TaxID      string `json:"taxId" validate:"max=20"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" validate:"max=20"`
	Mobile     string `json:"mobile" validate:"max=20"`
	Street     string `json:"street" validate:"max=300"`
	Number     string `json:"number" validate:"max=20"`
	Complement string `json:"complement" validate:"max=100"`
	District   string `json:"district" validate:"max=100"`
	City       string `json:"city" validate:"max=100"`
	State      string `json:"state" validate:"max=2"`
	PostalCode string `json:"postalCode" validate:"max=9"`
	LegalName  string `json:"legalName" validate:"max=200"`
	TradeName  string `json:"tradeName" validate:"max=200"`
	Notes      string `json:"notes"`
}

// UpdateClientRequest mirrors CreateClientRequest; updates are full replaces
type UpdateClientRequest = CreateClientRequest

type ClientDTO struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Type       ClientType `json:"type"`
	TaxID      string     `json:"taxId,omitempty"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Mobile     string     `json:"mobile,omitempty"`
	Street     string     `json:"street,omitempty"`
	Number     string     `json:"number,omitempty"`
	Complement string     `json:"complement,omitempty"`
	District   string     `json:"district,omitempty"`
	City       string     `json:"city,omitempty"`
	State      string     `json:"state,omitempty"`
	PostalCode string     `json:"postalCode,omitempty"`
	LegalName  string     `json:"legalName,omitempty"`
	TradeName  string     `json:"tradeName,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  string     `json:"createdAt"` // ISO 8601
	UpdatedAt  string     `json:"updatedAt"` // ISO 8601
}

// ─── Service orders ─────────────────────────────────────────────────────────

type OrderMaterialRequest struct {
	Type      string  `json:"type" validate:"required,max=200"`
	Quantity  float64 `json:"quantity" validate:"gt=0"`
	UnitPrice float64 `json:"unitPrice" validate:"gte=0"`
}

type CreateServiceOrderRequest struct {
	OrderDate      string                 `json:"orderDate" validate:"required"` // yyyy-mm-dd
	ClientID       *uuid.UUID             `json:"clientId"`
	Status         string                 `json:"status" validate:"omitempty,oneof=aberta em_andamento concluida cancelada"`
	Notes          string                 `json:"notes" validate:"max=275"`
	WarrantyMonths int                    `json:"warrantyMonths" validate:"gte=0"`
	VisitFee       float64                `json:"visitFee" validate:"gte=0"`
	Materials      []OrderMaterialRequest `json:"materials" validate:"required,min=1,max=5,dive"`
}

type UpdateServiceOrderRequest struct {
	OrderDate      string                 `json:"orderDate" validate:"required"`
	Status         string                 `json:"status" validate:"omitempty,oneof=aberta em_andamento concluida cancelada"`
	Notes          string                 `json:"notes" validate:"max=275"`
	WarrantyMonths int                    `json:"warrantyMonths" validate:"gte=0"`
	VisitFee       float64                `json:"visitFee" validate:"gte=0"`
	Materials      []OrderMaterialRequest `json:"materials" validate:"required,min=1,max=5,dive"`
}

type OrderMaterialDTO struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Quantity  float64   `json:"quantity"`
	UnitPrice float64   `json:"unitPrice"`
	LineTotal float64   `json:"lineTotal"`
	Position  int       `json:"position"`
}

type ServiceOrderDTO struct {
	ID                uuid.UUID          `json:"id"`
	Number            int                `json:"number"`
	OrderDate         string             `json:"orderDate"`
	ClientID          *uuid.UUID         `json:"clientId,omitempty"`
	Status            OrderStatus        `json:"status"`
	ClientName        string             `json:"clientName"`
	ClientAddress     string             `json:"clientAddress,omitempty"`
	ClientCity        string             `json:"clientCity,omitempty"`
	ClientState       string             `json:"clientState,omitempty"`
	ClientTaxID       string             `json:"clientTaxId,omitempty"`
	ClientEmail       string             `json:"clientEmail,omitempty"`
	ClientPhone       string             `json:"clientPhone,omitempty"`
	Notes             string             `json:"notes,omitempty"`
	WarrantyMonths    int                `json:"warrantyMonths"`
	WarrantyExpiresAt string             `json:"warrantyExpiresAt,omitempty"`
	VisitFee          float64            `json:"visitFee"`
	Total             float64            `json:"total"`
	ImageStatus       ImageStatus        `json:"imageStatus"`
	ImageURL          string             `json:"imageUrl,omitempty"`
	Materials         []OrderMaterialDTO `json:"materials,omitempty"`
	CreatedAt         string             `json:"createdAt"`
	UpdatedAt         string             `json:"updatedAt"`
}

// ─── Quotes ─────────────────────────────────────────────────────────────────

type QuoteItemRequest struct {
	Description string  `json:"description" validate:"required,max=300"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
	UnitPrice   float64 `json:"unitPrice" validate:"gte=0"`
}

type CreateQuoteRequest struct {
	ClientID    *uuid.UUID         `json:"clientId"`
	IssueDate   string             `json:"issueDate" validate:"required"` // yyyy-mm-dd
	ValidUntil  string             `json:"validUntil"`
	Description string             `json:"description"`
	Notes       string             `json:"notes"`
	Items       []QuoteItemRequest `json:"items" validate:"required,min=1,max=5,dive"`
}

type UpdateQuoteRequest struct {
	IssueDate   string             `json:"issueDate" validate:"required"`
	ValidUntil  string             `json:"validUntil"`
	Status      string             `json:"status" validate:"omitempty,oneof=pendente aprovado recusado expirado"`
	Description string             `json:"description"`
	Notes       string             `json:"notes"`
	Items       []QuoteItemRequest `json:"items" validate:"required,min=1,max=5,dive"`
}

type QuoteItemDTO struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Quantity    float64   `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	LineTotal   float64   `json:"lineTotal"`
	Position    int       `json:"position"`
}

type QuotePhotoDTO struct {
	ID          uuid.UUID `json:"id"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
}

type AddQuotePhotoRequest struct {
	URL         string `json:"url" validate:"required,url"`
	Description string `json:"description" validate:"max=300"`
}

type QuoteDTO struct {
	ID            uuid.UUID       `json:"id"`
	Number        int             `json:"number"`
	ClientID      *uuid.UUID      `json:"clientId,omitempty"`
	Status        QuoteStatus     `json:"status"`
	IssueDate     string          `json:"issueDate"`
	ValidUntil    string          `json:"validUntil,omitempty"`
	ClientName    string          `json:"clientName"`
	ClientAddress string          `json:"clientAddress,omitempty"`
	ClientCity    string          `json:"clientCity,omitempty"`
	ClientState   string          `json:"clientState,omitempty"`
	ClientTaxID   string          `json:"clientTaxId,omitempty"`
	ClientEmail   string          `json:"clientEmail,omitempty"`
	ClientPhone   string          `json:"clientPhone,omitempty"`
	Description   string          `json:"description,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Total         float64         `json:"total"`
	ImageStatus   ImageStatus     `json:"imageStatus"`
	ImageURL      string          `json:"imageUrl,omitempty"`
	Items         []QuoteItemDTO  `json:"items,omitempty"`
	Photos        []QuotePhotoDTO `json:"photos,omitempty"`
	CreatedAt     string          `json:"createdAt"`
	UpdatedAt     string          `json:"updatedAt"`
}

// ─── Layouts ────────────────────────────────────────────────────────────────

type LayoutFieldRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Type     string `json:"type" validate:"required,oneof=texto imagem checkbox"`
	Options  string `json:"options" validate:"max=500"`
	Required bool   `json:"required"`
}

type CreateLayoutRequest struct {
	Name        string               `json:"name" validate:"required,max=200"`
	WebhookURL  string               `json:"webhookUrl" validate:"required,url"`
	Description string               `json:"description"`
	Fields      []LayoutFieldRequest `json:"fields" validate:"dive"`
}

// UpdateLayoutRequest mirrors CreateLayoutRequest; fields are a replace-set
type UpdateLayoutRequest = CreateLayoutRequest

type LayoutFieldDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Options  string    `json:"options,omitempty"`
	Position int       `json:"position"`
	Required bool      `json:"required"`
}

type LayoutDTO struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	WebhookURL  string           `json:"webhookUrl"`
	Description string           `json:"description,omitempty"`
	Fields      []LayoutFieldDTO `json:"fields,omitempty"`
	CreatedAt   string           `json:"createdAt"`
	UpdatedAt   string           `json:"updatedAt"`
}

// DispatchLayoutRequest carries filled-in rows to forward to the layout's
// webhook. Row values are strings or string lists (checkbox fields).
type DispatchLayoutRequest struct {
	Items []map[string]interface{} `json:"items" validate:"required,min=1"`
}

// UploadResponse is returned by the image upload endpoint
type UploadResponse struct {
	URL string `json:"url"`
}
