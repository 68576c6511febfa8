// Package mapper converts persistence models into API DTOs
package mapper

import (
	"time"

	"github.com/cris-tech/gestao-api/internal/domain"
)

const dateLayout = "2006-01-02"

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

// ToProfileDTO converts a Profile to its DTO
func ToProfileDTO(p *domain.Profile) domain.ProfileDTO {
	return domain.ProfileDTO{
		ID:        p.ID,
		Email:     p.Email,
		Name:      p.Name,
		Role:      p.Role,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
}

// ToClientDTO converts a Client to its DTO
func ToClientDTO(c *domain.Client) domain.ClientDTO {
	return domain.ClientDTO{
		ID:         c.ID,
		Name:       c.Name,
		Type:       c.Type,
		TaxID:      c.TaxID,
		Email:      c.Email,
		Phone:      c.Phone,
		Mobile:     c.Mobile,
		Street:     c.Street,
		Number:     c.Number,
		Complement: c.Complement,
		District:   c.District,
		City:       c.City,
		State:      c.State,
		PostalCode: c.PostalCode,
		LegalName:  c.LegalName,
		TradeName:  c.TradeName,
		Notes:      c.Notes,
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  c.UpdatedAt.Format(time.RFC3339),
	}
}

// ToOrderMaterialDTO converts an OrderMaterial to its DTO
func ToOrderMaterialDTO(m *domain.OrderMaterial) domain.OrderMaterialDTO {
	return domain.OrderMaterialDTO{
		ID:        m.ID,
		Type:      m.Type,
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPrice,
		LineTotal: m.LineTotal,
		Position:  m.Position,
	}
}

// ToServiceOrderDTO converts a ServiceOrder to its DTO
func ToServiceOrderDTO(o *domain.ServiceOrder) domain.ServiceOrderDTO {
	materials := make([]domain.OrderMaterialDTO, len(o.Materials))
	for i := range o.Materials {
		materials[i] = ToOrderMaterialDTO(&o.Materials[i])
	}

	return domain.ServiceOrderDTO{
		ID:                o.ID,
		Number:            o.Number,
		OrderDate:         formatDate(o.OrderDate),
		ClientID:          o.ClientID,
		Status:            o.Status,
		ClientName:        o.ClientName,
		ClientAddress:     o.ClientAddress,
		ClientCity:        o.ClientCity,
		ClientState:       o.ClientState,
		ClientTaxID:       o.ClientTaxID,
		ClientEmail:       o.ClientEmail,
		ClientPhone:       o.ClientPhone,
		Notes:             o.Notes,
		WarrantyMonths:    o.WarrantyMonths,
		WarrantyExpiresAt: formatDatePtr(o.WarrantyExpiresAt),
		VisitFee:          o.VisitFee,
		Total:             o.Total,
		ImageStatus:       o.ImageStatus,
		ImageURL:          o.ImageURL,
		Materials:         materials,
		CreatedAt:         o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         o.UpdatedAt.Format(time.RFC3339),
	}
}

// ToQuoteItemDTO converts a QuoteItem to its DTO
func ToQuoteItemDTO(i *domain.QuoteItem) domain.QuoteItemDTO {
	return domain.QuoteItemDTO{
		ID:          i.ID,
		Description: i.Description,
		Quantity:    i.Quantity,
		UnitPrice:   i.UnitPrice,
		LineTotal:   i.LineTotal,
		Position:    i.Position,
	}
}

// ToQuotePhotoDTO converts a QuotePhoto to its DTO
func ToQuotePhotoDTO(p *domain.QuotePhoto) domain.QuotePhotoDTO {
	return domain.QuotePhotoDTO{
		ID:          p.ID,
		URL:         p.URL,
		Description: p.Description,
	}
}

// ToQuoteDTO converts a Quote to its DTO
func ToQuoteDTO(q *domain.Quote) domain.QuoteDTO {
	items := make([]domain.QuoteItemDTO, len(q.Items))
	for i := range q.Items {
		items[i] = ToQuoteItemDTO(&q.Items[i])
	}
	photos := make([]domain.QuotePhotoDTO, len(q.Photos))
	for i := range q.Photos {
		photos[i] = ToQuotePhotoDTO(&q.Photos[i])
	}

	return domain.QuoteDTO{
		ID:            q.ID,
		Number:        q.Number,
		ClientID:      q.ClientID,
		Status:        q.Status,
		IssueDate:     formatDate(q.IssueDate),
		ValidUntil:    formatDatePtr(q.ValidUntil),
		ClientName:    q.ClientName,
		ClientAddress: q.ClientAddress,
		ClientCity:    q.ClientCity,
		ClientState:   q.ClientState,
		ClientTaxID:   q.ClientTaxID,
		ClientEmail:   q.ClientEmail,
		ClientPhone:   q.ClientPhone,
		Description:   q.Description,
		Notes:         q.Notes,
		Total:         q.ItemsTotal(),
		ImageStatus:   q.ImageStatus,
		ImageURL:      q.ImageURL,
		Items:         items,
		Photos:        photos,
		CreatedAt:     q.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     q.UpdatedAt.Format(time.RFC3339),
	}
}

// ToLayoutFieldDTO converts a LayoutField to its DTO
func ToLayoutFieldDTO(f *domain.LayoutField) domain.LayoutFieldDTO {
	return domain.LayoutFieldDTO{
		ID:       f.ID,
		Name:     f.Name,
		Type:     f.Type,
		Options:  f.Options,
		Position: f.Position,
		Required: f.Required,
	}
}

// ToLayoutDTO converts a Layout to its DTO
func ToLayoutDTO(l *domain.Layout) domain.LayoutDTO {
	fields := make([]domain.LayoutFieldDTO, len(l.Fields))
	for i := range l.Fields {
		fields[i] = ToLayoutFieldDTO(&l.Fields[i])
	}

	return domain.LayoutDTO{
		ID:          l.ID,
		Name:        l.Name,
		WebhookURL:  l.WebhookURL,
		Description: l.Description,
		Fields:      fields,
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   l.UpdatedAt.Format(time.RFC3339),
	}
}
