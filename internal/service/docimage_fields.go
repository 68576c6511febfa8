package service

import (
	"fmt"

	"github.com/cris-tech/gestao-api/internal/domain"
)

// itemSlots is how many positional line-item slots the receipt templates
// carry. Unfilled slots render as "-".
const itemSlots = 5

// BuildOrderFields derives the render field map for a service order from
// its stored data. Keys are part of the external template contract and
// must not change.
func BuildOrderFields(order *domain.ServiceOrder) map[string]string {
	fields := map[string]string{
		"data.text":     FormatDate(order.OrderDate),
		"cliente.text":  orDash(order.ClientName),
		"cpf_cnpj.text": orDash(order.ClientTaxID),
		"endereco.text": orDash(order.ClientAddress),
		"cidade.text":   orDash(order.ClientCity),
		"estado.text":   orDash(order.ClientState),
		"email.text":    orDash(order.ClientEmail),
		"telefone.text": orDash(order.ClientPhone),
	}

	for i := 0; i < itemSlots; i++ {
		slot := fmt.Sprintf("%d", i+1)
		if i < len(order.Materials) {
			m := order.Materials[i]
			fields["tipo"+slot+".text"] = orDash(m.Type)
			fields["qntd"+slot+".text"] = FormatQuantity(m.Quantity)
			fields["valor"+slot+".text"] = FormatBRL(m.LineTotal)
		} else {
			fields["tipo"+slot+".text"] = "-"
			fields["qntd"+slot+".text"] = "-"
			fields["valor"+slot+".text"] = "-"
		}
	}

	fields["observacao.text"] = orDash(order.Notes)
	fields["numero_ordem_servico.text"] = fmt.Sprintf("%04d", order.Number)

	if order.VisitFee > 0 {
		fields["taxa_visita.text"] = FormatBRL(order.VisitFee)
	} else {
		fields["taxa_visita.text"] = "-"
	}

	fields["valor_total.text"] = FormatBRL(order.Total)

	warrantyDays := order.WarrantyMonths * 30
	if warrantyDays > 0 {
		fields["garantia.text"] = fmt.Sprintf("Garantia de mão-de-obra: %d dias", warrantyDays)
	} else {
		fields["garantia.text"] = "-"
	}

	fields["nome_cliente_assinatura.text"] = orDash(order.ClientName)

	return fields
}

// BuildQuoteFields derives the render field map for a quote. The quote
// template differs from the order template: the client name key is the
// bare "cimente-te" (a typo baked into the template), slot values carry
// unit prices, and the total is recomputed from the stored items.
func BuildQuoteFields(quote *domain.Quote) map[string]string {
	fields := map[string]string{
		"data.text":     FormatDate(quote.IssueDate),
		"cimente-te":    orDash(quote.ClientName),
		"cpf_cnpj.text": orDash(quote.ClientTaxID),
		"endereco.text": orDash(quote.ClientAddress),
		"cidade.text":   orDash(quote.ClientCity),
		"estado.text":   orDash(quote.ClientState),
		"email.text":    orDash(quote.ClientEmail),
		"telefone.text": orDash(quote.ClientPhone),
	}

	for i := 0; i < itemSlots; i++ {
		slot := fmt.Sprintf("%d", i+1)
		if i < len(quote.Items) {
			item := quote.Items[i]
			fields["tipo"+slot+".text"] = orDash(item.Description)
			fields["qntd"+slot+".text"] = FormatQuantity(item.Quantity)
			fields["valor"+slot+".text"] = FormatBRL(item.UnitPrice)
		} else {
			fields["tipo"+slot+".text"] = "-"
			fields["qntd"+slot+".text"] = "-"
			fields["valor"+slot+".text"] = "-"
		}
	}

	fields["observacao.text"] = orDash(quote.Description)
	fields["taxa_visita.text"] = "-"

	total := 0.0
	for _, item := range quote.Items {
		if item.LineTotal != 0 {
			total += item.LineTotal
		} else {
			total += item.Quantity * item.UnitPrice
		}
	}
	fields["valor_total.text"] = FormatBRL(total)

	return fields
}
