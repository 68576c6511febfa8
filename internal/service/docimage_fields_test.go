package service_test

import (
	"testing"
	"time"

	"github.com/cris-tech/gestao-api/internal/domain"
	"github.com/cris-tech/gestao-api/internal/service"
	"github.com/stretchr/testify/assert"
)

func sampleOrder() *domain.ServiceOrder {
	return &domain.ServiceOrder{
		Number:    7,
		OrderDate: time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC),
		ClientSnapshot: domain.ClientSnapshot{
			ClientName:    "Maria Silva",
			ClientAddress: "Rua das Flores, 100 - Centro",
			ClientCity:    "São Paulo",
			ClientState:   "SP",
			ClientTaxID:   "123.456.789-00",
			ClientEmail:   "maria@example.com",
			ClientPhone:   "11998887766",
		},
		Notes:          "Equipamento com ruído",
		WarrantyMonths: 3,
		VisitFee:       50,
		Total:          250,
		Materials: []domain.OrderMaterial{
			{Type: "Troca de resistência", Quantity: 1, UnitPrice: 150, LineTotal: 150},
			{Type: "Mão de obra", Quantity: 2, UnitPrice: 25, LineTotal: 50},
		},
	}
}

func TestBuildOrderFields(t *testing.T) {
	fields := service.BuildOrderFields(sampleOrder())

	assert.Equal(t, "03/07/2025", fields["data.text"])
	assert.Equal(t, "Maria Silva", fields["cliente.text"])
	assert.Equal(t, "123.456.789-00", fields["cpf_cnpj.text"])
	assert.Equal(t, "Rua das Flores, 100 - Centro", fields["endereco.text"])
	assert.Equal(t, "São Paulo", fields["cidade.text"])
	assert.Equal(t, "SP", fields["estado.text"])
	assert.Equal(t, "0007", fields["numero_ordem_servico.text"])
	assert.Equal(t, "Equipamento com ruído", fields["observacao.text"])

	// Filled slots carry line totals, quantities without trailing zeros
	assert.Equal(t, "Troca de resistência", fields["tipo1.text"])
	assert.Equal(t, "1", fields["qntd1.text"])
	assert.Equal(t, "R$ 150,00", fields["valor1.text"])
	assert.Equal(t, "2", fields["qntd2.text"])
	assert.Equal(t, "R$ 50,00", fields["valor2.text"])

	// Unfilled slots are dashed out
	for _, slot := range []string{"3", "4", "5"} {
		assert.Equal(t, "-", fields["tipo"+slot+".text"])
		assert.Equal(t, "-", fields["qntd"+slot+".text"])
		assert.Equal(t, "-", fields["valor"+slot+".text"])
	}

	assert.Equal(t, "R$ 50,00", fields["taxa_visita.text"])
	assert.Equal(t, "R$ 250,00", fields["valor_total.text"])
	assert.Equal(t, "Garantia de mão-de-obra: 90 dias", fields["garantia.text"])
	assert.Equal(t, "Maria Silva", fields["nome_cliente_assinatura.text"])
}

func TestBuildOrderFields_NoWarrantyNoVisitFee(t *testing.T) {
	order := sampleOrder()
	order.WarrantyMonths = 0
	order.VisitFee = 0

	fields := service.BuildOrderFields(order)

	assert.Equal(t, "-", fields["garantia.text"])
	assert.Equal(t, "-", fields["taxa_visita.text"])
}

func TestBuildOrderFields_EmptySnapshotDashes(t *testing.T) {
	order := &domain.ServiceOrder{
		Number:    1,
		OrderDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	fields := service.BuildOrderFields(order)

	assert.Equal(t, "-", fields["cliente.text"])
	assert.Equal(t, "-", fields["cpf_cnpj.text"])
	assert.Equal(t, "-", fields["endereco.text"])
	assert.Equal(t, "-", fields["email.text"])
	assert.Equal(t, "-", fields["telefone.text"])
	assert.Equal(t, "-", fields["observacao.text"])
}

func TestBuildQuoteFields(t *testing.T) {
	quote := &domain.Quote{
		Number:    3,
		IssueDate: time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC),
		ClientSnapshot: domain.ClientSnapshot{
			ClientName:  "João Souza",
			ClientTaxID: "987.654.321-00",
		},
		Description: "Reforma do painel",
		Items: []domain.QuoteItem{
			{Description: "Pintura", Quantity: 2, UnitPrice: 100, LineTotal: 200},
			{Description: "Acabamento", Quantity: 1.5, UnitPrice: 80},
		},
	}

	fields := service.BuildQuoteFields(quote)

	assert.Equal(t, "15/08/2025", fields["data.text"])

	// The client name key is the bare template typo, not a .text key
	assert.Equal(t, "João Souza", fields["cimente-te"])
	_, hasCleanKey := fields["cliente.text"]
	assert.False(t, hasCleanKey)

	// Quote slots carry unit prices, not line totals
	assert.Equal(t, "Pintura", fields["tipo1.text"])
	assert.Equal(t, "2", fields["qntd1.text"])
	assert.Equal(t, "R$ 100,00", fields["valor1.text"])
	assert.Equal(t, "1.5", fields["qntd2.text"])
	assert.Equal(t, "R$ 80,00", fields["valor2.text"])

	assert.Equal(t, "Reforma do painel", fields["observacao.text"])
	assert.Equal(t, "-", fields["taxa_visita.text"])

	// Total recomputed from items, falling back to qty * unit price when
	// the line total was never persisted: 200 + 1.5*80 = 320
	assert.Equal(t, "R$ 320,00", fields["valor_total.text"])

	// Quote template has no order number, warranty or signature keys
	_, hasNumber := fields["numero_ordem_servico.text"]
	assert.False(t, hasNumber)
	_, hasWarranty := fields["garantia.text"]
	assert.False(t, hasWarranty)
	_, hasSignature := fields["nome_cliente_assinatura.text"]
	assert.False(t, hasSignature)
}

func TestBuildQuoteFields_EmptyItems(t *testing.T) {
	quote := &domain.Quote{
		Number:    4,
		IssueDate: time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC),
	}

	fields := service.BuildQuoteFields(quote)

	for _, slot := range []string{"1", "2", "3", "4", "5"} {
		assert.Equal(t, "-", fields["tipo"+slot+".text"])
		assert.Equal(t, "-", fields["qntd"+slot+".text"])
		assert.Equal(t, "-", fields["valor"+slot+".text"])
	}
	assert.Equal(t, "R$ 0,00", fields["valor_total.text"])
}
