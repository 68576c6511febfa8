package service_test

import (
	"testing"
	"time"

	"github.com/cris-tech/gestao-api/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 0,00", service.FormatBRL(0))
	assert.Equal(t, "R$ 150,00", service.FormatBRL(150))
	assert.Equal(t, "R$ 1234,50", service.FormatBRL(1234.5))
	assert.Equal(t, "R$ 0,99", service.FormatBRL(0.99))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "03/07/2025", service.FormatDate(time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "25/12/2024", service.FormatDate(time.Date(2024, 12, 25, 15, 30, 0, 0, time.UTC)))
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "2", service.FormatQuantity(2))
	assert.Equal(t, "1.5", service.FormatQuantity(1.5))
	assert.Equal(t, "0.25", service.FormatQuantity(0.25))
}
