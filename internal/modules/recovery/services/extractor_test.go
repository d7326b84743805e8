package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractStandardNestedShape(t *testing.T) {
	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"id":    "ord-77",
			"total": 149.9,
			"user": map[string]interface{}{
				"name":  "João Silva",
				"phone": "5511988887777",
				"email": "joao@example.com",
				"cpf":   "123.456.789-00",
			},
			"product": map[string]interface{}{
				"title": "Sorteio da Sorte",
			},
		},
	}

	data := extractStandard(payload)
	assert.Equal(t, "João Silva", data.CustomerName)
	assert.Equal(t, "5511988887777", data.Phone)
	assert.Equal(t, 149.9, data.Total)
	assert.Equal(t, "Sorteio da Sorte", data.ProductName)
	assert.Equal(t, "ord-77", data.OrderID)
	assert.Equal(t, "joao@example.com", data.Email)
	assert.Equal(t, "123.456.789-00", data.CPF)
}

func TestExtractStandardFlatPortugueseShape(t *testing.T) {
	payload := map[string]interface{}{
		"user": map[string]interface{}{
			"nome":     "Maria",
			"telefone": "11999998888",
		},
		"value": "49,90",
		"product": map[string]interface{}{
			"nome": "Rifa Premiada",
		},
	}

	data := extractStandard(payload)
	assert.Equal(t, "Maria", data.CustomerName)
	assert.Equal(t, "11999998888", data.Phone)
	assert.Equal(t, 49.90, data.Total)
	assert.Equal(t, "Rifa Premiada", data.ProductName)
}

func TestExtractStandardDefaults(t *testing.T) {
	data := extractStandard(map[string]interface{}{
		"phone": "11988887777",
	})
	assert.Equal(t, "Cliente", data.CustomerName)
	assert.Equal(t, "Produto", data.ProductName)
	assert.Equal(t, 0.0, data.Total)
}

func TestExtractStandardTotalPrecedence(t *testing.T) {
	data := extractStandard(map[string]interface{}{
		"total":  100.0,
		"value":  50.0,
		"amount": 25.0,
	})
	assert.Equal(t, 100.0, data.Total)
}

func TestExtractStandardExpiration(t *testing.T) {
	data := extractStandard(map[string]interface{}{
		"phone":        "11988887777",
		"expirationAt": "2026-09-15T10:00:00Z",
	})
	require.NotNil(t, data.ExpirationAt)
	assert.Equal(t, 2026, data.ExpirationAt.Year())
	assert.Equal(t, 15, data.ExpirationAt.Day())
}

func TestExtractWithTransformers(t *testing.T) {
	payload := map[string]interface{}{
		"cliente": map[string]interface{}{
			"nome_completo": "Carlos Souza",
			"celular":       "5521977776666",
		},
		"pedido": map[string]interface{}{
			"valor_total": 89.5,
			"codigo":      "PED-15",
		},
	}
	transformers := map[string]string{
		"userName":   "cliente.nome_completo",
		"userPhone":  "cliente.celular",
		"orderTotal": "pedido.valor_total",
		"orderId":    "pedido.codigo",
	}

	data := extractWithTransformers(payload, transformers)
	assert.Equal(t, "Carlos Souza", data.CustomerName)
	assert.Equal(t, "5521977776666", data.Phone)
	assert.Equal(t, 89.5, data.Total)
	assert.Equal(t, "PED-15", data.OrderID)
	assert.Equal(t, "Produto", data.ProductName)
}

func TestExtractWithTransformersMissingPath(t *testing.T) {
	data := extractWithTransformers(map[string]interface{}{}, map[string]string{
		"userName":  "does.not.exist",
		"userPhone": "also.missing",
	})
	assert.Equal(t, "Cliente", data.CustomerName)
	assert.Equal(t, "", data.Phone)
}

func TestValidateExtracted(t *testing.T) {
	ok := ExtractedData{CustomerName: "Ana", Phone: "5511988887777"}
	assert.NoError(t, validateExtracted(ok, ""))

	assert.Error(t, validateExtracted(ExtractedData{CustomerName: "Ana"}, ""))
	assert.Error(t, validateExtracted(ExtractedData{Phone: "11988887777"}, ""))
}

func TestValidateExtractedBrazilianPhone(t *testing.T) {
	cases := []struct {
		phone string
		valid bool
	}{
		{"1188887777", true},       // 10 digits, landline without country code
		{"5511988887777", true},    // 13 digits, mobile with country code
		{"(11) 98888-7777", true},  // formatted, 11 digits
		{"123456789", false},       // too short
		{"55119888877771234", false}, // too long
	}

	for _, tc := range cases {
		err := validateExtracted(ExtractedData{CustomerName: "Ana", Phone: tc.phone}, "brazilian")
		if tc.valid {
			assert.NoError(t, err, "phone %s should be valid", tc.phone)
		} else {
			assert.Error(t, err, "phone %s should be rejected", tc.phone)
		}
	}
}

func TestValueAtPath(t *testing.T) {
	obj := map[string]interface{}{
		"a": map[string]interface{}{
			"b": map[string]interface{}{"c": "deep"},
		},
	}
	assert.Equal(t, "deep", valueAtPath(obj, "a.b.c"))
	assert.Nil(t, valueAtPath(obj, "a.x.c"))
	assert.Nil(t, valueAtPath(obj, "a.b.c.d"))
}
