package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ExtractedData is the normalized view of an upstream webhook payload.
type ExtractedData struct {
	CustomerName string
	Phone        string
	Total        float64
	ProductName  string
	OrderID      string
	Email        string
	CPF          string
	ExpirationAt *time.Time
}

// extractWithTransformers applies a configured output-field -> dotted-path
// map, then normalizes into ExtractedData. Unmapped fields fall back to the
// platform defaults ("Cliente", "Produto") like the standard extraction.
func extractWithTransformers(payload map[string]interface{}, transformers map[string]string) ExtractedData {
	get := func(key string) interface{} {
		path, ok := transformers[key]
		if !ok {
			return nil
		}
		return valueAtPath(payload, path)
	}

	return ExtractedData{
		CustomerName: stringOr(get("userName"), "Cliente"),
		Phone:        stringOr(get("userPhone"), ""),
		Total:        floatOr(get("orderTotal"), 0),
		ProductName:  stringOr(get("productTitle"), "Produto"),
		OrderID:      stringOr(get("orderId"), ""),
		Email:        stringOr(get("userEmail"), ""),
		CPF:          stringOr(get("userCpf"), ""),
		ExpirationAt: timeOrNil(get("expirationAt")),
	}
}

// extractStandard handles the payload shapes the upstream platforms are
// known to send: fields nested under data.user/data.product, flat at the
// top level, or in Portuguese ("nome", "telefone").
func extractStandard(payload map[string]interface{}) ExtractedData {
	user := firstMap(valueAtPath(payload, "data.user"), payload["user"])
	product := firstMap(valueAtPath(payload, "data.product"), payload["product"])

	phone := firstString(
		user["phone"],
		valueAtPath(payload, "data.phone"),
		payload["phone"],
		user["telefone"],
	)

	name := firstString(
		user["name"],
		user["nome"],
		valueAtPath(payload, "data.name"),
		payload["name"],
		payload["customerName"],
	)
	if name == "" {
		name = "Cliente"
	}

	total := firstFloat(
		valueAtPath(payload, "data.total"),
		payload["total"],
		payload["value"],
		payload["amount"],
	)

	productName := firstString(
		product["title"],
		product["name"],
		product["nome"],
		valueAtPath(payload, "data.productName"),
		payload["productName"],
	)
	if productName == "" {
		productName = "Produto"
	}

	return ExtractedData{
		CustomerName: name,
		Phone:        phone,
		Total:        total,
		ProductName:  productName,
		OrderID:      firstString(valueAtPath(payload, "data.id"), payload["id"]),
		Email:        firstString(user["email"], payload["email"]),
		CPF:          firstString(user["cpf"], payload["cpf"]),
		ExpirationAt: timeOrNil(firstNonNil(valueAtPath(payload, "data.expirationAt"), payload["expirationAt"])),
	}
}

// validateExtracted enforces the fields the pipeline cannot work without.
func validateExtracted(data ExtractedData, phoneFormat string) error {
	if data.Phone == "" {
		return fmt.Errorf("required field missing: phone")
	}
	if data.CustomerName == "" {
		return fmt.Errorf("required field missing: customerName")
	}

	if phoneFormat == "brazilian" {
		digits := 0
		for _, r := range data.Phone {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits < 10 || digits > 13 {
			return fmt.Errorf("invalid brazilian phone format: %s", data.Phone)
		}
	}
	return nil
}

// valueAtPath walks a dotted path ("data.user.phone") into nested maps.
func valueAtPath(obj map[string]interface{}, path string) interface{} {
	var current interface{} = obj
	for _, key := range strings.Split(path, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current, ok = m[key]
		if !ok {
			return nil
		}
	}
	return current
}

func firstMap(candidates ...interface{}) map[string]interface{} {
	for _, c := range candidates {
		if m, ok := c.(map[string]interface{}); ok {
			return m
		}
	}
	return map[string]interface{}{}
}

func firstNonNil(candidates ...interface{}) interface{} {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}

func firstString(candidates ...interface{}) string {
	for _, c := range candidates {
		if s := stringOr(c, ""); s != "" {
			return s
		}
	}
	return ""
}

func firstFloat(candidates ...interface{}) float64 {
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if f := floatOr(c, -1); f >= 0 {
			return f
		}
	}
	return 0
}

func stringOr(v interface{}, def string) string {
	switch s := v.(type) {
	case string:
		if s != "" {
			return s
		}
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	}
	return def
}

func floatOr(v interface{}, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		if f, err := strconv.ParseFloat(strings.ReplaceAll(n, ",", "."), 64); err == nil {
			return f
		}
	}
	return def
}

func timeOrNil(v interface{}) *time.Time {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
