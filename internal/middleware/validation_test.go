package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

type testCreateRequest struct {
	Name     string `json:"name" validate:"required"`
	Price    string `json:"price" validate:"required"`
	Stock    int    `json:"stock" validate:"gte=0"`
	ImageURL string `json:"imageUrl" validate:"omitempty,url"`
}

func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeName bool, includePrice bool) bool {
			reqMap := make(map[string]interface{})

			if includeName {
				reqMap["name"] = "Espresso Machine"
			}
			if includePrice {
				reqMap["price"] = "250.00"
			}
			reqMap["stock"] = 3

			allFieldsPresent := includeName && includePrice

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var decoded testCreateRequest
			err := DecodeAndValidate(req, &decoded)

			if allFieldsPresent {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestDecodeAndValidateRejectsMalformedJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	var decoded testCreateRequest
	if err := DecodeAndValidate(req, &decoded); err == nil {
		t.Error("malformed JSON body should fail decoding")
	}
}

func TestFormatValidationErrors(t *testing.T) {
	reqMap := map[string]interface{}{
		"name":     "Espresso Machine",
		"price":    "250.00",
		"stock":    -1,
		"imageUrl": "not-a-url",
	}

	reqBody, _ := json.Marshal(reqMap)
	req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	var decoded testCreateRequest
	err := DecodeAndValidate(req, &decoded)
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	formatted := FormatValidationErrors(err)
	if len(formatted) != 2 {
		t.Fatalf("formatted errors = %d, want 2", len(formatted))
	}
	for _, ve := range formatted {
		if ve.Field == "" {
			t.Error("formatted error should name its field")
		}
		if ve.Message == "" {
			t.Error("formatted error should carry a message")
		}
	}
}
