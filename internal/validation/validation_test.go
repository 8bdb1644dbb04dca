package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string   `json:"name" validate:"required,min=5,max=10"`
	Email string   `json:"email" validate:"omitempty,email"`
	Stock *int     `json:"numberInStock" validate:"required,min=0,max=255"`
	Rate  *float64 `json:"dailyRentalRate" validate:"omitempty,min=0,max=255"`
}

func intPtr(n int) *int { return &n }

func TestStructAcceptsValidPayload(t *testing.T) {
	assert.NoError(t, Struct(sample{Name: "12345", Stock: intPtr(0)}))
}

func TestStructReportsFirstOffendingField(t *testing.T) {
	tests := []struct {
		name    string
		in      sample
		field   string
		rule    string
		message string
	}{
		{"missing name", sample{Stock: intPtr(1)}, "name", "required", `"name" is required`},
		{"short name", sample{Name: "1234", Stock: intPtr(1)}, "name", "min", `"name" length must be at least 5 characters long`},
		{"long name", sample{Name: strings.Repeat("a", 11), Stock: intPtr(1)}, "name", "max", `"name" length must be less than or equal to 10 characters long`},
		{"bad email", sample{Name: "12345", Email: "nope", Stock: intPtr(1)}, "email", "email", `"email" must be a valid email`},
		{"missing stock", sample{Name: "12345"}, "numberInStock", "required", `"numberInStock" is required`},
		{"stock too high", sample{Name: "12345", Stock: intPtr(256)}, "numberInStock", "max", `"numberInStock" must be less than or equal to 255`},
		{"both bad reports name", sample{Stock: intPtr(-1)}, "name", "required", `"name" is required`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			require.Error(t, err)
			var verr *Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.rule, verr.Rule)
			assert.Equal(t, tt.message, verr.Error())
		})
	}
}
