package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyFromPath(t *testing.T) {
	assert.Equal(t, "BookingCreate/1.0.0", keyFromPath("schemas/booking-create/v1.json"))
	assert.Equal(t, "SweepCommand/2.0.0", keyFromPath("schemas/sweep-command/v2.json"))
	assert.Equal(t, "", keyFromPath("schemas/flat.json"))
	assert.Equal(t, "", keyFromPath("schemas/booking-create/latest.json"))
}

func TestAllSchemasRegistered(t *testing.T) {
	for _, key := range []string{
		ClientProfileV1, BookingCreateV1, BookingDatesV1, BookingStatusV1,
		PaymentStatusV1, ScoreRequestV1, SweepCommandV1,
	} {
		_, ok := compiledSchemas[key]
		assert.True(t, ok, key)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		body    string
		wantErr bool
	}{
		{"booking ok", BookingCreateV1, `{"property_id":"6f1c1a52-6b1e-4d7f-9d55-0a4c3c0c7e11","client_id":"0b6d5a1e-3f9a-4c5e-8d2b-7f1e2a3b4c5d","start_date":"2025-03-10","end_date":"2025-03-20"}`, false},
		{"booking bad uuid", BookingCreateV1, `{"property_id":"nope","client_id":"0b6d5a1e-3f9a-4c5e-8d2b-7f1e2a3b4c5d","start_date":"2025-03-10","end_date":"2025-03-20"}`, true},
		{"booking bad date", BookingCreateV1, `{"property_id":"6f1c1a52-6b1e-4d7f-9d55-0a4c3c0c7e11","client_id":"0b6d5a1e-3f9a-4c5e-8d2b-7f1e2a3b4c5d","start_date":"10.03.2025","end_date":"2025-03-20"}`, true},
		{"booking unknown field", BookingCreateV1, `{"property_id":"6f1c1a52-6b1e-4d7f-9d55-0a4c3c0c7e11","client_id":"0b6d5a1e-3f9a-4c5e-8d2b-7f1e2a3b4c5d","start_date":"2025-03-10","end_date":"2025-03-20","price":1}`, true},
		{"client minimal", ClientProfileV1, `{"rental_type":"длительная"}`, false},
		{"client null preferences", ClientProfileV1, `{"rental_type":"посуточная","desired_area":null,"children_count":null}`, false},
		{"client negative budget", ClientProfileV1, `{"rental_type":"длительная","long_term_budget_max":-5}`, true},
		{"client missing rental type", ClientProfileV1, `{}`, true},
		{"sweep empty", SweepCommandV1, `{}`, false},
		{"sweep bad timestamp", SweepCommandV1, `{"requested_at":"yesterday"}`, true},
		{"not json", BookingDatesV1, `{`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.key, []byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}

	assert.Error(t, Validate("Unknown/1.0.0", []byte(`{}`)))
}
