package service

import (
	"fmt"
	"testing"

	"github.com/smallbiznis/procura/internal/rfq/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() domain.DistributeRequest {
	return domain.DistributeRequest{
		Items: []domain.LineItemInput{
			{ProductName: "Trypsin", VendorName: "Sigma", Quantity: 2, Currency: "usd"},
		},
		CommonRequest: domain.CommonRequest{Title: "Restock"},
	}
}

func fieldCodes(err error) map[string]string {
	codes := map[string]string{}
	if ve, ok := domain.AsValidationError(err); ok {
		for _, d := range ve.Details {
			codes[d.Field] = d.Code
		}
	}
	return codes
}

func TestValidateDefaults(t *testing.T) {
	validated, err := validate(validInput())
	require.NoError(t, err)

	assert.Equal(t, defaultExpiresDays, validated.ExpiresDays)
	require.Len(t, validated.Items, 1)
	assert.Equal(t, "ea", validated.Items[0].Unit)
	assert.Equal(t, "USD", validated.Items[0].Currency)
	assert.Equal(t, domain.VendorKeyByName, validated.Items[0].Key.Kind)
}

func TestValidateRejectsEmptyItems(t *testing.T) {
	req := validInput()
	req.Items = nil

	_, err := validate(req)
	require.Error(t, err)
	assert.Equal(t, "required", fieldCodes(err)["items"])
}

func TestValidateRejectsTooManyItems(t *testing.T) {
	req := validInput()
	item := req.Items[0]
	req.Items = nil
	for i := 0; i < maxItems+1; i++ {
		req.Items = append(req.Items, item)
	}

	_, err := validate(req)
	require.Error(t, err)
	assert.Equal(t, "too_many", fieldCodes(err)["items"])
}

func TestValidateFieldErrors(t *testing.T) {
	req := domain.DistributeRequest{
		Items: []domain.LineItemInput{
			{ProductName: "", Quantity: 0, Currency: ""},
		},
		CommonRequest: domain.CommonRequest{Title: "  "},
	}

	_, err := validate(req)
	require.Error(t, err)

	codes := fieldCodes(err)
	assert.Equal(t, "required", codes["commonRequest.title"])
	assert.Equal(t, "required", codes["items[0].productName"])
	assert.Equal(t, "out_of_range", codes["items[0].quantity"])
	assert.Equal(t, "required", codes["items[0].currency"])
	assert.Equal(t, "required", codes["items[0].vendor"])
}

func TestValidateVendorIdPrecedence(t *testing.T) {
	id := "42"
	req := validInput()
	req.Items[0].VendorID = &id
	req.Items[0].VendorName = "Sigma"

	validated, err := validate(req)
	require.NoError(t, err)
	assert.Equal(t, domain.VendorKeyByID, validated.Items[0].Key.Kind)
	assert.Equal(t, "id:42", validated.Items[0].Key.String())
}

func TestValidateBadVendorID(t *testing.T) {
	id := "not-a-number"
	req := validInput()
	req.Items[0].VendorID = &id

	_, err := validate(req)
	require.Error(t, err)
	assert.Equal(t, "invalid", fieldCodes(err)["items[0].vendorId"])
}

func TestValidateExpiresRange(t *testing.T) {
	for _, days := range []int{0, -1, 91} {
		req := validInput()
		req.ExpiresInDays = &days

		_, err := validate(req)
		require.Error(t, err, fmt.Sprintf("expiresInDays=%d", days))
		assert.Equal(t, "out_of_range", fieldCodes(err)["expiresInDays"])
	}

	days := 7
	req := validInput()
	req.ExpiresInDays = &days
	validated, err := validate(req)
	require.NoError(t, err)
	assert.Equal(t, 7, validated.ExpiresDays)
}
