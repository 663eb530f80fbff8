package upi

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sangkips/retailpos/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidVPA(t *testing.T) {
	tests := []struct {
		vpa  string
		want bool
	}{
		{"store@upi", true},
		{"my.shop-01_x@okaxis", true},
		{"store", false},
		{"store@", false},
		{"@upi", false},
		{"store@ok-axis", false},
		{"st ore@upi", false},
		{"a@b@c", false},
	}
	for _, tt := range tests {
		t.Run(tt.vpa, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidVPA(tt.vpa))
		})
	}
}

func TestBuildURIParameterOrder(t *testing.T) {
	uri, err := BuildURI(Payment{
		VPA:       "store@upi",
		PayeeName: "My Retail Store",
		Amount:    decimal.RequireFromString("236"),
		Note:      NoteForBill("INV-250101093000-0A1F"),
	})
	require.NoError(t, err)
	assert.Equal(t, "upi://pay?pa=store%40upi&pn=My+Retail+Store&am=236.00&tn=Bill+%23INV-250101093000-0A1F&cu=INR", uri)
}

func TestBuildURIMerchantCodeAndDefaultNote(t *testing.T) {
	uri, err := BuildURI(Payment{
		VPA:          "store@upi",
		PayeeName:    "Shop",
		Amount:       decimal.RequireFromString("10.005"),
		MerchantCode: "5411",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(uri, "&am=10.01&tn=Payment&mc=5411&cu=INR"), uri)
}

func TestBuildURIRejectsBadInput(t *testing.T) {
	_, err := BuildURI(Payment{VPA: "not-a-vpa", PayeeName: "", Amount: decimal.Zero})
	require.ErrorIs(t, err, apperror.ErrValidation)

	appErr := apperror.GetAppError(err)
	assert.Len(t, appErr.Errors, 3)
}

func TestQRCodeIsPNG(t *testing.T) {
	png, err := QRCode("upi://pay?pa=store%40upi&pn=Shop&am=1.00&tn=Payment&cu=INR", 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
	assert.True(t, strings.HasPrefix(DataURL(png), "data:image/png;base64,"))
}
