package robokassa

import (
	"crypto/hmac"
	"crypto/md5"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/bonjour-pay/invoice-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInvoiceToken_RoundTrip(t *testing.T) {
	token, err := BuildInvoiceToken("demo", "pass1", "none", "Оплата заказа A-1", 1500.00, "Фотосессия")
	require.NoError(t, err)

	parts := strings.Split(token.Token, ".")
	require.Len(t, parts, 3)

	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	var header map[string]string
	require.NoError(t, json.Unmarshal(headerJSON, &header))
	assert.Equal(t, "JWT", header["typ"])
	assert.Equal(t, "MD5", header["alg"])

	// Подпись воспроизводится тем же ключом над теми же сегментами.
	mac := hmac.New(md5.New, []byte("demo:pass1"))
	mac.Write([]byte(parts[0] + "." + parts[1]))
	expectedSig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	assert.Equal(t, expectedSig, parts[2])

	assert.Equal(t, parts[0]+"."+parts[1], token.SigningInput)
}

func TestBuildInvoiceToken_HeaderSegmentIsStable(t *testing.T) {
	token, err := BuildInvoiceToken("demo", "pass1", "none", "d", 1, "i")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(token.Token, "eyJ0eXAiOiJKV1QiLCJhbGciOiJNRDUifQ."))
}

func TestBuildInvoiceToken_CostEqualsOutSum(t *testing.T) {
	for _, amount := range []float64{1, 99.90, 1500.00, 123456.78} {
		token, err := BuildInvoiceToken("demo", "pass1", "none", "desc", amount, "item")
		require.NoError(t, err)

		var payload struct {
			OutSum       float64 `json:"OutSum"`
			InvoiceItems []struct {
				Quantity int     `json:"Quantity"`
				Cost     float64 `json:"Cost"`
			} `json:"InvoiceItems"`
		}
		require.NoError(t, json.Unmarshal(token.PayloadJSON, &payload))
		require.Len(t, payload.InvoiceItems, 1)
		assert.Equal(t, amount, payload.OutSum)
		assert.Equal(t, amount, payload.InvoiceItems[0].Cost)
		assert.Equal(t, 1, payload.InvoiceItems[0].Quantity)
	}
}

func TestBuildInvoiceToken_EmptyTaxFallsBackToNone(t *testing.T) {
	token, err := BuildInvoiceToken("demo", "pass1", "", "desc", 10, "item")
	require.NoError(t, err)

	var payload struct {
		InvoiceItems []struct {
			Tax string `json:"Tax"`
		} `json:"InvoiceItems"`
	}
	require.NoError(t, json.Unmarshal(token.PayloadJSON, &payload))
	assert.Equal(t, "none", payload.InvoiceItems[0].Tax)
}

func TestBuildInvoiceToken_MissingCredentials(t *testing.T) {
	var confErr *domain.ConfigurationError

	_, err := BuildInvoiceToken("", "pass1", "none", "desc", 10, "item")
	require.ErrorAs(t, err, &confErr)

	_, err = BuildInvoiceToken("demo", "", "none", "desc", 10, "item")
	require.ErrorAs(t, err, &confErr)
}

func TestStatusSignature(t *testing.T) {
	assert.Equal(t, "cbd9b2a32c1cdf422e4e0c3cbc6760f2", StatusSignature("demo", 12345, "pass2"))
}

func TestResultSignature(t *testing.T) {
	assert.Equal(t, "0ba33a50c9ca8478be550b711cf523ee", ResultSignature("1500.00", "777", "pass2", "A-1"))
}
