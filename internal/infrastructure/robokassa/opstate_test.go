package robokassa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOpStateXML_Plain(t *testing.T) {
	raw := []byte(`<?xml version="1.0" encoding="utf-8"?>
<OperationStateResponse>
  <Result>
    <Code>0</Code>
    <Description>OK</Description>
  </Result>
  <State>
    <Code>100</Code>
    <RequestDate>2024-05-01T10:00:00.0000000+03:00</RequestDate>
    <StateDate>2024-05-01T10:05:00.0000000+03:00</StateDate>
  </State>
  <Info>
    <IncCurrLabel>BankCard</IncCurrLabel>
    <IncSum>1500.00</IncSum>
    <IncAccount>4111****1111</IncAccount>
    <PaymentMethodCode>BankCard</PaymentMethodCode>
    <OutCurrLabel>RUB</OutCurrLabel>
    <OutSum>1485.00</OutSum>
    <OpKey>op-key-1</OpKey>
  </Info>
</OperationStateResponse>`)

	state, err := ParseOpStateXML(raw)
	require.NoError(t, err)

	assert.Equal(t, "0", state.ResultCode)
	assert.Equal(t, "OK", state.ResultDescription)
	assert.Equal(t, "100", state.StateCode)
	assert.Equal(t, "2024-05-01T10:05:00.0000000+03:00", state.StateDate)
	assert.Equal(t, "1500.00", state.IncSum)
	assert.Equal(t, "4111****1111", state.IncAccount)
	assert.Equal(t, "1485.00", state.OutSum)
	assert.Equal(t, "op-key-1", state.OpKey)

	assert.Equal(t, "успешно оплачено", StateDescription(state.StateCode))
}

func TestParseOpStateXML_NamespacedWithBOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`<ns:OperationStateResponse xmlns:ns="http://merchant.roboxchange.com/WebService/">
  <ns:Result><ns:Code>0</ns:Code></ns:Result>
  <ns:State><ns:Code>5</ns:Code></ns:State>
</ns:OperationStateResponse>`)...)

	state, err := ParseOpStateXML(raw)
	require.NoError(t, err)

	assert.Equal(t, "0", state.ResultCode)
	assert.Equal(t, "5", state.StateCode)
	assert.Equal(t, "ожидает оплаты", StateDescription(state.StateCode))
}

func TestParseOpStateXML_LeadingJunkBeforeDocument(t *testing.T) {
	raw := []byte("\r\n ï»¿<Root><State><Code>20</Code></State></Root>")

	state, err := ParseOpStateXML(raw)
	require.NoError(t, err)
	assert.Equal(t, "20", state.StateCode)
}

func TestParseOpStateXML_Invalid(t *testing.T) {
	_, err := ParseOpStateXML([]byte("<broken"))
	require.Error(t, err)
}

func TestStateDescription_Total(t *testing.T) {
	cases := map[string]string{
		"5":   "ожидает оплаты",
		"10":  "отменён, деньги не получены",
		"20":  "средства заморожены (HOLD)",
		"50":  "деньги получены, зачисляются",
		"60":  "отказ в зачислении / возврат",
		"80":  "исполнение приостановлено",
		"100": "успешно оплачено",
	}
	for code, want := range cases {
		assert.Equal(t, want, StateDescription(code))
	}

	assert.Equal(t, "статус не определён", StateDescription("42"))
	assert.Equal(t, "статус не определён", StateDescription(""))
}
