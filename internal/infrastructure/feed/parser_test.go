package feed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<FlexQueryResponse queryName="DailyTradeConfirms" type="AF">
  <FlexStatements count="1">
    <FlexStatement accountId="U1234567">
      <TradeConfirms>
        <TradeConfirm accountId="U1234567" description="ACME CORP" symbol="ACME"
          orderID="100" assetCategory="STK" putCall="" quantity="10"
          price="5.00" commission="1.00" code="O" buySell="BUY"
          dateTime="2026-08-28 15:30:00"/>
        <TradeConfirm accountId="U1234567" description="ACME CORP" symbol="ACME"
          orderID="100" assetCategory="STK" putCall="" quantity="5"
          price="5.10" commission="0.50" code="O" buySell="BUY"
          dateTime="2026-08-28 15:31:00"/>
      </TradeConfirms>
    </FlexStatement>
  </FlexStatements>
</FlexQueryResponse>`

func TestParseExtractsConfirmAttributes(t *testing.T) {
	t.Parallel()

	records, err := Parse(strings.NewReader(sampleFeed))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "ACME CORP", records[0]["description"])
	assert.Equal(t, "100", records[0]["orderID"])
	assert.Equal(t, "10", records[0]["quantity"])
	assert.Equal(t, "5", records[1]["quantity"])
	assert.Equal(t, "5.10", records[1]["price"])
}

func TestParseIgnoresOtherElements(t *testing.T) {
	t.Parallel()

	records, err := Parse(strings.NewReader(`<FlexQueryResponse><FlexStatements count="0"/></FlexQueryResponse>`))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseMalformedMarkup(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.NewReader(`<FlexQueryResponse><TradeConfirm`))
	assert.Error(t, err)
}
