package holdingscsv

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmanzanog/portfolio-dashboard/internal/domain"
)

func TestParse_ValidFile(t *testing.T) {
	input := "\uFEFF계좌,종목명,종목번호,수량,평균단가,단위\n" +
		"ISA,삼성전자,005930,10,70000,KRW\n" +
		"연금저축A, TIGER 미국S&P500 ,360750, 25 , 15000.5 ,krw\n" +
		"IRP,Apple,AAPL,3,180.25,usd\n"

	holdings, err := Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, holdings, 3)

	assert.Equal(t, domain.RawHolding{
		Account: "ISA", Name: "삼성전자", Code: "005930",
		Quantity: 10, AvgCost: 70000, Currency: domain.CurrencyKRW,
	}, holdings[0])
	assert.Equal(t, "TIGER 미국S&P500", holdings[1].Name)
	assert.Equal(t, 25.0, holdings[1].Quantity)
	assert.Equal(t, 15000.5, holdings[1].AvgCost)
	assert.Equal(t, domain.CurrencyKRW, holdings[1].Currency)
	assert.Equal(t, domain.CurrencyUSD, holdings[2].Currency)
}

func TestParse_ColumnOrderAndExtraColumns(t *testing.T) {
	input := "단위,메모,종목번호,종목명,평균단가,수량,계좌\n" +
		"USD,long term,QQQ,Invesco QQQ,400,2,IRP\n"

	holdings, err := Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "QQQ", holdings[0].Code)
	assert.Equal(t, "IRP", holdings[0].Account)
	assert.Equal(t, 2.0, holdings[0].Quantity)
	assert.Equal(t, 400.0, holdings[0].AvgCost)
}

func TestParse_MissingColumns(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		missing string
	}{
		{"two missing", "계좌,종목명,종목번호,수량\nISA,a,1,1\n", "평균단가, 단위"},
		{"empty file", "", "계좌"},
		{"english header", "account,name,code,qty,cost,unit\n", "계좌"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			holdings, err := Parse(strings.NewReader(tt.input))

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingColumns))
			assert.Contains(t, err.Error(), tt.missing)
			assert.Nil(t, holdings)
		})
	}
}

func TestParse_SkipsInvalidRows(t *testing.T) {
	input := "계좌,종목명,종목번호,수량,평균단가,단위\n" +
		"ISA,엔화,JPY1,10,100,JPY\n" +
		"ISA,빈단위,X,10,100,\n" +
		"ISA,수량오류,Y,ten,100,KRW\n" +
		"ISA,음수,Z,-1,100,KRW\n" +
		",,,,,\n" +
		"\n" +
		"CMA,KODEX 200,069500,\"1,200\",35000,KRW\n" +
		"ISA,짧은행,W\n"

	holdings, err := Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "069500", holdings[0].Code)
	assert.Equal(t, 1200.0, holdings[0].Quantity)
}

func TestParse_HeaderOnly(t *testing.T) {
	holdings, err := Parse(strings.NewReader("계좌,종목명,종목번호,수량,평균단가,단위\n"))

	require.NoError(t, err)
	assert.NotNil(t, holdings)
	assert.Empty(t, holdings)
}

func TestParse_StrayQuotes(t *testing.T) {
	input := "계좌,종목명,종목번호,수량,평균단가,단위\n" +
		"ISA,삼성전자,005930,10,70000,KRW\n" +
		"ISA,Bad \"name,000001,1,1,KRW\n" +
		"IRP,KODEX 200,069500,5,30000,KRW\n"

	holdings, err := Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, holdings, 3)
	assert.Equal(t, "005930", holdings[0].Code)
	assert.Equal(t, `Bad "name`, holdings[1].Name)
	assert.Equal(t, "069500", holdings[2].Code)
}

func TestParse_UnterminatedQuoteSkipsRow(t *testing.T) {
	input := "계좌,종목명,종목번호,수량,평균단가,단위\n" +
		"IRP,KODEX 200,069500,5,30000,KRW\n" +
		"ISA,\"broken,005930,1,1,KRW\n"

	holdings, err := Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "069500", holdings[0].Code)
}
