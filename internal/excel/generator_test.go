package excel

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/phoenix-shipper/booking-docs/internal/model"
)

func TestGenerate(t *testing.T) {
	job := model.Job{
		JobType:    model.JobTypeMultiDrop,
		Pickups:    []model.Location{{Company: "Acme", Address: "1 St", Suburb: "X", Postcode: "2000"}},
		Deliveries: []model.Location{{Address: "2 Rd", Suburb: "Y"}, {Address: "3 Ave", Suburb: "Y"}},
		DeliveryGoods: []*model.Goods{
			{PackagingTypes: model.PackagingTypes{
				Pallets: &model.Packaging{Selected: true, Quantity: 2, Weight: decimal.NewFromInt(300), Secured: true},
			}},
			nil,
		},
	}

	content, err := NewGenerator().Generate(job, "JOB-7")
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer file.Close()

	assert.Equal(t, []string{"Summary", "Pickup 1 - X", "Delivery 1 - Y", "Delivery 2 - Y"}, file.GetSheetList())

	value, err := file.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "JOB-7", value)

	value, err = file.GetCellValue("Summary", "B9")
	require.NoError(t, err)
	assert.Equal(t, "5", value)

	value, err = file.GetCellValue("Delivery 1 - Y", "C9")
	require.NoError(t, err)
	assert.Equal(t, "2 of 2", value)

	value, err = file.GetCellValue("Delivery 1 - Y", "F8")
	require.NoError(t, err)
	assert.Equal(t, "Secured", value)

	value, err = file.GetCellValue("Delivery 2 - Y", "A8")
	require.NoError(t, err)
	assert.Equal(t, "N/A", value)

	value, err = file.GetCellValue("Pickup 1 - X", "A8")
	require.NoError(t, err)
	assert.Equal(t, "N/A", value)
}

func TestGenerateRequiresJobID(t *testing.T) {
	_, err := NewGenerator().Generate(model.Job{}, "")
	require.Error(t, err)
}

func TestBuildSheetName(t *testing.T) {
	used := map[string]struct{}{}

	name := buildSheetName("Delivery", 0, "Parramatta [West]", used)
	assert.Equal(t, "Delivery 1 - Parramatta -West-", name)
	used[name] = struct{}{}

	long := buildSheetName("Delivery", 1, strings.Repeat("Z", 40), used)
	assert.Len(t, long, 31)

	used[long] = struct{}{}
	again := buildSheetName("Delivery", 1, strings.Repeat("Z", 40), used)
	assert.Len(t, again, 31)
	assert.True(t, strings.HasSuffix(again, "-2"))
}

func TestBuildSheetNameKeepsRunesWhole(t *testing.T) {
	used := map[string]struct{}{}
	suburb := "Abcdefghijklmnopqöööö"

	name := buildSheetName("Delivery", 0, suburb, used)
	assert.True(t, utf8.ValidString(name))
	assert.Equal(t, 31, utf8.RuneCountInString(name))
	assert.True(t, strings.HasSuffix(name, "qö"))
	used[name] = struct{}{}

	again := buildSheetName("Delivery", 0, suburb, used)
	assert.True(t, utf8.ValidString(again))
	assert.Equal(t, 31, utf8.RuneCountInString(again))
	assert.True(t, strings.HasSuffix(again, "-2"))

	f := excelize.NewFile()
	defer f.Close()
	for _, sheet := range []string{name, again} {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
}

func TestSanitizeSheetName(t *testing.T) {
	assert.Equal(t, "Sheet", sanitizeSheetName("  "))
	assert.Equal(t, "a-b-c", sanitizeSheetName("a/b:c"))
}
