package ledger

import (
	"encoding/json"
	"fmt"

	"cashbook/internal/core"
)

// Color is a 0xAARRGGBB value.
type Color uint32

// DefaultColor is used for categories missing from the palette and for the
// placeholder ring.
const DefaultColor Color = 0xFFCCCCCC

// Hex returns the color as #RRGGBB; alpha is dropped.
func (c Color) Hex() string {
	return fmt.Sprintf("#%06X", uint32(c)&0xFFFFFF)
}

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Hex())
}

var palette = map[string]Color{
	"🍔 อาหาร":       0xFF4CAF50,
	"อาหาร":         0xFF4CAF50,
	"Food":          0xFF4CAF50,
	"🚗 เดินทาง":     0xFFFFEB3B,
	"เดินทาง":       0xFFFFEB3B,
	"Transport":     0xFFFFEB3B,
	"🎬 บันเทิง":     0xFF9C27B0,
	"บันเทิง":       0xFF9C27B0,
	"Entertainment": 0xFF9C27B0,
	"🛍️ ของใช้ส่วนตัว": 0xFFFF9800,
	"ของใช้ส่วนตัว":    0xFFFF9800,
	"Personal": 0xFFFF9800,
	"🏠 ค่าเช่า/น้ำไฟ": 0xFF00BCD4,
	"ค่าเช่า/น้ำไฟ":   0xFF00BCD4,
	"Housing":         0xFF00BCD4,
	"Utilities":       0xFF00BCD4,
	"💊 รักษาพยาบาล":   0xFFE91E63,
	"รักษาพยาบาล":     0xFFE91E63,
	"Health":          0xFFE91E63,
	"💵 เงินเดือน":     0xFF2196F3,
	"เงินเดือน":       0xFF2196F3,
	"Salary":          0xFF2196F3,
	"💰 โบนัส":         0xFFFFC107,
	"โบนัส":           0xFFFFC107,
	"Bonus":           0xFFFFC107,
	"🏪 ค้าขาย":        0xFF009688,
	"ค้าขาย":          0xFF009688,
	"Business":        0xFF009688,
	"📈 การลงทุน":      0xFF3F51B5,
	"การลงทุน":        0xFF3F51B5,
	"Investment":      0xFF3F51B5,
	"🎁 รายได้อื่นๆ":   0xFF607D8B,
	"รายได้อื่นๆ":     0xFF607D8B,
	"Other Income":    0xFF607D8B,
}

// ColorFor returns the chart color of a category. Matching is exact.
func ColorFor(category string) Color {
	if c, ok := palette[category]; ok {
		return c
	}
	return DefaultColor
}

// Categories lists the labels offered by the entry form, per kind.
var Categories = map[core.Kind][]string{
	core.Expense: {
		"🍔 อาหาร",
		"🚗 เดินทาง",
		"🎬 บันเทิง",
		"🛍️ ของใช้ส่วนตัว",
		"🏠 ค่าเช่า/น้ำไฟ",
		"💊 รักษาพยาบาล",
	},
	core.Income: {
		"💵 เงินเดือน",
		"💰 โบนัส",
		"🏪 ค้าขาย",
		"📈 การลงทุน",
		"🎁 รายได้อื่นๆ",
	},
}
